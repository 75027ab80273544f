// Package dbtest opens throwaway sqlite databases with the service schema.
package dbtest

import (
	"testing"
	"time"

	"cinecore/internal/db"
	"cinecore/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated in-memory database. A single connection keeps every
// statement on the same in-memory database.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	d, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := d.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(d))
	return d
}

func CreateUser(t testing.TB, d *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, d.Create(u).Error)
	return u
}

func CreateMovie(t testing.TB, d *gorm.DB, title string) *models.Movie {
	t.Helper()
	m := &models.Movie{Title: title, ReleaseDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), IsActive: true}
	require.NoError(t, d.Create(m).Error)
	return m
}

// CreateShow creates a web show with one season holding one episode.
func CreateShow(t testing.TB, d *gorm.DB, title string) (*models.WebShow, *models.WebSeason, *models.Episode) {
	t.Helper()
	show := &models.WebShow{Title: title, IsActive: true}
	require.NoError(t, d.Create(show).Error)
	season := &models.WebSeason{WebShowID: show.ID, SeasonNumber: 1, TotalEpisodes: 1}
	require.NoError(t, d.Create(season).Error)
	ep := &models.Episode{SeasonID: season.ID, EpisodeNumber: 1, Title: "Pilot"}
	require.NoError(t, d.Create(ep).Error)
	return show, season, ep
}

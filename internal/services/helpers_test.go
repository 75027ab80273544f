package services

import (
	"testing"
	"time"

	"cinecore/internal/config"
	"cinecore/internal/db/dbtest"
	"cinecore/internal/models"
	"cinecore/internal/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestServices(t *testing.T) (*gorm.DB, *Services) {
	t.Helper()
	d := dbtest.New(t)
	cfg := &config.Config{JWTSecret: "test-secret", JWTTTL: time.Hour, TrendingCacheTTL: time.Minute}
	return d, New(d, cfg, utils.NewCache(16))
}

func movieRef(m *models.Movie) SubjectRef {
	return SubjectRef{Type: models.SubjectMovie, ID: m.ID}
}

// insertReview bypasses the service to control created_at.
func insertReview(t *testing.T, d *gorm.DB, user *models.User, ref SubjectRef, rating int, critic bool, at time.Time) *models.Review {
	t.Helper()
	r := &models.Review{UserID: user.ID, SubjectType: ref.Type, SubjectID: ref.ID, Body: "review", Rating: rating, IsCritic: critic, CreatedAt: at}
	require.NoError(t, d.Create(r).Error)
	return r
}

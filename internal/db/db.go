package db

import (
	"fmt"
	"time"

	"cinecore/internal/logging"
	"cinecore/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init opens the postgres connection, migrates the schema and seeds a demo
// catalog on an empty database.
func Init(dsn string) error {
	log := logging.L("db")

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	log.Info("database connection established")

	if err := Migrate(DB); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	log.Info("database migration completed")

	return seedCatalog(DB)
}

// Migrate creates or updates every table the service owns.
func Migrate(d *gorm.DB) error {
	return d.AutoMigrate(
		&models.User{},
		// catalog
		&models.Movie{},
		&models.WebShow{},
		&models.WebSeason{},
		&models.Episode{},
		// engagement
		&models.Review{},
		&models.ReviewLike{},
		&models.FanTheory{},
		&models.FanTheoryVote{},
		&models.Poll{},
		&models.PollOption{},
		&models.PollVote{},
	)
}

func seedCatalog(d *gorm.DB) error {
	log := logging.L("db")

	var count int64
	if err := d.Model(&models.Movie{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Debug("catalog already seeded, skipping")
		return nil
	}

	movies := []models.Movie{
		{Title: "The Long Night", ShortSynopsis: "A lighthouse keeper waits out a storm.", ReleaseDate: date(2021, 3, 12), Runtime: 118, IsActive: true},
		{Title: "Paper Cities", ShortSynopsis: "Two architects, one impossible bridge.", ReleaseDate: date(2022, 9, 2), Runtime: 104, IsActive: true},
		{Title: "Monsoon Letters", ShortSynopsis: "Letters found in a Kerala attic.", ReleaseDate: date(2023, 6, 23), Runtime: 131, IsActive: true},
	}
	if err := d.Create(&movies).Error; err != nil {
		return fmt.Errorf("seed movies: %w", err)
	}

	show := models.WebShow{
		Title:    "Signal Lost",
		Status:   "ongoing",
		IsActive: true,
		Seasons: []models.WebSeason{
			{SeasonNumber: 1, TotalEpisodes: 2, Episodes: []models.Episode{
				{EpisodeNumber: 1, Title: "Static", Runtime: 48},
				{EpisodeNumber: 2, Title: "Carrier Wave", Runtime: 51},
			}},
		},
	}
	if err := d.Create(&show).Error; err != nil {
		return fmt.Errorf("seed web show: %w", err)
	}

	log.Info("initial catalog created", "movies", len(movies), "webshows", 1)
	return nil
}

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

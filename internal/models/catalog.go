package models

import (
	"time"

	"gorm.io/gorm"
)

// Catalog entities are owned by the catalog service; reviews, theories and
// polls only reference them.

type Movie struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:100;not null" json:"title"`
	ShortSynopsis string    `gorm:"size:500" json:"short_synopsis"`
	ReleaseDate   time.Time `json:"release_date"`
	Runtime       int       `json:"runtime"`
	IsActive      bool      `gorm:"not null;index" json:"is_active"`
}

type WebShow struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Title     string      `gorm:"size:100;not null" json:"title"`
	Status    string      `gorm:"size:20;default:'upcoming'" json:"status"` // ongoing, completed, upcoming
	IsActive  bool        `gorm:"not null" json:"is_active"`
	Seasons   []WebSeason `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type WebSeason struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	WebShowID     uint      `gorm:"not null;uniqueIndex:idx_show_season" json:"webshow_id"`
	WebShow       WebShow   `json:"-"`
	SeasonNumber  int       `gorm:"not null;uniqueIndex:idx_show_season" json:"season_number"`
	TotalEpisodes int       `json:"total_episodes"`
	Episodes      []Episode `gorm:"foreignKey:SeasonID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

type Episode struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SeasonID      uint      `gorm:"not null;uniqueIndex:idx_season_episode" json:"season_id"`
	Season        WebSeason `json:"-"`
	EpisodeNumber int       `gorm:"not null;uniqueIndex:idx_season_episode" json:"episode_number"`
	Title         string    `gorm:"size:150;not null" json:"title"`
	Runtime       int       `json:"runtime"`
}

// Reviews have no foreign key to their subject, so removing a catalog entity
// removes its reviews (and their likes) through these hooks.

func (m *Movie) AfterDelete(tx *gorm.DB) error {
	return deleteSubjectReviews(tx, SubjectMovie, m.ID)
}

func (s *WebShow) AfterDelete(tx *gorm.DB) error {
	if err := deleteSubjectReviews(tx, SubjectWebShow, s.ID); err != nil {
		return err
	}
	var seasonIDs []uint
	if err := tx.Model(&WebSeason{}).Where("web_show_id = ?", s.ID).Pluck("id", &seasonIDs).Error; err != nil {
		return err
	}
	if err := deleteSubjectReviews(tx, SubjectSeason, seasonIDs...); err != nil {
		return err
	}
	var episodeIDs []uint
	if len(seasonIDs) > 0 {
		if err := tx.Model(&Episode{}).Where("season_id IN ?", seasonIDs).Pluck("id", &episodeIDs).Error; err != nil {
			return err
		}
	}
	return deleteSubjectReviews(tx, SubjectEpisode, episodeIDs...)
}

func (s *WebSeason) AfterDelete(tx *gorm.DB) error {
	if err := deleteSubjectReviews(tx, SubjectSeason, s.ID); err != nil {
		return err
	}
	var episodeIDs []uint
	if err := tx.Model(&Episode{}).Where("season_id = ?", s.ID).Pluck("id", &episodeIDs).Error; err != nil {
		return err
	}
	return deleteSubjectReviews(tx, SubjectEpisode, episodeIDs...)
}

func (e *Episode) AfterDelete(tx *gorm.DB) error {
	return deleteSubjectReviews(tx, SubjectEpisode, e.ID)
}

func deleteSubjectReviews(tx *gorm.DB, t SubjectType, ids ...uint) error {
	ids = nonZero(ids)
	if len(ids) == 0 {
		return nil
	}
	reviews := tx.Model(&Review{}).Select("id").Where("subject_type = ? AND subject_id IN ?", t, ids)
	if err := tx.Where("review_id IN (?)", reviews).Delete(&ReviewLike{}).Error; err != nil {
		return err
	}
	return tx.Where("subject_type = ? AND subject_id IN ?", t, ids).Delete(&Review{}).Error
}

func nonZero(ids []uint) []uint {
	out := ids[:0]
	for _, id := range ids {
		if id != 0 {
			out = append(out, id)
		}
	}
	return out
}

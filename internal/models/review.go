package models

import (
	"time"
)

// SubjectType tags the catalog entity a review is attached to.
type SubjectType string

const (
	SubjectMovie   SubjectType = "movie"
	SubjectWebShow SubjectType = "webshow"
	SubjectSeason  SubjectType = "season"
	SubjectEpisode SubjectType = "episode"
)

// Review is unique per (user, subject).
type Review struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"not null;uniqueIndex:idx_review_user_subject" json:"user_id"`
	User        User        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	SubjectType SubjectType `gorm:"size:20;not null;uniqueIndex:idx_review_user_subject;index:idx_review_subject" json:"subject_type"`
	SubjectID   uint        `gorm:"not null;uniqueIndex:idx_review_user_subject;index:idx_review_subject" json:"subject_id"`
	Body        string      `gorm:"type:text;not null" json:"body"`
	Rating      int         `gorm:"not null" json:"rating"`
	IsCritic    bool        `gorm:"not null;default:false;index" json:"is_critic"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"` // set once, never updated
}

func (r *Review) OwnerID() uint { return r.UserID }

// ReviewLike exists while the user likes the review.
type ReviewLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_review" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ReviewID  uint      `gorm:"not null;index;uniqueIndex:idx_like_user_review" json:"review_id"`
	Review    Review    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

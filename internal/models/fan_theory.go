package models

import (
	"time"
)

type FanTheory struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	MovieID   uint            `gorm:"not null;index" json:"movie_id"`
	Movie     Movie           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	User      User            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Theory    string          `gorm:"size:200;not null" json:"theory"`
	Upvotes   int             `gorm:"not null;default:0" json:"upvotes"` // sum of Votes.Points
	Votes     []FanTheoryVote `gorm:"foreignKey:TheoryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time       `json:"created_at"`
}

func (t *FanTheory) OwnerID() uint { return t.UserID }

// FanTheoryVote accumulates one user's points on a theory, capped at MaxTheoryPoints.
type FanTheoryVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TheoryID  uint      `gorm:"not null;uniqueIndex:idx_theory_user" json:"theory_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_theory_user" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Points    int       `gorm:"not null;default:0" json:"points"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const MaxTheoryPoints = 5

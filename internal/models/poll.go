package models

import (
	"time"
)

type Poll struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	MovieID   uint         `gorm:"not null;index" json:"movie_id"`
	Movie     Movie        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint         `gorm:"not null;index" json:"user_id"` // creator
	Question  string       `gorm:"size:255;not null" json:"question"`
	Options   []PollOption `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"options"`
	CreatedAt time.Time    `json:"created_at"`
}

func (p *Poll) OwnerID() uint { return p.UserID }

// PollOption.Votes is incremented on every PollVote that references it.
// Retired options keep their votes but no longer accept new ones.
type PollOption struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	PollID     uint   `gorm:"not null;index" json:"poll_id"`
	OptionText string `gorm:"size:255;not null" json:"option_text"`
	Position   int    `gorm:"not null;default:0" json:"position"`
	Votes      int    `gorm:"not null;default:0" json:"votes"`
	Retired    bool   `gorm:"not null;default:false" json:"retired"`
}

// PollVote is unique per (user, poll) and never changes once cast.
type PollVote struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_poll_vote_user_poll" json:"user_id"`
	User      User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PollID    uint       `gorm:"not null;uniqueIndex:idx_poll_vote_user_poll" json:"poll_id"`
	Poll      Poll       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	OptionID  uint       `gorm:"not null;index" json:"option_id"`
	Option    PollOption `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
}

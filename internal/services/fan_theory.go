package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"cinecore/internal/apperr"
	"cinecore/internal/logging"
	"cinecore/internal/metrics"
	"cinecore/internal/models"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxTheoryLength = 200

type TheoryView struct {
	ID        uint      `json:"id"`
	MovieID   uint      `json:"movie_id"`
	Author    string    `json:"author"`
	Theory    string    `json:"theory"`
	Upvotes   int       `json:"upvotes"`
	CreatedAt time.Time `json:"created_at"`
}

// UpvoteResult is returned with LimitReached too, carrying the unchanged total.
type UpvoteResult struct {
	Upvotes int `json:"upvotes"`
	Points  int `json:"points"`
}

type FanTheoryService struct {
	db       *gorm.DB
	subjects *SubjectResolver
	log      hclog.Logger
}

func NewFanTheoryService(db *gorm.DB, subjects *SubjectResolver) *FanTheoryService {
	return &FanTheoryService{db: db, subjects: subjects, log: logging.L("theories")}
}

// List returns the movie's theories, highest upvoted first.
func (s *FanTheoryService) List(ctx context.Context, movieID uint) ([]TheoryView, error) {
	if _, err := s.subjects.ResolveMovie(ctx, movieID); err != nil {
		return nil, err
	}
	var theories []models.FanTheory
	err := s.db.WithContext(ctx).Preload("User").
		Where("movie_id = ?", movieID).
		Order("upvotes DESC, created_at DESC, id DESC").
		Find(&theories).Error
	if err != nil {
		return nil, apperr.Internal("list theories", err)
	}
	out := make([]TheoryView, 0, len(theories))
	for i := range theories {
		out = append(out, theoryView(&theories[i]))
	}
	return out, nil
}

func (s *FanTheoryService) Get(ctx context.Context, id uint) (*TheoryView, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	v := theoryView(t)
	return &v, nil
}

func (s *FanTheoryService) Create(ctx context.Context, movieID, userID uint, text string) (*TheoryView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("theory", "may not be blank")
	}
	if utf8.RuneCountInString(text) > maxTheoryLength {
		return nil, apperr.Validation("theory", "must be at most 200 characters")
	}
	if _, err := s.subjects.ResolveMovie(ctx, movieID); err != nil {
		return nil, err
	}

	theory := models.FanTheory{MovieID: movieID, UserID: userID, Theory: text}
	if err := s.db.WithContext(ctx).Create(&theory).Error; err != nil {
		return nil, apperr.Internal("create theory", err)
	}
	return s.Get(ctx, theory.ID)
}

// Delete removes a theory and its votes. Only the author may delete.
func (s *FanTheoryService) Delete(ctx context.Context, id, userID uint) error {
	t, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := RequireOwner(t, userID, "theory"); err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("theory_id = ?", t.ID).Delete(&models.FanTheoryVote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.FanTheory{}, t.ID).Error
	})
	if err != nil {
		return apperr.Internal("delete theory", err)
	}
	return nil
}

// Upvote adds one point from userID to the theory, up to MaxTheoryPoints per
// user, then recomputes the theory's total from all vote records.
func (s *FanTheoryService) Upvote(ctx context.Context, theoryID, userID uint) (*UpvoteResult, error) {
	theory, err := s.load(ctx, theoryID)
	if err != nil {
		return nil, err
	}

	vote := models.FanTheoryVote{TheoryID: theoryID, UserID: userID}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&vote).Error; err != nil {
		return nil, apperr.Internal("create theory vote", err)
	}

	errCapped := apperr.LimitReached("maximum points already given to this theory")
	result := &UpvoteResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the points guard makes the increment safe against concurrent upvotes
		res := tx.Model(&models.FanTheoryVote{}).
			Where("theory_id = ? AND user_id = ? AND points < ?", theoryID, userID, models.MaxTheoryPoints).
			UpdateColumn("points", gorm.Expr("points + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errCapped
		}

		var total int64
		if err := tx.Model(&models.FanTheoryVote{}).
			Where("theory_id = ?", theoryID).
			Select("COALESCE(SUM(points), 0)").
			Scan(&total).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.FanTheory{}).Where("id = ?", theoryID).UpdateColumn("upvotes", total).Error; err != nil {
			return err
		}

		var mine models.FanTheoryVote
		if err := tx.Where("theory_id = ? AND user_id = ?", theoryID, userID).First(&mine).Error; err != nil {
			return err
		}
		result.Upvotes = int(total)
		result.Points = mine.Points
		return nil
	})

	switch {
	case errors.Is(err, errCapped):
		metrics.FanTheoryUpvotes.WithLabelValues("limit_reached").Inc()
		current := theory.Upvotes
		var upvotes []int
		if err := s.db.WithContext(ctx).Model(&models.FanTheory{}).Where("id = ?", theoryID).Pluck("upvotes", &upvotes).Error; err == nil && len(upvotes) == 1 {
			current = upvotes[0]
		}
		return &UpvoteResult{Upvotes: current, Points: models.MaxTheoryPoints}, errCapped
	case err != nil:
		return nil, apperr.Internal("upvote theory", err)
	}

	metrics.FanTheoryUpvotes.WithLabelValues("upvoted").Inc()
	s.log.Debug("theory upvoted", "theory_id", theoryID, "user_id", userID, "points", result.Points, "upvotes", result.Upvotes)
	return result, nil
}

func (s *FanTheoryService) load(ctx context.Context, id uint) (*models.FanTheory, error) {
	var t models.FanTheory
	if err := s.db.WithContext(ctx).Preload("User").First(&t, id).Error; err != nil {
		return nil, lookupErr(err, "theory", "theory")
	}
	return &t, nil
}

func theoryView(t *models.FanTheory) TheoryView {
	return TheoryView{
		ID:        t.ID,
		MovieID:   t.MovieID,
		Author:    t.User.Username,
		Theory:    t.Theory,
		Upvotes:   t.Upvotes,
		CreatedAt: t.CreatedAt,
	}
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"cinecore/internal/apperr"
	"cinecore/internal/logging"
	"cinecore/internal/metrics"
	"cinecore/internal/models"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
)

const minPollOptions = 2

type CreatePollInput struct {
	Question string   `json:"question" binding:"required,max=255"`
	Options  []string `json:"options" binding:"required,min=2,dive,required,max=255"`
}

// UpdatePollInput is additive: new options are appended and retired ones stop
// accepting votes. Existing votes are never removed.
type UpdatePollInput struct {
	Question      *string  `json:"question" binding:"omitempty,max=255"`
	AddOptions    []string `json:"add_options" binding:"omitempty,dive,required,max=255"`
	RetireOptions []uint   `json:"retire_option_ids" binding:"omitempty,dive,gt=0"`
}

type PollOptionView struct {
	ID         uint   `json:"id"`
	OptionText string `json:"option_text"`
	Votes      int    `json:"votes"`
	Retired    bool   `json:"retired"`
}

type PollView struct {
	ID         uint             `json:"id"`
	MovieID    uint             `json:"movie_id"`
	Question   string           `json:"question"`
	Options    []PollOptionView `json:"options"`
	TotalVotes int              `json:"total_votes"`
	CreatedAt  time.Time        `json:"created_at"`
}

type PollVoteResult struct {
	OptionID uint `json:"option_id"`
	Votes    int  `json:"votes"`
}

type PollService struct {
	db       *gorm.DB
	subjects *SubjectResolver
	log      hclog.Logger
}

func NewPollService(db *gorm.DB, subjects *SubjectResolver) *PollService {
	return &PollService{db: db, subjects: subjects, log: logging.L("polls")}
}

func (s *PollService) List(ctx context.Context, movieID uint) ([]PollView, error) {
	if _, err := s.subjects.ResolveMovie(ctx, movieID); err != nil {
		return nil, err
	}
	var polls []models.Poll
	err := s.db.WithContext(ctx).Preload("Options", orderOptions).
		Where("movie_id = ?", movieID).
		Order("created_at DESC, id DESC").
		Find(&polls).Error
	if err != nil {
		return nil, apperr.Internal("list polls", err)
	}
	out := make([]PollView, 0, len(polls))
	for i := range polls {
		out = append(out, pollView(&polls[i]))
	}
	return out, nil
}

func (s *PollService) Get(ctx context.Context, id uint) (*PollView, error) {
	p, err := s.load(ctx, s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	v := pollView(p)
	return &v, nil
}

// Create stores a poll on a movie with at least two options.
func (s *PollService) Create(ctx context.Context, movieID, userID uint, in CreatePollInput) (*PollView, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return nil, apperr.Validation("question", "may not be blank")
	}
	texts, err := cleanOptions(in.Options)
	if err != nil {
		return nil, err
	}
	if len(texts) < minPollOptions {
		return nil, apperr.Validation("options", "a poll needs at least two options")
	}
	if _, err := s.subjects.ResolveMovie(ctx, movieID); err != nil {
		return nil, err
	}

	poll := models.Poll{MovieID: movieID, UserID: userID, Question: question}
	for i, text := range texts {
		poll.Options = append(poll.Options, models.PollOption{OptionText: text, Position: i})
	}
	// gorm saves the poll and its options in one transaction
	if err := s.db.WithContext(ctx).Create(&poll).Error; err != nil {
		return nil, apperr.Internal("create poll", err)
	}
	return s.Get(ctx, poll.ID)
}

// Update changes the question, appends options and retires options. Only the
// poll's creator may update it.
func (s *PollService) Update(ctx context.Context, pollID, userID uint, in UpdatePollInput) (*PollView, error) {
	added, err := cleanOptions(in.AddOptions)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		poll, err := s.load(ctx, tx, pollID)
		if err != nil {
			return err
		}
		if err := RequireOwner(poll, userID, "poll"); err != nil {
			return err
		}

		if in.Question != nil {
			q := strings.TrimSpace(*in.Question)
			if q == "" {
				return apperr.Validation("question", "may not be blank")
			}
			if err := tx.Model(&models.Poll{}).Where("id = ?", poll.ID).Update("question", q).Error; err != nil {
				return err
			}
		}

		retire := make(map[uint]bool, len(in.RetireOptions))
		for _, id := range in.RetireOptions {
			retire[id] = true
		}
		active := len(added)
		next := 0
		for _, opt := range poll.Options {
			if opt.Position >= next {
				next = opt.Position + 1
			}
			if retire[opt.ID] {
				delete(retire, opt.ID)
				continue
			}
			if !opt.Retired {
				active++
			}
		}
		if len(retire) > 0 {
			return apperr.NotFound("retire_option_ids", "option does not belong to this poll")
		}
		if active == 0 {
			return apperr.Validation("retire_option_ids", "a poll must keep at least one open option")
		}

		if len(in.RetireOptions) > 0 {
			if err := tx.Model(&models.PollOption{}).
				Where("poll_id = ? AND id IN ?", poll.ID, in.RetireOptions).
				Update("retired", true).Error; err != nil {
				return err
			}
		}
		for i, text := range added {
			opt := models.PollOption{PollID: poll.ID, OptionText: text, Position: next + i}
			if err := tx.Create(&opt).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return nil, err
		}
		return nil, apperr.Internal("update poll", err)
	}
	return s.Get(ctx, pollID)
}

// Vote records userID's single, irrevocable vote and bumps the option counter.
// optionID 0 means the caller sent no option.
func (s *PollService) Vote(ctx context.Context, pollID, optionID, userID uint) (*PollVoteResult, error) {
	result, err := s.vote(ctx, pollID, optionID, userID)
	label := "voted"
	if err != nil {
		label = string(apperr.KindOf(err))
	}
	metrics.PollVotes.WithLabelValues(label).Inc()
	return result, err
}

func (s *PollService) vote(ctx context.Context, pollID, optionID, userID uint) (*PollVoteResult, error) {
	db := s.db.WithContext(ctx)

	var poll models.Poll
	if err := db.Select("id").First(&poll, pollID).Error; err != nil {
		return nil, lookupErr(err, "poll", "poll")
	}

	var voted int64
	if err := db.Model(&models.PollVote{}).Where("user_id = ? AND poll_id = ?", userID, pollID).Count(&voted).Error; err != nil {
		return nil, apperr.Internal("check poll vote", err)
	}
	if voted > 0 {
		return nil, apperr.Conflict("you have already voted")
	}

	if optionID == 0 {
		return nil, apperr.Validation("option_id", "is required")
	}

	var option models.PollOption
	err := db.Where("id = ? AND poll_id = ? AND retired = ?", optionID, pollID, false).First(&option).Error
	if err != nil {
		return nil, lookupErr(err, "option_id", "option")
	}

	result := &PollVoteResult{OptionID: option.ID}
	err = db.Transaction(func(tx *gorm.DB) error {
		vote := models.PollVote{UserID: userID, PollID: pollID, OptionID: option.ID}
		if err := tx.Create(&vote).Error; err != nil {
			return err
		}
		res := tx.Model(&models.PollOption{}).Where("id = ?", option.ID).
			UpdateColumn("votes", gorm.Expr("votes + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		// option removed between lookup and increment
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	switch {
	case isDuplicate(err):
		return nil, apperr.Conflict("you have already voted")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.NotFound("option_id", "option not found")
	case err != nil:
		return nil, apperr.Internal("cast poll vote", err)
	}

	if err := db.Model(&models.PollOption{}).Where("id = ?", option.ID).Select("votes").Scan(&result.Votes).Error; err != nil {
		return nil, apperr.Internal("read option votes", err)
	}
	s.log.Debug("poll vote cast", "poll_id", pollID, "option_id", option.ID, "user_id", userID)
	return result, nil
}

func (s *PollService) load(_ context.Context, tx *gorm.DB, id uint) (*models.Poll, error) {
	var p models.Poll
	if err := tx.Preload("Options", orderOptions).First(&p, id).Error; err != nil {
		return nil, lookupErr(err, "poll", "poll")
	}
	return &p, nil
}

func orderOptions(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

// cleanOptions trims option text; whitespace-only options are rejected.
func cleanOptions(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, o := range raw {
		o = strings.TrimSpace(o)
		if o == "" {
			return nil, apperr.Validation("options", "option text may not be blank")
		}
		out = append(out, o)
	}
	return out, nil
}

func pollView(p *models.Poll) PollView {
	v := PollView{ID: p.ID, MovieID: p.MovieID, Question: p.Question, CreatedAt: p.CreatedAt, Options: make([]PollOptionView, 0, len(p.Options))}
	for _, o := range p.Options {
		v.Options = append(v.Options, PollOptionView{ID: o.ID, OptionText: o.OptionText, Votes: o.Votes, Retired: o.Retired})
		v.TotalVotes += o.Votes
	}
	return v
}

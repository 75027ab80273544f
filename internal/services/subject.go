package services

import (
	"context"
	"fmt"

	"cinecore/internal/apperr"
	"cinecore/internal/models"

	"gorm.io/gorm"
)

// SubjectRef points at a catalog entity by type tag and id.
type SubjectRef struct {
	Type models.SubjectType `json:"type"`
	ID   uint               `json:"id"`
}

// Subject is a resolved catalog entity.
type Subject struct {
	SubjectRef
	Title string `json:"title"`
}

// ParseSubjectType accepts only the known tags.
func ParseSubjectType(tag string) (models.SubjectType, error) {
	switch t := models.SubjectType(tag); t {
	case models.SubjectMovie, models.SubjectWebShow, models.SubjectSeason, models.SubjectEpisode:
		return t, nil
	}
	return "", apperr.Validation("subject_type", fmt.Sprintf("unknown subject type %q", tag))
}

type resolveFunc func(tx *gorm.DB, id uint) (string, error)

// SubjectResolver maps (type, id) to a catalog entity. It never writes.
type SubjectResolver struct {
	db        *gorm.DB
	resolvers map[models.SubjectType]resolveFunc
}

func NewSubjectResolver(db *gorm.DB) *SubjectResolver {
	return &SubjectResolver{
		db: db,
		resolvers: map[models.SubjectType]resolveFunc{
			models.SubjectMovie:   movieTitle,
			models.SubjectWebShow: webShowTitle,
			models.SubjectSeason:  seasonTitle,
			models.SubjectEpisode: episodeTitle,
		},
	}
}

// Resolve fails with NotFound when the entity does not exist and with a
// ValidationError for an unknown tag.
func (r *SubjectResolver) Resolve(ctx context.Context, ref SubjectRef) (*Subject, error) {
	fn, ok := r.resolvers[ref.Type]
	if !ok {
		return nil, apperr.Validation("subject_type", fmt.Sprintf("unknown subject type %q", ref.Type))
	}
	if ref.ID == 0 {
		return nil, apperr.NotFound("subject_id", string(ref.Type)+" not found")
	}
	title, err := fn(r.db.WithContext(ctx), ref.ID)
	if err != nil {
		return nil, lookupErr(err, "subject_id", string(ref.Type))
	}
	return &Subject{SubjectRef: ref, Title: title}, nil
}

// ResolveMovie is used by fan theories and polls, which only attach to movies.
func (r *SubjectResolver) ResolveMovie(ctx context.Context, id uint) (*Subject, error) {
	return r.Resolve(ctx, SubjectRef{Type: models.SubjectMovie, ID: id})
}

// Titles resolves a batch of refs; unresolvable ones are left out.
func (r *SubjectResolver) Titles(ctx context.Context, refs []SubjectRef) map[SubjectRef]string {
	out := make(map[SubjectRef]string, len(refs))
	for _, ref := range refs {
		if _, done := out[ref]; done {
			continue
		}
		if s, err := r.Resolve(ctx, ref); err == nil {
			out[ref] = s.Title
		}
	}
	return out
}

func movieTitle(tx *gorm.DB, id uint) (string, error) {
	var m models.Movie
	if err := tx.Select("id", "title").First(&m, id).Error; err != nil {
		return "", err
	}
	return m.Title, nil
}

func webShowTitle(tx *gorm.DB, id uint) (string, error) {
	var s models.WebShow
	if err := tx.Select("id", "title").First(&s, id).Error; err != nil {
		return "", err
	}
	return s.Title, nil
}

func seasonTitle(tx *gorm.DB, id uint) (string, error) {
	var s models.WebSeason
	if err := tx.Preload("WebShow").First(&s, id).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s - Season %d", s.WebShow.Title, s.SeasonNumber), nil
}

func episodeTitle(tx *gorm.DB, id uint) (string, error) {
	var e models.Episode
	if err := tx.Preload("Season.WebShow").First(&e, id).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s S%dE%d - %s", e.Season.WebShow.Title, e.Season.SeasonNumber, e.EpisodeNumber, e.Title), nil
}

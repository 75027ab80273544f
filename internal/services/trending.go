package services

import (
	"context"
	"time"

	"cinecore/internal/apperr"
	"cinecore/internal/logging"
	"cinecore/internal/models"
	"cinecore/internal/utils"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
)

const trendingCacheKey = "trending:movies"

// TrendingMovie is one active movie with its per-category mean ratings.
// Categories without reviews are 0.
type TrendingMovie struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	ReleaseDate time.Time `json:"release_date"`
	CriticAvg   float64   `json:"critic_average"`
	AudienceAvg float64   `json:"audience_average"`
}

type TrendingEntry struct {
	TrendingMovie
	Score float64 `json:"score"`
}

// TrendingRanker ranks active movies by blended rating. Results are cached
// until ttl passes or a movie review changes.
type TrendingRanker struct {
	db    *gorm.DB
	cache *utils.GlobalCache
	ttl   time.Duration
	log   hclog.Logger
}

// NewTrendingRanker disables caching when cache is nil or ttl <= 0.
func NewTrendingRanker(db *gorm.DB, cache *utils.GlobalCache, ttl time.Duration) *TrendingRanker {
	return &TrendingRanker{db: db, cache: cache, ttl: ttl, log: logging.L("trending")}
}

// Compute scores an explicit set of movies and returns the top entries.
func (r *TrendingRanker) Compute(movies []TrendingMovie) []TrendingEntry {
	byID := make(map[uint]TrendingMovie, len(movies))
	items := make([]utils.RatingAverages, 0, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
		items = append(items, utils.RatingAverages{ID: m.ID, Critic: m.CriticAvg, Audience: m.AudienceAvg})
	}
	ranked := utils.RankTrending(items, utils.DefaultTrendingConfig.Limit)
	out := make([]TrendingEntry, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, TrendingEntry{TrendingMovie: byID[s.ID], Score: s.Score})
	}
	return out
}

// Trending scans every active movie. The scan is cheap at catalog scale.
func (r *TrendingRanker) Trending(ctx context.Context) ([]TrendingEntry, error) {
	if r.caching() {
		if cached, ok := r.cache.Get(trendingCacheKey).([]TrendingEntry); ok {
			return cached, nil
		}
	}

	movies, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := r.Compute(movies)

	if r.caching() {
		r.cache.Set(trendingCacheKey, out, r.ttl)
	}
	return out, nil
}

// Invalidate drops the cached ranking.
func (r *TrendingRanker) Invalidate() {
	if r.cache != nil {
		r.cache.Delete(trendingCacheKey)
	}
}

func (r *TrendingRanker) caching() bool {
	return r.cache != nil && r.ttl > 0
}

func (r *TrendingRanker) load(ctx context.Context) ([]TrendingMovie, error) {
	db := r.db.WithContext(ctx)

	var movies []models.Movie
	if err := db.Where("is_active = ?", true).Order("id ASC").Find(&movies).Error; err != nil {
		return nil, apperr.Internal("load active movies", err)
	}
	if len(movies) == 0 {
		return nil, nil
	}

	ids := make([]uint, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
	}
	var rows []struct {
		SubjectID uint
		IsCritic  bool
		Avg       float64
	}
	err := db.Model(&models.Review{}).
		Select("subject_id, is_critic, AVG(rating) AS avg").
		Where("subject_type = ? AND subject_id IN ?", models.SubjectMovie, ids).
		Group("subject_id, is_critic").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Internal("average movie ratings", err)
	}

	type pair struct{ critic, audience float64 }
	avgs := make(map[uint]pair, len(rows))
	for _, row := range rows {
		p := avgs[row.SubjectID]
		if row.IsCritic {
			p.critic = row.Avg
		} else {
			p.audience = row.Avg
		}
		avgs[row.SubjectID] = p
	}

	out := make([]TrendingMovie, 0, len(movies))
	for _, m := range movies {
		p := avgs[m.ID]
		out = append(out, TrendingMovie{ID: m.ID, Title: m.Title, ReleaseDate: m.ReleaseDate, CriticAvg: p.critic, AudienceAvg: p.audience})
	}
	r.log.Debug("trending scan", "movies", len(out), "rated", len(avgs))
	return out, nil
}

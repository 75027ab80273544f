package utils

import (
	"math"
	"sort"
)

type TrendingConfig struct {
	CriticWeight   float64 // 0.6
	AudienceWeight float64 // 0.4
	Precision      float64 // decimal places kept in the score
	Limit          int     // entries returned
}

var DefaultTrendingConfig = TrendingConfig{
	CriticWeight:   0.6,
	AudienceWeight: 0.4,
	Precision:      4,
	Limit:          8,
}

// RatingAverages holds one subject's per-category mean rating. A category
// without reviews counts as 0.
type RatingAverages struct {
	ID       uint
	Critic   float64
	Audience float64
}

type TrendingScore struct {
	RatingAverages
	Score float64
}

// CalculateTrendingScore blends the critic and audience averages.
func CalculateTrendingScore(critic, audience float64) float64 {
	score := critic*DefaultTrendingConfig.CriticWeight + audience*DefaultTrendingConfig.AudienceWeight
	pow := math.Pow(10, DefaultTrendingConfig.Precision)
	return math.Round(score*pow) / pow
}

// RankTrending scores every entry and returns the top limit by score, ties
// going to the lower id. It does not modify items.
func RankTrending(items []RatingAverages, limit int) []TrendingScore {
	scored := make([]TrendingScore, 0, len(items))
	for _, it := range items {
		scored = append(scored, TrendingScore{RatingAverages: it, Score: CalculateTrendingScore(it.Critic, it.Audience)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

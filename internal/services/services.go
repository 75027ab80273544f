package services

import (
	"cinecore/internal/config"
	"cinecore/internal/utils"

	"gorm.io/gorm"
)

// Services wires every service against one database.
type Services struct {
	Subjects *SubjectResolver
	Reviews  *ReviewService
	Likes    *LikeService
	Theories *FanTheoryService
	Polls    *PollService
	Trending *TrendingRanker
	Accounts *AccountService
	Tokens   *TokenIssuer
}

func New(db *gorm.DB, cfg *config.Config, cache *utils.GlobalCache) *Services {
	subjects := NewSubjectResolver(db)
	trending := NewTrendingRanker(db, cache, cfg.TrendingCacheTTL)
	return &Services{
		Subjects: subjects,
		Reviews:  NewReviewService(db, subjects, trending),
		Likes:    NewLikeService(db),
		Theories: NewFanTheoryService(db, subjects),
		Polls:    NewPollService(db, subjects),
		Trending: trending,
		Accounts: NewAccountService(db),
		Tokens:   NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
	}
}

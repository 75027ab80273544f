package services

import (
	"context"

	"cinecore/internal/apperr"
	"cinecore/internal/logging"
	"cinecore/internal/metrics"
	"cinecore/internal/models"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
)

type LikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// LikeService toggles a user's like on a review. The (user, review) unique
// index is the only concurrency guard.
type LikeService struct {
	db  *gorm.DB
	log hclog.Logger
}

func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{db: db, log: logging.L("likes")}
}

// Toggle removes an existing like or creates a missing one.
func (s *LikeService) Toggle(ctx context.Context, reviewID, userID uint) (*LikeResult, error) {
	tx := s.db.WithContext(ctx)

	var review models.Review
	if err := tx.Select("id").First(&review, reviewID).Error; err != nil {
		return nil, lookupErr(err, "review", "review")
	}

	res := tx.Where("user_id = ? AND review_id = ?", userID, reviewID).Delete(&models.ReviewLike{})
	if res.Error != nil {
		return nil, apperr.Internal("unlike review", res.Error)
	}

	liked := res.RowsAffected == 0
	if liked {
		like := models.ReviewLike{UserID: userID, ReviewID: reviewID}
		// a concurrent toggle may have inserted first; the like exists either way
		if err := tx.Create(&like).Error; err != nil && !isDuplicate(err) {
			return nil, apperr.Internal("like review", err)
		}
	}

	action := "unliked"
	if liked {
		action = "liked"
	}
	metrics.ReviewLikes.WithLabelValues(action).Inc()
	s.log.Debug("like toggled", "review_id", reviewID, "user_id", userID, "action", action)

	var count int64
	if err := tx.Model(&models.ReviewLike{}).Where("review_id = ?", reviewID).Count(&count).Error; err != nil {
		return nil, apperr.Internal("count likes", err)
	}
	return &LikeResult{Liked: liked, LikeCount: count}, nil
}

// IsLiked reports whether userID currently likes the review.
func (s *LikeService) IsLiked(ctx context.Context, reviewID, userID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ReviewLike{}).
		Where("user_id = ? AND review_id = ?", userID, reviewID).
		Count(&count).Error
	if err != nil {
		return false, apperr.Internal("check like", err)
	}
	return count > 0, nil
}

// MarkLiked sets LikedByMe on the views userID currently likes.
func (s *LikeService) MarkLiked(ctx context.Context, userID uint, views []ReviewView) error {
	if userID == 0 || len(views) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	var liked []uint
	err := s.db.WithContext(ctx).Model(&models.ReviewLike{}).
		Where("user_id = ? AND review_id IN ?", userID, ids).
		Pluck("review_id", &liked).Error
	if err != nil {
		return apperr.Internal("load likes", err)
	}
	set := make(map[uint]bool, len(liked))
	for _, id := range liked {
		set[id] = true
	}
	for i := range views {
		views[i].LikedByMe = set[views[i].ID]
	}
	return nil
}

package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cinecore/internal/apperr"
	"cinecore/internal/logging"
	"cinecore/internal/metrics"
	"cinecore/internal/models"
	"cinecore/internal/utils"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
)

// Ratings are whole stars from MinRating to MaxRating inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

type CreateReviewInput struct {
	Body     string `json:"body" binding:"required"`
	Rating   int    `json:"rating" binding:"required"`
	IsCritic bool   `json:"is_critic"`
}

// UpdateReviewInput only touches the fields that are set.
type UpdateReviewInput struct {
	Body     *string `json:"body"`
	Rating   *int    `json:"rating"`
	IsCritic *bool   `json:"is_critic"`
}

// ReviewSubject is the subject as shown on a review; Title is empty when the
// entity can no longer be resolved.
type ReviewSubject struct {
	Type  models.SubjectType `json:"type"`
	ID    uint               `json:"id"`
	Title string             `json:"title,omitempty"`
}

// ReviewView is the read shape of a review.
type ReviewView struct {
	ID        uint          `json:"id"`
	Author    string        `json:"author"`
	Subject   ReviewSubject `json:"subject"`
	Body      string        `json:"body"`
	BodyHTML  string        `json:"body_html"`
	Rating    int           `json:"rating"`
	IsCritic  bool          `json:"is_critic"`
	CreatedAt time.Time     `json:"created_at"`
	LikeCount int64         `json:"like_count"`
	LikedByMe bool          `json:"liked_by_me"` // false for anonymous callers
}

// RatingSummary averages are nil when the category has no reviews.
type RatingSummary struct {
	CriticAverage   *float64 `json:"critic_average"`
	CriticCount     int64    `json:"critic_count"`
	AudienceAverage *float64 `json:"audience_average"`
	AudienceCount   int64    `json:"audience_count"`
}

// HeatmapBucket counts reviews created on one UTC calendar date.
type HeatmapBucket struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ReviewService stores reviews against any subject and computes per-subject
// aggregates. It keeps no state between calls.
type ReviewService struct {
	db       *gorm.DB
	subjects *SubjectResolver
	trending *TrendingRanker
	log      hclog.Logger
}

func NewReviewService(db *gorm.DB, subjects *SubjectResolver, trending *TrendingRanker) *ReviewService {
	return &ReviewService{
		db:       db,
		subjects: subjects,
		trending: trending,
		log:      logging.L("reviews"),
	}
}

func (s *ReviewService) forSubject(ctx context.Context, ref SubjectRef) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Review{}).
		Where("subject_type = ? AND subject_id = ?", ref.Type, ref.ID)
}

// List returns the subject's reviews newest first.
func (s *ReviewService) List(ctx context.Context, ref SubjectRef, page utils.Page) (*utils.Paginated[ReviewView], error) {
	if _, err := s.subjects.Resolve(ctx, ref); err != nil {
		return nil, err
	}

	var total int64
	if err := s.forSubject(ctx, ref).Count(&total).Error; err != nil {
		return nil, apperr.Internal("count reviews", err)
	}

	var reviews []models.Review
	err := s.forSubject(ctx, ref).Preload("User").
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&reviews).Error
	if err != nil {
		return nil, apperr.Internal("list reviews", err)
	}

	views, err := s.views(ctx, reviews, nil)
	if err != nil {
		return nil, err
	}
	return utils.NewPaginated(page, total, views), nil
}

// ListByUser returns every review written by username, newest first.
func (s *ReviewService) ListByUser(ctx context.Context, username string, page utils.Page) (*utils.Paginated[ReviewView], error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Validation("username", "is required")
	}

	q := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Review{}).
			Joins("JOIN users ON users.id = reviews.user_id").
			Where("LOWER(users.username) = LOWER(?)", username)
	}

	var total int64
	if err := q().Count(&total).Error; err != nil {
		return nil, apperr.Internal("count reviews", err)
	}

	var reviews []models.Review
	err := q().Preload("User").
		Order("reviews.created_at DESC, reviews.id DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&reviews).Error
	if err != nil {
		return nil, apperr.Internal("list reviews", err)
	}

	views, err := s.views(ctx, reviews, nil)
	if err != nil {
		return nil, err
	}
	return utils.NewPaginated(page, total, views), nil
}

// Get returns a single review.
func (s *ReviewService) Get(ctx context.Context, id uint) (*ReviewView, error) {
	review, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []models.Review{*review}, nil)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Create adds userID's review of the subject. A user reviews a subject once.
func (s *ReviewService) Create(ctx context.Context, userID uint, ref SubjectRef, in CreateReviewInput) (*ReviewView, error) {
	if err := validateRating(in.Rating); err != nil {
		return nil, err
	}
	body, err := validateBody(in.Body)
	if err != nil {
		return nil, err
	}
	subject, err := s.subjects.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	var existing int64
	if err := s.forSubject(ctx, ref).Where("user_id = ?", userID).Count(&existing).Error; err != nil {
		return nil, apperr.Internal("check existing review", err)
	}
	if existing > 0 {
		return nil, apperr.Conflict("you have already reviewed this " + string(ref.Type))
	}

	review := models.Review{
		UserID:      userID,
		SubjectType: ref.Type,
		SubjectID:   ref.ID,
		Body:        body,
		Rating:      in.Rating,
		IsCritic:    in.IsCritic,
	}
	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		// lost a race with a concurrent create for the same (user, subject)
		if isDuplicate(err) {
			return nil, apperr.Conflict("you have already reviewed this " + string(ref.Type))
		}
		return nil, apperr.Internal("create review", err)
	}

	metrics.ReviewsCreated.Inc()
	s.log.Debug("review created", "review_id", review.ID, "user_id", userID, "subject_type", ref.Type, "subject_id", ref.ID)
	s.subjectChanged(ref)

	if err := s.db.WithContext(ctx).Preload("User").First(&review, review.ID).Error; err != nil {
		return nil, apperr.Internal("reload review", err)
	}
	views, err := s.views(ctx, []models.Review{review}, map[SubjectRef]string{ref: subject.Title})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Update edits body, rating or critic flag. Only the author may update and the
// creation timestamp never changes.
func (s *ReviewService) Update(ctx context.Context, reviewID, userID uint, in UpdateReviewInput) (*ReviewView, error) {
	review, err := s.load(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := RequireOwner(review, userID, "review"); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Rating != nil {
		if err := validateRating(*in.Rating); err != nil {
			return nil, err
		}
		updates["rating"] = *in.Rating
	}
	if in.Body != nil {
		body, err := validateBody(*in.Body)
		if err != nil {
			return nil, err
		}
		updates["body"] = body
	}
	if in.IsCritic != nil {
		updates["is_critic"] = *in.IsCritic
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Review{}).Where("id = ?", review.ID).Updates(updates).Error; err != nil {
			return nil, apperr.Internal("update review", err)
		}
		s.subjectChanged(SubjectRef{Type: review.SubjectType, ID: review.SubjectID})
	}
	return s.Get(ctx, review.ID)
}

// Delete removes the review and its likes. Only the author may delete.
func (s *ReviewService) Delete(ctx context.Context, reviewID, userID uint) error {
	review, err := s.load(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := RequireOwner(review, userID, "review"); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", review.ID).Delete(&models.ReviewLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Review{}, review.ID).Error
	})
	if err != nil {
		return apperr.Internal("delete review", err)
	}

	s.log.Debug("review deleted", "review_id", review.ID, "user_id", userID)
	s.subjectChanged(SubjectRef{Type: review.SubjectType, ID: review.SubjectID})
	return nil
}

// Summary splits the subject's ratings into critic and audience averages.
func (s *ReviewService) Summary(ctx context.Context, ref SubjectRef) (*RatingSummary, error) {
	if _, err := s.subjects.Resolve(ctx, ref); err != nil {
		return nil, err
	}

	var rows []struct {
		IsCritic bool
		Total    int64
		Count    int64
	}
	err := s.forSubject(ctx, ref).
		Select("is_critic, SUM(rating) AS total, COUNT(*) AS count").
		Group("is_critic").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Internal("summarise ratings", err)
	}

	summary := &RatingSummary{}
	for _, row := range rows {
		if row.Count == 0 {
			continue
		}
		avg := float64(row.Total) / float64(row.Count)
		if row.IsCritic {
			summary.CriticAverage, summary.CriticCount = &avg, row.Count
		} else {
			summary.AudienceAverage, summary.AudienceCount = &avg, row.Count
		}
	}
	return summary, nil
}

// Heatmap counts the subject's reviews per UTC calendar date, oldest first.
// Dates without reviews are absent.
func (s *ReviewService) Heatmap(ctx context.Context, ref SubjectRef) ([]HeatmapBucket, error) {
	if _, err := s.subjects.Resolve(ctx, ref); err != nil {
		return nil, err
	}

	var stamps []time.Time
	if err := s.forSubject(ctx, ref).Pluck("created_at", &stamps).Error; err != nil {
		return nil, apperr.Internal("load review dates", err)
	}

	counts := make(map[string]int64)
	for _, ts := range stamps {
		counts[ts.UTC().Format("2006-01-02")]++
	}

	buckets := make([]HeatmapBucket, 0, len(counts))
	for d, c := range counts {
		buckets = append(buckets, HeatmapBucket{Date: d, Count: c})
	}
	// ISO dates sort lexically
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Date < buckets[j].Date })
	return buckets, nil
}

// Popular orders the subject's reviews by like count, then newest, then id.
func (s *ReviewService) Popular(ctx context.Context, ref SubjectRef, page utils.Page) (*utils.Paginated[ReviewView], error) {
	if _, err := s.subjects.Resolve(ctx, ref); err != nil {
		return nil, err
	}

	var total int64
	if err := s.forSubject(ctx, ref).Count(&total).Error; err != nil {
		return nil, apperr.Internal("count reviews", err)
	}

	var ranked []struct {
		ID        uint
		LikeCount int64
	}
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("reviews.id AS id, COUNT(review_likes.id) AS like_count").
		Joins("LEFT JOIN review_likes ON review_likes.review_id = reviews.id").
		Where("reviews.subject_type = ? AND reviews.subject_id = ?", ref.Type, ref.ID).
		Group("reviews.id, reviews.created_at").
		Order("like_count DESC, reviews.created_at DESC, reviews.id DESC").
		Offset(page.Offset()).Limit(page.Size).
		Scan(&ranked).Error
	if err != nil {
		return nil, apperr.Internal("rank reviews", err)
	}

	ids := make([]uint, 0, len(ranked))
	likes := make(map[uint]int64, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.ID)
		likes[r.ID] = r.LikeCount
	}

	var reviews []models.Review
	if len(ids) > 0 {
		if err := s.db.WithContext(ctx).Preload("User").Where("id IN ?", ids).Find(&reviews).Error; err != nil {
			return nil, apperr.Internal("load reviews", err)
		}
	}
	byID := make(map[uint]models.Review, len(reviews))
	for _, r := range reviews {
		byID[r.ID] = r
	}
	ordered := make([]models.Review, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
		}
	}

	views := s.buildViews(ctx, ordered, likes, nil)
	return utils.NewPaginated(page, total, views), nil
}

func (s *ReviewService) load(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := s.db.WithContext(ctx).Preload("User").First(&review, id).Error; err != nil {
		return nil, lookupErr(err, "review", "review")
	}
	return &review, nil
}

// views attaches like counts and subject titles.
func (s *ReviewService) views(ctx context.Context, reviews []models.Review, titles map[SubjectRef]string) ([]ReviewView, error) {
	likes, err := s.likeCounts(ctx, reviews)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, reviews, likes, titles), nil
}

func (s *ReviewService) buildViews(ctx context.Context, reviews []models.Review, likes map[uint]int64, titles map[SubjectRef]string) []ReviewView {
	if titles == nil {
		refs := make([]SubjectRef, 0, len(reviews))
		for _, r := range reviews {
			refs = append(refs, SubjectRef{Type: r.SubjectType, ID: r.SubjectID})
		}
		titles = s.subjects.Titles(ctx, refs)
	}

	out := make([]ReviewView, 0, len(reviews))
	for _, r := range reviews {
		ref := SubjectRef{Type: r.SubjectType, ID: r.SubjectID}
		out = append(out, ReviewView{
			ID:        r.ID,
			Author:    r.User.Username,
			Subject:   ReviewSubject{Type: r.SubjectType, ID: r.SubjectID, Title: titles[ref]},
			Body:      r.Body,
			BodyHTML:  string(utils.RenderMarkdown(r.Body)),
			Rating:    r.Rating,
			IsCritic:  r.IsCritic,
			CreatedAt: r.CreatedAt,
			LikeCount: likes[r.ID],
		})
	}
	return out
}

func (s *ReviewService) likeCounts(ctx context.Context, reviews []models.Review) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(reviews))
	if len(reviews) == 0 {
		return counts, nil
	}
	ids := make([]uint, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.ID)
	}

	var rows []struct {
		ReviewID uint
		Count    int64
	}
	err := s.db.WithContext(ctx).Model(&models.ReviewLike{}).
		Select("review_id, COUNT(*) AS count").
		Where("review_id IN ?", ids).
		Group("review_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Internal("count likes", err)
	}
	for _, row := range rows {
		counts[row.ReviewID] = row.Count
	}
	return counts, nil
}

func (s *ReviewService) subjectChanged(ref SubjectRef) {
	if s.trending != nil && ref.Type == models.SubjectMovie {
		s.trending.Invalidate()
	}
}

func validateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return apperr.Validation("rating", fmt.Sprintf("must be between %d and %d", MinRating, MaxRating))
	}
	return nil
}

func validateBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", apperr.Validation("body", "may not be blank")
	}
	return body, nil
}

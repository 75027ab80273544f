package handlers

import (
	"net/http"
	"strings"

	"cinecore/internal/apperr"
	"cinecore/internal/services"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviews *services.ReviewService
	likes   *services.LikeService
}

func NewReviewHandler(svc *services.Services) *ReviewHandler {
	return &ReviewHandler{reviews: svc.Reviews, likes: svc.Likes}
}

// List returns the subject's reviews, newest first.
func (h *ReviewHandler) List(c *gin.Context) {
	ref, err := subjectRef(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := h.reviews.List(c.Request.Context(), ref, pageFrom(c))
	if err == nil {
		err = h.likes.MarkLiked(c.Request.Context(), userID(c), page.Results)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ReviewHandler) Create(c *gin.Context) {
	ref, err := subjectRef(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var in services.CreateReviewInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err)
		return
	}
	review, err := h.reviews.Create(c.Request.Context(), userID(c), ref, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) Popular(c *gin.Context) {
	ref, err := subjectRef(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := h.reviews.Popular(c.Request.Context(), ref, pageFrom(c))
	if err == nil {
		err = h.likes.MarkLiked(c.Request.Context(), userID(c), page.Results)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ReviewHandler) Summary(c *gin.Context) {
	ref, err := subjectRef(c)
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := h.reviews.Summary(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReviewHandler) Heatmap(c *gin.Context) {
	ref, err := subjectRef(c)
	if err != nil {
		respondError(c, err)
		return
	}
	buckets, err := h.reviews.Heatmap(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buckets)
}

// ListByUser serves GET /api/reviews?username=.
func (h *ReviewHandler) ListByUser(c *gin.Context) {
	username := strings.TrimSpace(c.Query("username"))
	if username == "" {
		respondError(c, apperr.Validation("username", "query parameter is required"))
		return
	}
	page, err := h.reviews.ListByUser(c.Request.Context(), username, pageFrom(c))
	if err == nil {
		err = h.likes.MarkLiked(c.Request.Context(), userID(c), page.Results)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	review, err := h.reviews.Get(c.Request.Context(), id)
	if err == nil && userID(c) != 0 {
		review.LikedByMe, err = h.likes.IsLiked(c.Request.Context(), id, userID(c))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var in services.UpdateReviewInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err)
		return
	}
	review, err := h.reviews.Update(c.Request.Context(), id, userID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.reviews.Delete(c.Request.Context(), id, userID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Like toggles the caller's like on the review.
func (h *ReviewHandler) Like(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := h.likes.Toggle(c.Request.Context(), id, userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

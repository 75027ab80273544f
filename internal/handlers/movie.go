package handlers

import (
	"net/http"

	"cinecore/internal/services"

	"github.com/gin-gonic/gin"
)

type MovieHandler struct {
	trending *services.TrendingRanker
}

func NewMovieHandler(svc *services.Services) *MovieHandler {
	return &MovieHandler{trending: svc.Trending}
}

// Trending lists the top active movies by blended critic/audience rating.
func (h *MovieHandler) Trending(c *gin.Context) {
	entries, err := h.trending.Trending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if entries == nil {
		entries = []services.TrendingEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

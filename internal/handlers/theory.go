package handlers

import (
	"net/http"

	"cinecore/internal/apperr"
	"cinecore/internal/services"

	"github.com/gin-gonic/gin"
)

type TheoryHandler struct {
	theories *services.FanTheoryService
}

func NewTheoryHandler(svc *services.Services) *TheoryHandler {
	return &TheoryHandler{theories: svc.Theories}
}

func (h *TheoryHandler) List(c *gin.Context) {
	movieID, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	theories, err := h.theories.List(c.Request.Context(), movieID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, theories)
}

func (h *TheoryHandler) Create(c *gin.Context) {
	movieID, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var in struct {
		Theory string `json:"theory" binding:"required,max=200"`
	}
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err)
		return
	}
	theory, err := h.theories.Create(c.Request.Context(), movieID, userID(c), in.Theory)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, theory)
}

func (h *TheoryHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	theory, err := h.theories.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, theory)
}

func (h *TheoryHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.theories.Delete(c.Request.Context(), id, userID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Upvote adds one point. A capped vote answers 400 limit_reached with the
// theory's current total.
func (h *TheoryHandler) Upvote(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := h.theories.Upvote(c.Request.Context(), id, userID(c))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindLimitReached && result != nil {
			respondError(c, err, gin.H{"upvotes": result.Upvotes})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

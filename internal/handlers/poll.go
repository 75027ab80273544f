package handlers

import (
	"errors"
	"io"
	"net/http"

	"cinecore/internal/apperr"
	"cinecore/internal/services"

	"github.com/gin-gonic/gin"
)

type PollHandler struct {
	polls *services.PollService
}

func NewPollHandler(svc *services.Services) *PollHandler {
	return &PollHandler{polls: svc.Polls}
}

func (h *PollHandler) List(c *gin.Context) {
	movieID, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	polls, err := h.polls.List(c.Request.Context(), movieID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, polls)
}

func (h *PollHandler) Create(c *gin.Context) {
	movieID, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var in services.CreatePollInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err)
		return
	}
	poll, err := h.polls.Create(c.Request.Context(), movieID, userID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, poll)
}

func (h *PollHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	poll, err := h.polls.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, poll)
}

func (h *PollHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var in services.UpdatePollInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err)
		return
	}
	poll, err := h.polls.Update(c.Request.Context(), id, userID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, poll)
}

// Vote casts the caller's one vote. An empty body or missing option_id
// leaves OptionID at 0, which the service rejects after the poll checks.
func (h *PollHandler) Vote(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var in struct {
		OptionID uint `json:"option_id"`
	}
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, apperr.Validation("body", "malformed JSON: "+err.Error()))
		return
	}
	result, err := h.polls.Vote(c.Request.Context(), id, in.OptionID, userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

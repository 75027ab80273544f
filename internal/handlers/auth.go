package handlers

import (
	"net/http"

	"cinecore/internal/apperr"
	"cinecore/internal/middleware"
	"cinecore/internal/models"
	"cinecore/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	accounts *services.AccountService
	tokens   *services.TokenIssuer
}

func NewAuthHandler(svc *services.Services) *AuthHandler {
	return &AuthHandler{accounts: svc.Accounts, tokens: svc.Tokens}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err)
		return
	}
	user, err := h.accounts.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	h.signIn(c, http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err)
		return
	}
	user, err := h.accounts.Authenticate(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.signIn(c, http.StatusOK, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		respondError(c, apperr.Internal("save session", err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, userView(middleware.CurrentUser(c)))
}

// signIn issues a token and also records the user in the cookie session.
func (h *AuthHandler) signIn(c *gin.Context, status int, user *models.User) {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		respondError(c, apperr.Internal("save session", err))
		return
	}

	c.JSON(status, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"user":         userView(user),
	})
}

package middleware

import (
	"net/http"
	"strings"

	"cinecore/internal/apperr"
	"cinecore/internal/models"
	"cinecore/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

// SessionUserKey is the session field holding the logged-in user id.
const SessionUserKey = "user_id"

// LoadUser resolves the caller from an Authorization: Bearer token, falling
// back to the cookie session. Anonymous requests continue without a user.
// A bearer token that fails to verify is rejected outright.
func LoadUser(accounts *services.AccountService, tokens *services.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID uint

		if header := c.GetHeader("Authorization"); header != "" {
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				abortUnauthorized(c, "authorization header must be a Bearer token")
				return
			}
			id, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				abortUnauthorized(c, err.Error())
				return
			}
			userID = id
		} else if id, ok := sessions.Default(c).Get(SessionUserKey).(uint); ok {
			userID = id
		}

		if userID != 0 {
			user, err := accounts.Get(c.Request.Context(), userID)
			if err == nil {
				c.Set(CheckUserKey, user)
			} else if apperr.KindOf(err) != apperr.KindNotFound {
				c.Error(err)
			}
		}
		c.Next()
	}
}

// AuthRequired rejects requests LoadUser could not attach a user to.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			abortUnauthorized(c, "authentication credentials were not provided")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"kind": apperr.KindUnauthorized, "message": msg},
	})
}

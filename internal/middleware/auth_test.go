package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinecore/internal/config"
	"cinecore/internal/db/dbtest"
	"cinecore/internal/services"
	"cinecore/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*gin.Engine, *services.Services, uint) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	d := dbtest.New(t)
	cfg := &config.Config{JWTSecret: "test-secret", JWTTTL: time.Hour}
	svc := services.New(d, cfg, utils.NewCache(4))
	user := dbtest.CreateUser(t, d, "alice")

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("session-secret"))))
	r.Use(LoadUser(svc.Accounts, svc.Tokens))
	r.GET("/open", func(c *gin.Context) {
		if u := CurrentUser(c); u != nil {
			c.String(http.StatusOK, u.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/closed", AuthRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Username)
	})
	return r, svc, user.ID
}

func TestLoadUser(t *testing.T) {
	r, svc, userID := setupRouter(t)
	token, err := svc.Tokens.Issue(userID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"anonymous reader", "/open", "", http.StatusOK, "anonymous"},
		{"bearer reader", "/open", "Bearer " + token, http.StatusOK, "alice"},
		{"anonymous writer", "/closed", "", http.StatusUnauthorized, ""},
		{"bearer writer", "/closed", "Bearer " + token, http.StatusOK, "alice"},
		{"bad token", "/open", "Bearer garbage", http.StatusUnauthorized, ""},
		{"wrong scheme", "/open", "Basic abc", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"kind":"unauthorized"`)
			}
		})
	}
}

func TestLoadUserUnknownAccount(t *testing.T) {
	r, svc, _ := setupRouter(t)
	token, err := svc.Tokens.Issue(4242)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/closed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinecore/internal/config"
	"cinecore/internal/db/dbtest"
	"cinecore/internal/services"
	"cinecore/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestServer(t *testing.T) (*testServer, uint) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	d := dbtest.New(t)
	cfg := &config.Config{JWTSecret: "test-secret", JWTTTL: time.Hour, TrendingCacheTTL: time.Minute}
	svc := services.New(d, cfg, utils.NewCache(16))
	movie := dbtest.CreateMovie(t, d, "Arrival")
	return &testServer{t: t, engine: New(d, svc, "session-secret")}, movie.ID
}

func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func (s *testServer) register(username string) string {
	s.t.Helper()
	w, out := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username, "email": username + "@example.com",
		"password": "correct-horse", "password2": "correct-horse",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return out["access_token"].(string)
}

func errorKind(out map[string]interface{}) string {
	e, _ := out["error"].(map[string]interface{})
	k, _ := e["kind"].(string)
	return k
}

func TestReviewFlow(t *testing.T) {
	s, movieID := newTestServer(t)
	alice := s.register("alice")
	bob := s.register("bob")
	reviews := fmt.Sprintf("/api/subjects/movie/%d/reviews", movieID)

	w, _ := s.do(http.MethodPost, reviews, "", gin.H{"body": "x", "rating": 4})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, out := s.do(http.MethodPost, reviews, alice, gin.H{"body": "Loved it", "rating": 7})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", errorKind(out))

	w, out = s.do(http.MethodPost, reviews, alice, gin.H{"body": "Loved it", "rating": 5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reviewID := uint(out["id"].(float64))

	w, out = s.do(http.MethodPost, reviews, alice, gin.H{"body": "Again", "rating": 4})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", errorKind(out))

	w, out = s.do(http.MethodPost, fmt.Sprintf("/api/reviews/%d/like", reviewID), bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["liked"])
	assert.Equal(t, float64(1), out["like_count"])

	review := fmt.Sprintf("/api/reviews/%d", reviewID)
	w, out = s.do(http.MethodGet, review, bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["liked_by_me"])
	w, out = s.do(http.MethodGet, review, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, out["liked_by_me"])
	w, out = s.do(http.MethodGet, reviews+"/popular", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	first := out["results"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, true, first["liked_by_me"])

	w, out = s.do(http.MethodGet, reviews+"/summary", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5), out["audience_average"])
	assert.Nil(t, out["critic_average"])

	w, out = s.do(http.MethodGet, reviews, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), out["count"])
	assert.Nil(t, out["next"])

	w, _ = s.do(http.MethodPatch, review, bob, gin.H{"rating": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodGet, "/api/subjects/book/1/reviews", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodGet, "/api/subjects/movie/999/reviews", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodDelete, review, alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTheoryUpvoteLimit(t *testing.T) {
	s, movieID := newTestServer(t)
	alice := s.register("alice")

	w, out := s.do(http.MethodPost, fmt.Sprintf("/api/movies/%d/theories", movieID), alice, gin.H{"theory": "It loops"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	upvote := fmt.Sprintf("/api/theories/%d/upvote", uint(out["id"].(float64)))

	for i := 0; i < 5; i++ {
		w, _ = s.do(http.MethodPost, upvote, alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w, out = s.do(http.MethodPost, upvote, alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "limit_reached", errorKind(out))
	assert.Equal(t, float64(5), out["error"].(map[string]interface{})["upvotes"])
}

func TestPollVoteFlow(t *testing.T) {
	s, movieID := newTestServer(t)
	alice := s.register("alice")

	w, out := s.do(http.MethodPost, fmt.Sprintf("/api/movies/%d/polls", movieID), alice, gin.H{
		"question": "Best twist?", "options": []string{"Hannah", "Heptapods"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	pollID := uint(out["id"].(float64))
	options := out["options"].([]interface{})
	optionID := uint(options[0].(map[string]interface{})["id"].(float64))
	vote := fmt.Sprintf("/api/polls/%d/vote", pollID)

	w, out = s.do(http.MethodPost, vote, alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", errorKind(out))

	w, out = s.do(http.MethodPost, vote, alice, gin.H{"option_id": optionID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, float64(1), out["votes"])

	w, _ = s.do(http.MethodPost, vote, alice, gin.H{"option_id": optionID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, out = s.do(http.MethodGet, fmt.Sprintf("/api/polls/%d", pollID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), out["total_votes"])
}

func TestAuthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	s.register("alice")

	w, out := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", errorKind(out))

	w, out = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code)
	token := out["access_token"].(string)

	w, out = s.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", out["username"])

	w, _ = s.do(http.MethodGet, "/api/movies/trending", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

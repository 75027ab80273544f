package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("TRENDING_CACHE_TTL", "")

	cfg, _ := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5*time.Minute, cfg.TrendingCacheTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("TRENDING_CACHE_TTL", "not-a-duration")

	cfg, _ := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 5*time.Minute, cfg.TrendingCacheTTL)
}

package mcpserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// clearPatchkitEnv clears all PATCHKIT_* env vars to isolate tests from the ambient environment.
func clearPatchkitEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PATCHKIT_CACHE_ENABLED", "PATCHKIT_CACHE_MAX_SIZE",
		"PATCHKIT_CACHE_FILE_TTL", "PATCHKIT_CACHE_URL_TTL",
		"PATCHKIT_CACHE_CONTENT_TTL", "PATCHKIT_CACHE_SWEEP_INTERVAL",
		"PATCHKIT_LIST_LIMIT", "PATCHKIT_MAX_LIMIT",
		"PATCHKIT_MATCH_USE_INDEX", "PATCHKIT_MAX_INLINE_SIZE",
		"PATCHKIT_ALLOW_PRIVATE_IPS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearPatchkitEnv(t)

	c := loadConfig()

	assert.True(t, c.CacheEnabled)
	assert.Equal(t, 10, c.CacheMaxSize)
	assert.Equal(t, 15*time.Minute, c.CacheFileTTL)
	assert.Equal(t, 5*time.Minute, c.CacheURLTTL)
	assert.Equal(t, 15*time.Minute, c.CacheContentTTL)
	assert.Equal(t, 60*time.Second, c.CacheSweepInterval)
	assert.Equal(t, 100, c.ListLimit)
	assert.Equal(t, 1000, c.MaxLimit)
	assert.True(t, c.MatchUseIndex)
	assert.Equal(t, int64(10*1024*1024), c.MaxInlineSize)
	assert.False(t, c.AllowPrivateIPs)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearPatchkitEnv(t)
	t.Setenv("PATCHKIT_CACHE_ENABLED", "false")
	t.Setenv("PATCHKIT_CACHE_MAX_SIZE", "50")
	t.Setenv("PATCHKIT_CACHE_FILE_TTL", "30m")
	t.Setenv("PATCHKIT_CACHE_URL_TTL", "2m")
	t.Setenv("PATCHKIT_CACHE_CONTENT_TTL", "10m")
	t.Setenv("PATCHKIT_CACHE_SWEEP_INTERVAL", "30s")
	t.Setenv("PATCHKIT_LIST_LIMIT", "200")
	t.Setenv("PATCHKIT_MAX_LIMIT", "500")
	t.Setenv("PATCHKIT_MATCH_USE_INDEX", "false")
	t.Setenv("PATCHKIT_MAX_INLINE_SIZE", "5242880")
	t.Setenv("PATCHKIT_ALLOW_PRIVATE_IPS", "true")

	c := loadConfig()

	assert.False(t, c.CacheEnabled)
	assert.Equal(t, 50, c.CacheMaxSize)
	assert.Equal(t, 30*time.Minute, c.CacheFileTTL)
	assert.Equal(t, 2*time.Minute, c.CacheURLTTL)
	assert.Equal(t, 10*time.Minute, c.CacheContentTTL)
	assert.Equal(t, 30*time.Second, c.CacheSweepInterval)
	assert.Equal(t, 200, c.ListLimit)
	assert.Equal(t, 500, c.MaxLimit)
	assert.False(t, c.MatchUseIndex)
	assert.Equal(t, int64(5242880), c.MaxInlineSize)
	assert.True(t, c.AllowPrivateIPs)
}

func TestLoadConfig_InvalidValues_UseDefaults(t *testing.T) {
	clearPatchkitEnv(t)
	t.Setenv("PATCHKIT_CACHE_MAX_SIZE", "banana")
	t.Setenv("PATCHKIT_CACHE_FILE_TTL", "not-a-duration")
	t.Setenv("PATCHKIT_CACHE_ENABLED", "maybe")
	t.Setenv("PATCHKIT_LIST_LIMIT", "-5")
	t.Setenv("PATCHKIT_MAX_INLINE_SIZE", "abc")
	t.Setenv("PATCHKIT_MAX_LIMIT", "0")

	c := loadConfig()

	assert.True(t, c.CacheEnabled)
	assert.Equal(t, 10, c.CacheMaxSize)
	assert.Equal(t, 15*time.Minute, c.CacheFileTTL)
	assert.Equal(t, 100, c.ListLimit)
	assert.Equal(t, int64(10*1024*1024), c.MaxInlineSize)
	assert.Equal(t, 1000, c.MaxLimit)
}

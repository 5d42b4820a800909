package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Cache settings.
	CacheEnabled       bool
	CacheMaxSize       int
	CacheFileTTL       time.Duration
	CacheURLTTL        time.Duration
	CacheContentTTL    time.Duration
	CacheSweepInterval time.Duration

	// List tool defaults.
	ListLimit int
	MaxLimit  int

	// Match tool defaults.
	MatchUseIndex bool

	// Input limits.
	MaxInlineSize   int64
	AllowPrivateIPs bool
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from PATCHKIT_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		CacheEnabled:       envBool("PATCHKIT_CACHE_ENABLED", true),
		CacheMaxSize:       envInt("PATCHKIT_CACHE_MAX_SIZE", 10),
		CacheFileTTL:       envDuration("PATCHKIT_CACHE_FILE_TTL", 15*time.Minute),
		CacheURLTTL:        envDuration("PATCHKIT_CACHE_URL_TTL", 5*time.Minute),
		CacheContentTTL:    envDuration("PATCHKIT_CACHE_CONTENT_TTL", 15*time.Minute),
		CacheSweepInterval: envDuration("PATCHKIT_CACHE_SWEEP_INTERVAL", 60*time.Second),
		ListLimit:          envInt("PATCHKIT_LIST_LIMIT", 100),
		MaxLimit:           envInt("PATCHKIT_MAX_LIMIT", 1000),
		MatchUseIndex:      envBool("PATCHKIT_MATCH_USE_INDEX", true),
		MaxInlineSize:      int64(envInt("PATCHKIT_MAX_INLINE_SIZE", 10*1024*1024)),
		AllowPrivateIPs:    envBool("PATCHKIT_ALLOW_PRIVATE_IPS", false),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return d
}

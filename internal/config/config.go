package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Repository content provider (GitHub)
	GitHubToken  string // personal access token with contents write scope
	GitHubOwner  string // repository owner (user or org)
	GitHubRepo   string // repository holding sites.txt / 404.txt / todo.csv
	GitHubBranch string // branch the data files live on (default: main)
	CommitMode   string // "auto" | "tree" | "file"

	// Catalog
	ReloadInterval time.Duration // interval to re-read the data files (default: 5m)
	CategoriesFile string        // optional categories.yaml path (empty = built-in defaults)

	// Analyzer
	AnalyzeTimeout time.Duration // per-request timeout for page fetch / probes
	LLMBaseURL     string        // chat-completions endpoint base URL (optional)
	LLMAPIKey      string        // optional
	LLMModel       string        // optional

	// Admin auth
	AdminUsername string
	AdminPassword string
	SessionSecret string        // HMAC key for session tokens
	SessionTTL    time.Duration // session token lifetime (default: 24h)

	// Redis snapshot cache (optional, empty addr disables it)
	RedisAddr     string
	RedisUser     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration // TTL for the cached catalog snapshot

	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	// Access restrictions
	AllowedHosts []string // optional, restrict admin access to specific Host headers
	AllowedCIDRS []string // optional, restrict admin access to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("GITDEX_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("GITDEX_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("GITDEX_LOG_LEVEL", "info"),
		PrettyLog: mustBool("GITDEX_PRETTY_LOG", true),

		// Repository provider
		GitHubToken:  requireEnv("GITDEX_GH_TOKEN"),
		GitHubOwner:  requireEnv("GITDEX_GH_OWNER"),
		GitHubRepo:   requireEnv("GITDEX_GH_REPO"),
		GitHubBranch: getenv("GITDEX_GH_BRANCH", "main"),
		CommitMode:   getenv("GITDEX_COMMIT_MODE", "auto"),

		// Catalog
		ReloadInterval: mustDuration("GITDEX_RELOAD_INTERVAL", 5*time.Minute),
		CategoriesFile: getenv("GITDEX_CATEGORIES_FILE", ""),

		// Analyzer
		AnalyzeTimeout: mustDuration("GITDEX_ANALYZE_TIMEOUT", 10*time.Second),
		LLMBaseURL:     getenv("GITDEX_LLM_URL", ""),
		LLMAPIKey:      getenv("GITDEX_LLM_KEY", ""),
		LLMModel:       getenv("GITDEX_LLM_MODEL", ""),

		// Admin auth
		AdminUsername: requireEnv("GITDEX_ADMIN_USERNAME"),
		AdminPassword: requireEnv("GITDEX_ADMIN_PASSWORD"),
		SessionSecret: requireEnv("GITDEX_SESSION_SECRET"),
		SessionTTL:    mustDuration("GITDEX_SESSION_TTL", 24*time.Hour),

		// Redis settings (optional)
		RedisAddr:     getenv("GITDEX_REDIS_ADDR", ""),
		RedisUser:     getenv("GITDEX_REDIS_USERNAME", "default"),
		RedisPassword: getenv("GITDEX_REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("GITDEX_REDIS_DB", 0),
		CacheTTL:      mustDuration("GITDEX_CACHE_TTL", 5*time.Minute),

		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("GITDEX_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("GITDEX_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("GITDEX_TRUST_PROXY", true),
	}

	switch cfg.CommitMode {
	case "auto", "tree", "file":
	default:
		panic(fmt.Sprintf("❌ FATAL: Invalid GITDEX_COMMIT_MODE %q (want auto, tree or file)", cfg.CommitMode))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.GitHubToken = "***REDACTED***"
		cfgCopy.AdminPassword = "***REDACTED***"
		cfgCopy.SessionSecret = "***REDACTED***"
		cfgCopy.RedisPassword = "***REDACTED***"
		cfgCopy.LLMAPIKey = "***REDACTED***"
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

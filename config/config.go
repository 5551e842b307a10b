package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Sensitive data never has defaults inside code and must be provided via the
// environment.
type AppConfig struct {
	AppPort   string
	JWTSecret string
	// Token lifetime in hours for issued JWTs.
	TokenTTLHours int

	// Database
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	// OAuth login
	GitHubClientID     string
	GitHubClientSecret string
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectBase  string

	RateLimitPerMinute int
	AllowedOrigins     []string
	AdminUsernames     []string

	// Gin framework configuration
	GinMode string
	GinPath string

	// Redis for caching, token blacklist, oauth state and idempotency keys
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	// Registration anti-abuse
	RegisterMaxPerIPPerDay        int
	RegisterAttemptCooldownSec    int
	RegisterFailedMaxPerIPPerHour int
	RegisterTempBanMinutes        int

	// Generative AI (moderation + auto-reply)
	GeminiAPIKey        string
	GeminiModel         string
	AIRequestTimeoutSec int
	// Case-insensitive substrings that block content without a remote call.
	ModerationBlacklist []string

	// Auto-reply scheduler
	AutoReplyWorkers   int
	AutoReplyQueueSize int

	// Retention sweep for old blocked comments; <= 0 disables the sweeper.
	BlockedRetentionDays int
}

var cfg AppConfig
var loaded bool

// Load reads the application configuration from environment variables. It
// should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	cfg = AppConfig{
		AppPort:       getEnv("APP_PORT", "8080"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		TokenTTLHours: getEnvInt("TOKEN_TTL_HOURS", 72),

		DatabaseURI: getEnv("DATABASE_URI", ""),
		DBHost:      getEnv("DB_HOST", "127.0.0.1"),
		DBPort:      getEnv("DB_PORT", "3306"),
		DBUser:      getEnv("DB_USER", "aiblog"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "aiblog"),

		GitHubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectBase:  getEnv("OAUTH_REDIRECT_BASE", "http://localhost:8080"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		AllowedOrigins:     getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		AdminUsernames:     getEnvList("ADMIN_USERNAMES", nil),

		GinMode: getEnv("GIN_MODE", "release"),
		GinPath: getEnv("GIN_LOG_PATH", "logs/gin.log"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnvInt("REDIS_PORT", 6379),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPath:       getEnv("LOG_PATH", "logs/app.log"),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 7),
		LogCompress:   getEnvBool("LOG_COMPRESS", false),

		RegisterMaxPerIPPerDay:        getEnvInt("REGISTER_MAX_PER_IP_PER_DAY", 5),
		RegisterAttemptCooldownSec:    getEnvInt("REGISTER_ATTEMPT_COOLDOWN_SEC", 10),
		RegisterFailedMaxPerIPPerHour: getEnvInt("REGISTER_FAILED_MAX_PER_IP_PER_HOUR", 10),
		RegisterTempBanMinutes:        getEnvInt("REGISTER_TEMP_BAN_MINUTES", 60),

		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		AIRequestTimeoutSec: getEnvInt("AI_REQUEST_TIMEOUT_SEC", 5),
		ModerationBlacklist: getEnvList("MODERATION_BLACKLIST", defaultBlacklist()),

		AutoReplyWorkers:   getEnvInt("AUTO_REPLY_WORKERS", 4),
		AutoReplyQueueSize: getEnvInt("AUTO_REPLY_QUEUE_SIZE", 256),

		BlockedRetentionDays: getEnvInt("BLOCKED_RETENTION_DAYS", 0),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

func defaultBlacklist() []string {
	return []string{"dick", "cant", "fuck", "cock", "bitch", "whore"}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvList(key string, defaults []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaults
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return defaults
	}
	return out
}

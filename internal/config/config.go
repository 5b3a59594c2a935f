package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName          string
	AppVersion       string
	Environment      string
	HTTPAddr         string
	AuthCookieSecure bool

	// AppDomain is the apex domain tenants hang off of, e.g. "hintboard.io".
	// Locally this is "lvh.me" so acme.lvh.me:3000 resolves to 127.0.0.1.
	AppDomain string

	// TrialDays is the trial length granted to new admins at signup.
	TrialDays int

	// TenantCacheTTL enables the org-by-slug cache when > 0. When disabled the
	// gate reads the organization once per request.
	TenantCacheTTL time.Duration

	// SeedDemoData creates a demo organization and admin account on startup.
	// Meant for local development only.
	SeedDemoData bool

	OTLPEndpoint string

	Cloud CloudConfig

	RateLimit RateLimitConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
}

// CloudConfig configures the hosted-metrics push channel.
type CloudConfig struct {
	Enabled   bool
	Exporter  string
	Endpoint  string
	AuthToken string
}

// RateLimitConfig configures the redis-backed submission limiter.
type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SubmissionRate  float64
	SubmissionBurst int
	VoteRate        float64
	VoteBurst       int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	return Config{
		AppName:          getenv("APP_SERVICE", "hintboard"),
		AppVersion:       getenv("APP_VERSION", "0.1.0"),
		Environment:      environment,
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		AuthCookieSecure: authCookieSecure,
		AppDomain:        strings.ToLower(strings.TrimSpace(getenv("APP_DOMAIN", "lvh.me"))),
		TrialDays:        getenvInt("TRIAL_DAYS", 14),
		TenantCacheTTL:   time.Duration(getenvInt("TENANT_CACHE_TTL", 0)) * time.Second,
		SeedDemoData:     getenvBool("SEED_DEMO_DATA", false),
		OTLPEndpoint:     getenv("OTLP_ENDPOINT", "localhost:4317"),
		Cloud: CloudConfig{
			Enabled:   getenvBool("CLOUD_METRICS_ENABLED", false),
			Exporter:  strings.ToLower(getenv("CLOUD_METRICS_EXPORTER", "")),
			Endpoint:  strings.TrimSpace(getenv("CLOUD_METRICS_ENDPOINT", "")),
			AuthToken: strings.TrimSpace(getenv("CLOUD_METRICS_AUTH_TOKEN", "")),
		},
		RateLimit: RateLimitConfig{
			Enabled:         getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:       strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", "")),
			RedisPassword:   strings.TrimSpace(getenv("RATE_LIMIT_REDIS_PASSWORD", "")),
			RedisDB:         getenvInt("RATE_LIMIT_REDIS_DB", 0),
			SubmissionRate:  getenvFloat("RATE_LIMIT_SUBMISSION_RATE", 0.5),
			SubmissionBurst: getenvInt("RATE_LIMIT_SUBMISSION_BURST", 5),
			VoteRate:        getenvFloat("RATE_LIMIT_VOTE_RATE", 2),
			VoteBurst:       getenvInt("RATE_LIMIT_VOTE_BURST", 20),
		},
		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "hintboard"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

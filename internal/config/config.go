package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	QueueBackendSQL   = "sql"
	QueueBackendRedis = "redis"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string
	AutoMigrate  bool

	// Security
	JWTSecret      string
	RateLimitRPS   float64
	RateLimitBurst int

	// Offline queue
	QueueBackend       string // "sql" or "redis"
	QueueName          string
	QueueMaxRetries    int
	ReplayHorizon      time.Duration
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	StoreProbeInterval time.Duration

	// Verification
	DefaultTimezone    string
	PhotoTimeTolerance time.Duration
	PhotoMaxAge        time.Duration
	PhotoRadiusMeters  float64
	MaxUploadSize      int64

	// Stats
	WeeklyPassRatio float64

	// Observability (optional)
	SentryDSN    string
	OTLPEndpoint string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.). Photo
	// upload is disabled when S3Bucket is empty.
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string
	S3PresignExpiry time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "doany"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/doany.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),
		AutoMigrate:  envBool("DB_AUTO_MIGRATE", true),

		// Security
		JWTSecret:      envRequired("JWT_SECRET"),
		RateLimitRPS:   envFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 20),

		// Offline queue
		QueueBackend:       envString("QUEUE_BACKEND", QueueBackendSQL),
		QueueName:          envString("QUEUE_NAME", "server"),
		QueueMaxRetries:    envInt("QUEUE_MAX_RETRIES", 3),
		ReplayHorizon:      envDuration("OFFLINE_REPLAY_HORIZON", 7*24*time.Hour),
		RedisAddr:          envString("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      envString("REDIS_PASSWORD", ""),
		RedisDB:            envInt("REDIS_DB", 0),
		StoreProbeInterval: envDuration("STORE_PROBE_INTERVAL", 15*time.Second),

		// Verification
		DefaultTimezone:    envString("DEFAULT_TIMEZONE", "Asia/Seoul"),
		PhotoTimeTolerance: envDuration("PHOTO_TIME_TOLERANCE", 10*time.Minute),
		PhotoMaxAge:        envDuration("PHOTO_MAX_AGE", 30*time.Minute),
		PhotoRadiusMeters:  envFloat("PHOTO_RADIUS_METERS", 100),
		MaxUploadSize:      int64(envInt("MAX_UPLOAD_SIZE", 10<<20)),

		// Stats
		WeeklyPassRatio: envFloat("WEEKLY_PASS_RATIO", 1.0),

		// Observability
		SentryDSN:    envString("SENTRY_DSN", ""),
		OTLPEndpoint: envString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		// Storage
		S3Region:        envString("S3_REGION", "us-east-1"),
		S3Bucket:        envString("S3_BUCKET", ""),
		S3AccessKey:     envString("S3_ACCESS_KEY", ""),
		S3SecretKey:     envString("S3_SECRET_KEY", ""),
		S3Endpoint:      envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
		S3PresignExpiry: envDuration("S3_PRESIGN_EXPIRY", 1*time.Hour),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction rejects settings that only make sense for local runs.
func validateProduction(cfg *Config) {
	if cfg.DBDriver == "sqlite" && cfg.QueueBackend == QueueBackendRedis {
		slog.Warn("production uses sqlite with a redis queue backend")
	}
	if len(cfg.JWTSecret) < 32 {
		slog.Error("production deployment requires JWT_SECRET of at least 32 bytes")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envFloat(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("config invalid float, using default", "key", key, "value", v, "default", def)
		return def
	}
	return f
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) PhotoUploadEnabled() bool {
	return c.S3Bucket != ""
}

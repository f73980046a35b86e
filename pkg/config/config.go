package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage drivers understood by the record store bootstrap.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Session drivers understood by the session store bootstrap.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	Version   string

	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	CORS      CORSConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Materials MaterialsConfig
	Slots     SlotConfig
	Notifier  NotifierConfig
	Seed      SeedConfig
}

// StorageConfig selects where collections are persisted.
type StorageConfig struct {
	Driver  string
	DataDir string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig controls access token issuance and session storage.
type SessionConfig struct {
	Driver string
	Secret string
	TTL    time.Duration
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RateLimitConfig throttles credential endpoints per client IP.
type RateLimitConfig struct {
	LoginPerMinute int
	LoginBurst     int
}

// CacheConfig toggles the Redis read cache for catalog endpoints.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// MaterialsConfig controls class material uploads and signed downloads.
type MaterialsConfig struct {
	StorageDir       string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
}

// SlotConfig tunes the alternative slot availability heuristic.
type SlotConfig struct {
	AvailabilityRatio float64
	RandomSeed        int64
}

// NotifierConfig sizes the background notification worker pool.
type NotifierConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// SeedConfig enables demo data on empty collections.
type SeedConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.Version = v.GetString("APP_VERSION")

	cfg.Storage = StorageConfig{
		Driver:  strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DataDir: v.GetString("DATA_DIR"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Session = SessionConfig{
		Driver: strings.ToLower(v.GetString("SESSION_DRIVER")),
		Secret: v.GetString("SESSION_SECRET"),
		TTL:    parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
		Issuer: v.GetString("SESSION_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.RateLimit = RateLimitConfig{
		LoginPerMinute: v.GetInt("LOGIN_RATE_PER_MINUTE"),
		LoginBurst:     v.GetInt("LOGIN_RATE_BURST"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	maxMaterialSize := v.GetInt64("MATERIALS_MAX_FILE_SIZE")
	if maxMaterialSize <= 0 {
		maxMaterialSize = 10 * 1024 * 1024
	}
	cfg.Materials = MaterialsConfig{
		StorageDir:       v.GetString("MATERIALS_STORAGE_DIR"),
		SignedURLSecret:  v.GetString("MATERIALS_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("MATERIALS_SIGNED_URL_TTL"), 30*time.Minute),
		MaxFileSizeBytes: maxMaterialSize,
	}

	ratio := v.GetFloat64("SLOT_AVAILABILITY_RATIO")
	if ratio <= 0 || ratio > 1 {
		ratio = 0.7
	}
	cfg.Slots = SlotConfig{
		AvailabilityRatio: ratio,
		RandomSeed:        v.GetInt64("SLOT_RANDOM_SEED"),
	}

	cfg.Notifier = NotifierConfig{
		Workers:    v.GetInt("NOTIFY_WORKERS"),
		MaxRetries: v.GetInt("NOTIFY_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("NOTIFY_RETRY_DELAY"), time.Second),
	}

	cfg.Seed = SeedConfig{Enabled: v.GetBool("SEED_DEMO_DATA")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 3001)
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("APP_VERSION", "1.0.0")

	v.SetDefault("STORAGE_DRIVER", StorageFile)
	v.SetDefault("DATA_DIR", "./data")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "tutor_booking")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_DRIVER", SessionMemory)
	v.SetDefault("SESSION_SECRET", "dev_session_secret")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_ISSUER", "tutor-booking-api")

	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:5174,http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("LOGIN_RATE_PER_MINUTE", 30)
	v.SetDefault("LOGIN_RATE_BURST", 10)

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("MATERIALS_STORAGE_DIR", "./uploads")
	v.SetDefault("MATERIALS_SIGNED_URL_SECRET", "dev_materials_secret")
	v.SetDefault("MATERIALS_SIGNED_URL_TTL", "30m")
	v.SetDefault("MATERIALS_MAX_FILE_SIZE", 10*1024*1024)

	v.SetDefault("SLOT_AVAILABILITY_RATIO", 0.7)
	v.SetDefault("SLOT_RANDOM_SEED", 0)

	v.SetDefault("NOTIFY_WORKERS", 1)
	v.SetDefault("NOTIFY_MAX_RETRIES", 3)
	v.SetDefault("NOTIFY_RETRY_DELAY", "1s")

	v.SetDefault("SEED_DEMO_DATA", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

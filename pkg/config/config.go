package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	CORS        CORSConfig
	Log         LogConfig
	Planner     PlannerConfig
	Persistence PersistenceConfig
	Metrics     MetricsConfig
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
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PlannerConfig describes the weekly grid and its reference data source.
type PlannerConfig struct {
	DayStart      string
	DayEnd        string
	PixelsPerHour float64
	SnapMinutes   int
	ColumnWidth   float64
	GutterWidth   float64
	Locale        string
	DefaultSite   string
	SeedFile      string
	CacheTTL      time.Duration
}

// PersistenceConfig toggles the external store used for the reference feed and committed relocations.
type PersistenceConfig struct {
	Enabled           bool
	WorkerConcurrency int
	WorkerRetries     int
	RetryDelay        time.Duration
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
	Path    string
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
		var pathErr *fs.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

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
		Enabled:  v.GetBool("ENABLE_CACHE"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	pixels := v.GetFloat64("PLANNER_PIXELS_PER_HOUR")
	if pixels <= 0 {
		pixels = 80
	}
	snap := v.GetInt("PLANNER_SNAP_MINUTES")
	if snap <= 0 {
		snap = 60
	}
	cfg.Planner = PlannerConfig{
		DayStart:      v.GetString("PLANNER_DAY_START"),
		DayEnd:        v.GetString("PLANNER_DAY_END"),
		PixelsPerHour: pixels,
		SnapMinutes:   snap,
		ColumnWidth:   v.GetFloat64("PLANNER_COLUMN_WIDTH"),
		GutterWidth:   v.GetFloat64("PLANNER_GUTTER_WIDTH"),
		Locale:        v.GetString("PLANNER_LOCALE"),
		DefaultSite:   v.GetString("PLANNER_DEFAULT_SITE"),
		SeedFile:      v.GetString("PLANNER_SEED_FILE"),
		CacheTTL:      parseDuration(v.GetString("PLANNER_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Persistence = PersistenceConfig{
		Enabled:           v.GetBool("ENABLE_PERSISTENCE"),
		WorkerConcurrency: v.GetInt("PERSISTENCE_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("PERSISTENCE_WORKER_RETRIES"),
		RetryDelay:        parseDuration(v.GetString("PERSISTENCE_RETRY_DELAY"), time.Second),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("ENABLE_METRICS"),
		Path:    v.GetString("METRICS_PATH"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "cep_planner")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PLANNER_DAY_START", "08:00")
	v.SetDefault("PLANNER_DAY_END", "22:00")
	v.SetDefault("PLANNER_PIXELS_PER_HOUR", 80)
	v.SetDefault("PLANNER_SNAP_MINUTES", 60)
	v.SetDefault("PLANNER_COLUMN_WIDTH", 200)
	v.SetDefault("PLANNER_GUTTER_WIDTH", 64)
	v.SetDefault("PLANNER_LOCALE", "es")
	v.SetDefault("PLANNER_DEFAULT_SITE", "CEP Norte")
	v.SetDefault("PLANNER_SEED_FILE", "./seed/planner.yaml")
	v.SetDefault("PLANNER_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_PERSISTENCE", false)
	v.SetDefault("PERSISTENCE_WORKER_CONCURRENCY", 1)
	v.SetDefault("PERSISTENCE_WORKER_RETRIES", 3)
	v.SetDefault("PERSISTENCE_RETRY_DELAY", "1s")

	v.SetDefault("ENABLE_METRICS", true)
	v.SetDefault("METRICS_PATH", "/metrics")
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

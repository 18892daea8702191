package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	S3     S3Config
	Log    LogConfig
	LLM    LLMConfig
	Fetch  FetchConfig
	Cache  CacheConfig
	Queue  QueueConfig
	CORS   CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds photo storage settings.
type S3Config struct {
	Region         string `mapstructure:"region"`
	Bucket         string `mapstructure:"bucket"`
	Endpoint       string `mapstructure:"endpoint"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	MaxPhotoSizeMB int64  `mapstructure:"max_photo_size_mb"`
	PresignExpiry  int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LLMProviderConfig holds settings for a single LLM provider.
type LLMProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// LLMConfig holds recipe structuring settings with primary/secondary support.
type LLMConfig struct {
	Primary   LLMProviderConfig `mapstructure:"primary"`
	Secondary LLMProviderConfig `mapstructure:"secondary"`
}

// SecondaryConfig returns the secondary provider config, or nil if not set.
func (l *LLMConfig) SecondaryConfig() *LLMProviderConfig {
	if l.Secondary.Provider != "" {
		return &l.Secondary
	}
	return nil
}

// FetchConfig holds settings for fetching recipe web pages.
type FetchConfig struct {
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
	UserAgent    string `mapstructure:"user_agent"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
	ExtraBlocked string `mapstructure:"extra_blocked"` // comma-separated extra blocked domains
}

// Timeout returns the fetch timeout as a duration, defaulting to 30s.
func (f *FetchConfig) Timeout() time.Duration {
	if f.TimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(f.TimeoutSecs) * time.Second
}

// ExtraBlockedDomains parses the comma-separated blocklist extension.
func (f *FetchConfig) ExtraBlockedDomains() []string {
	var out []string
	for _, d := range strings.Split(f.ExtraBlocked, ",") {
		d = strings.TrimSpace(strings.ToLower(d))
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

// CacheConfig holds extraction cache settings.
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// QueueConfig holds import retry queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxAttempts      int `mapstructure:"max_attempts"`
	Concurrency      int `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the FRIGO_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FRIGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "frigo")
	v.SetDefault("db.password", "frigo_secret")
	v.SetDefault("db.name", "frigo_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "frigo")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "frigo-photos")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_photo_size_mb", 15)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// LLM defaults
	v.SetDefault("llm.primary.provider", "claude")
	v.SetDefault("llm.primary.api_key", "")
	v.SetDefault("llm.primary.default_model", "claude-sonnet-4-20250514")
	v.SetDefault("llm.primary.timeout_secs", 120)
	v.SetDefault("llm.secondary.provider", "")
	v.SetDefault("llm.secondary.api_key", "")
	v.SetDefault("llm.secondary.default_model", "")
	v.SetDefault("llm.secondary.timeout_secs", 120)

	// Fetch defaults
	v.SetDefault("fetch.timeout_secs", 20)
	v.SetDefault("fetch.user_agent", "FrigoBot/1.0 (+https://frigo.app)")
	v.SetDefault("fetch.max_body_bytes", 5*1024*1024)
	v.SetDefault("fetch.extra_blocked", "")

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", "24h")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_attempts", 5)
	v.SetDefault("queue.concurrency", 3)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "FRIGO_SERVER_PORT",
		"server.read_timeout":       "FRIGO_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "FRIGO_SERVER_WRITE_TIMEOUT",
		"server.environment":        "FRIGO_SERVER_ENVIRONMENT",
		"db.host":                   "FRIGO_DB_HOST",
		"db.port":                   "FRIGO_DB_PORT",
		"db.user":                   "FRIGO_DB_USER",
		"db.password":               "FRIGO_DB_PASSWORD",
		"db.name":                   "FRIGO_DB_NAME",
		"db.sslmode":                "FRIGO_DB_SSLMODE",
		"db.max_open":               "FRIGO_DB_MAX_OPEN",
		"db.max_idle":               "FRIGO_DB_MAX_IDLE",
		"jwt.secret":                "FRIGO_JWT_SECRET",
		"jwt.access_expiry":         "FRIGO_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":        "FRIGO_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                "FRIGO_JWT_ISSUER",
		"s3.region":                 "FRIGO_S3_REGION",
		"s3.bucket":                 "FRIGO_S3_BUCKET",
		"s3.endpoint":               "FRIGO_S3_ENDPOINT",
		"s3.access_key":             "FRIGO_S3_ACCESS_KEY",
		"s3.secret_key":             "FRIGO_S3_SECRET_KEY",
		"s3.max_photo_size_mb":      "FRIGO_S3_MAX_PHOTO_SIZE_MB",
		"s3.presign_expiry":         "FRIGO_S3_PRESIGN_EXPIRY",
		"log.level":                 "FRIGO_LOG_LEVEL",
		"log.format":                "FRIGO_LOG_FORMAT",
		"llm.primary.provider":        "FRIGO_LLM_PRIMARY_PROVIDER",
		"llm.primary.api_key":         "FRIGO_LLM_PRIMARY_API_KEY",
		"llm.primary.default_model":   "FRIGO_LLM_PRIMARY_DEFAULT_MODEL",
		"llm.primary.timeout_secs":    "FRIGO_LLM_PRIMARY_TIMEOUT_SECS",
		"llm.secondary.provider":      "FRIGO_LLM_SECONDARY_PROVIDER",
		"llm.secondary.api_key":       "FRIGO_LLM_SECONDARY_API_KEY",
		"llm.secondary.default_model": "FRIGO_LLM_SECONDARY_DEFAULT_MODEL",
		"llm.secondary.timeout_secs":  "FRIGO_LLM_SECONDARY_TIMEOUT_SECS",
		"fetch.timeout_secs":          "FRIGO_FETCH_TIMEOUT_SECS",
		"fetch.user_agent":            "FRIGO_FETCH_USER_AGENT",
		"fetch.max_body_bytes":        "FRIGO_FETCH_MAX_BODY_BYTES",
		"fetch.extra_blocked":         "FRIGO_FETCH_EXTRA_BLOCKED",
		"cache.enabled":               "FRIGO_CACHE_ENABLED",
		"cache.addr":                  "FRIGO_CACHE_ADDR",
		"cache.password":              "FRIGO_CACHE_PASSWORD",
		"cache.db":                    "FRIGO_CACHE_DB",
		"cache.ttl":                   "FRIGO_CACHE_TTL",
		"queue.poll_interval_secs":    "FRIGO_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_attempts":          "FRIGO_QUEUE_MAX_ATTEMPTS",
		"queue.concurrency":           "FRIGO_QUEUE_CONCURRENCY",
		"cors.allowed_origins":        "FRIGO_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FRIGO_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FRIGO_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:         v.GetString("s3.region"),
		Bucket:         v.GetString("s3.bucket"),
		Endpoint:       v.GetString("s3.endpoint"),
		AccessKey:      v.GetString("s3.access_key"),
		SecretKey:      v.GetString("s3.secret_key"),
		MaxPhotoSizeMB: v.GetInt64("s3.max_photo_size_mb"),
		PresignExpiry:  v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.LLM = LLMConfig{
		Primary: LLMProviderConfig{
			Provider:     v.GetString("llm.primary.provider"),
			APIKey:       v.GetString("llm.primary.api_key"),
			DefaultModel: v.GetString("llm.primary.default_model"),
			TimeoutSecs:  v.GetInt("llm.primary.timeout_secs"),
		},
		Secondary: LLMProviderConfig{
			Provider:     v.GetString("llm.secondary.provider"),
			APIKey:       v.GetString("llm.secondary.api_key"),
			DefaultModel: v.GetString("llm.secondary.default_model"),
			TimeoutSecs:  v.GetInt("llm.secondary.timeout_secs"),
		},
	}
	cfg.Fetch = FetchConfig{
		TimeoutSecs:  v.GetInt("fetch.timeout_secs"),
		UserAgent:    v.GetString("fetch.user_agent"),
		MaxBodyBytes: v.GetInt64("fetch.max_body_bytes"),
		ExtraBlocked: v.GetString("fetch.extra_blocked"),
	}
	cfg.Cache = CacheConfig{
		Enabled:  v.GetBool("cache.enabled"),
		Addr:     v.GetString("cache.addr"),
		Password: v.GetString("cache.password"),
		DB:       v.GetInt("cache.db"),
		TTL:      v.GetDuration("cache.ttl"),
	}
	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxAttempts:      v.GetInt("queue.max_attempts"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}

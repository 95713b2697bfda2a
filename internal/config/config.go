package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/straye-as/crm-core/internal/secrets"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Events    EventsConfig
	Telegram  TelegramConfig
	Jobs      JobsConfig
	Auth      AuthConfig
	ApiKey    ApiKeyConfig
	Secrets   SecretsConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	// MaxTxRetries bounds how often a transaction is replayed after a serialization failure or deadlock
	MaxTxRetries int
}

// RedisConfig is shared by the redis cache and the redis event publisher
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout int // seconds
}

// CacheConfig controls the read-through cache used by the HTTP layer
type CacheConfig struct {
	// Mode is "memory", "redis" or "none"
	Mode       string
	TTLSeconds int
	KeyPrefix  string
}

// EventsConfig controls domain event fan-out
type EventsConfig struct {
	// Mode is "none" or "redis"
	Mode    string
	Channel string
}

// TelegramConfig controls budget alert delivery to a Telegram chat
type TelegramConfig struct {
	Enabled  bool
	BotToken string
	ChatID   int64
}

// JobsConfig controls the background scheduler
type JobsConfig struct {
	AlertDispatchEnabled bool
	// AlertDispatchCron uses the seconds-enabled cron format
	AlertDispatchCron string
	// AlertDispatchBatchSize caps how many alerts one run delivers
	AlertDispatchBatchSize int
	AlertDispatchTimeout   int // seconds
}

// AuthConfig holds bearer token validation settings
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
}

type ApiKeyConfig struct {
	SecretName string
	Value      string // Loaded from secrets or environment
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	// Use "*" to allow all origins (not recommended for production)
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	// FrameOptions sets the X-Frame-Options header (DENY, SAMEORIGIN, or empty to disable)
	FrameOptions       string
	ContentTypeNosniff bool
	ReferrerPolicy     string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute is the limit for unauthenticated requests (per IP)
	RequestsPerMinute int
	// RequestsPerMinuteAuth is the limit for authenticated requests (per user)
	RequestsPerMinuteAuth int
	WhitelistIPs          []string
	// WhitelistPaths bypass rate limiting; a trailing /* matches by prefix
	WhitelistPaths []string
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// DialTimeoutDuration returns the redis dial timeout as duration
func (r *RedisConfig) DialTimeoutDuration() time.Duration {
	return time.Duration(r.DialTimeout) * time.Second
}

// TTL returns the cache entry lifetime as duration
func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// AlertDispatchTimeoutDuration returns the per-run alert dispatch timeout as duration
func (j *JobsConfig) AlertDispatchTimeoutDuration() time.Duration {
	return time.Duration(j.AlertDispatchTimeout) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.ApiKey.Value == "" {
		cfg.ApiKey.Value = v.GetString("ADMIN_API_KEY")
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	}
	if cfg.Telegram.BotToken == "" {
		cfg.Telegram.BotToken = v.GetString("TELEGRAM_BOT_TOKEN")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.Cache.Mode {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("invalid cache.mode %q: must be memory, redis or none", c.Cache.Mode)
	}
	switch c.Events.Mode {
	case "none", "redis":
	default:
		return fmt.Errorf("invalid events.mode %q: must be none or redis", c.Events.Mode)
	}
	if c.Telegram.Enabled && c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram.chatId is required when telegram is enabled")
	}
	return nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source.
//
// Key Vault is used when BOTH conditions are met:
// 1. USE_AZURE_KEY_VAULT environment variable is set to "true"
// 2. Environment is "staging" or "production"
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	if err := applySecrets(ctx, cfg, provider); err != nil {
		return nil, err
	}

	logger.Info("Secrets loaded from vault successfully",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)
	return cfg, nil
}

// secretBinding maps a vault secret (with env override) onto a config field
type secretBinding struct {
	secretName string
	envName    string
	target     *string
}

func applySecrets(ctx context.Context, cfg *Config, provider secrets.Getter) error {
	bindings := []secretBinding{
		{"POSTGRES-MAIN-HOST", "DATABASE_HOST", &cfg.Database.Host},
		{"POSTGRES-MAIN-USER", "DATABASE_USER", &cfg.Database.User},
		{"POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD", &cfg.Database.Password},
		{"admin-api-key", "ADMIN_API_KEY", &cfg.ApiKey.Value},
		{"jwt-secret", "JWT_SECRET", &cfg.Auth.JWTSecret},
		{"redis-password", "REDIS_PASSWORD", &cfg.Redis.Password},
		{"telegram-bot-token", "TELEGRAM_BOT_TOKEN", &cfg.Telegram.BotToken},
	}

	for _, b := range bindings {
		value, err := provider.GetSecretOrEnv(ctx, b.secretName, b.envName)
		if err != nil || value == "" {
			continue
		}
		*b.target = value
	}

	// Database name and SSL mode are environment specific and never stored in the vault
	if name := os.Getenv("DEFAULT_DATABASE"); name != "" {
		cfg.Database.Name = name
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}

	if cfg.Auth.JWTSecret == "" && cfg.ApiKey.Value == "" {
		return fmt.Errorf("neither jwt-secret nor admin-api-key could be resolved from the vault")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Straye CRM Core")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "crm")
	v.SetDefault("database.user", "crm_user")
	v.SetDefault("database.password", "crm_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)
	v.SetDefault("database.maxTxRetries", 3)

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dialTimeout", 5)

	// Cache defaults
	v.SetDefault("cache.mode", "memory")
	v.SetDefault("cache.ttlSeconds", 30)
	v.SetDefault("cache.keyPrefix", "crm:")

	// Events defaults
	v.SetDefault("events.mode", "none")
	v.SetDefault("events.channel", "crm.events")

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.botToken", "")
	v.SetDefault("telegram.chatId", 0)

	// Jobs defaults
	v.SetDefault("jobs.alertDispatchEnabled", true)
	v.SetDefault("jobs.alertDispatchCron", "0 */5 * * * *") // every 5 minutes
	v.SetDefault("jobs.alertDispatchBatchSize", 100)
	v.SetDefault("jobs.alertDispatchTimeout", 60)

	// Auth defaults
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.jwtIssuer", "straye-crm")

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300) // 5 minutes

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	// CORS defaults - restrictive by default
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID", "Retry-After"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	// Security header defaults - secure by default
	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000) // 1 year
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 120)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/ready"})
}

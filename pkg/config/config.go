package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "FINBLOG"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv            = "FINBLOG_APP_ENV"
	EnvAppName           = "FINBLOG_APP_NAME"
	EnvAppVersion        = "FINBLOG_APP_VERSION"
	EnvLogLevel          = "FINBLOG_LOG_LEVEL"
	EnvLoggingEnabled    = "FINBLOG_LOGGING_ENABLED"
	EnvLocale            = "FINBLOG_LOCALE"
	EnvAPIBaseURL        = "FINBLOG_API_BASE_URL"
	EnvAPITimeout        = "FINBLOG_API_TIMEOUT"
	EnvStorageDriver     = "FINBLOG_STORAGE_DRIVER"
	EnvStorageSQLitePath = "FINBLOG_STORAGE_SQLITE_PATH"
	EnvRedisURL          = "FINBLOG_REDIS_URL"
	EnvRedisAddr         = "FINBLOG_REDIS_ADDR"
	EnvSearchDebounce    = "FINBLOG_SEARCH_DEBOUNCE"
	EnvSearchMinChars    = "FINBLOG_SEARCH_MIN_CHARS"
	EnvReconcileInterval = "FINBLOG_RECONCILE_INTERVAL"

	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

type Config struct {
	App       AppConfig
	API       APIConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Search    SearchConfig
	Reconcile ReconcileConfig
	Chat      ChatConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(cfg.Redis); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env            string `envconfig:"FINBLOG_APP_ENV" required:"true"`
	Name           string `envconfig:"FINBLOG_APP_NAME" default:"finblog"`
	Version        string `envconfig:"FINBLOG_APP_VERSION" default:"dev"`
	LogLevel       string `envconfig:"FINBLOG_LOG_LEVEL" default:"info"`
	LoggingEnabled bool   `envconfig:"FINBLOG_LOGGING_ENABLED" default:"true"`
	LogWarnStack   bool   `envconfig:"FINBLOG_LOG_WARN_STACK" default:"false"`
	LogBufferCap   int    `envconfig:"FINBLOG_LOG_BUFFER_CAP" default:"1000"`
	Locale         string `envconfig:"FINBLOG_LOCALE" default:"tr-TR"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type APIConfig struct {
	BaseURL           string        `envconfig:"FINBLOG_API_BASE_URL" required:"true"`
	Timeout           time.Duration `envconfig:"FINBLOG_API_TIMEOUT" default:"30s"`
	AuthRedirectDelay time.Duration `envconfig:"FINBLOG_AUTH_REDIRECT_DELAY" default:"2s"`
}

func (a APIConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(a.BaseURL))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", EnvAPIBaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%s must be an absolute url", EnvAPIBaseURL)
	}
	return nil
}

type StorageConfig struct {
	Driver     string `envconfig:"FINBLOG_STORAGE_DRIVER" default:"memory"`
	SQLitePath string `envconfig:"FINBLOG_STORAGE_SQLITE_PATH" default:"finblog.db"`
}

func (s StorageConfig) validate(redis RedisConfig) error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case StorageMemory, StorageSQLite:
		return nil
	case StorageRedis:
		if redis.URL == "" && redis.Address == "" {
			return fmt.Errorf("either %s or %s is required for redis storage", EnvRedisURL, EnvRedisAddr)
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvStorageDriver, s.Driver)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"FINBLOG_REDIS_URL"`
	Address      string        `envconfig:"FINBLOG_REDIS_ADDR"`
	Password     string        `envconfig:"FINBLOG_REDIS_PASSWORD"`
	DB           int           `envconfig:"FINBLOG_REDIS_DB" default:"0"`
	DialTimeout  time.Duration `envconfig:"FINBLOG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FINBLOG_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"FINBLOG_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type SearchConfig struct {
	Debounce time.Duration `envconfig:"FINBLOG_SEARCH_DEBOUNCE" default:"300ms"`
	MinChars int           `envconfig:"FINBLOG_SEARCH_MIN_CHARS" default:"2"`
}

type ReconcileConfig struct {
	Interval time.Duration `envconfig:"FINBLOG_RECONCILE_INTERVAL" default:"2m"`
}

type ChatConfig struct {
	RatePerMinute int `envconfig:"FINBLOG_CHAT_RATE_PER_MIN" default:"20"`
}

// Package config loads server configuration from the environment.
//
// An optional .env file is applied first (existing variables win), then variables with the
// SK_ prefix are decoded into Config: section and field names are split into words, e.g.
// SK_AUTH_JWT_KEY or SK_STORE_POSTGRES_DSN.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every variable.
const EnvPrefix = "SK"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
)

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Store   StoreConfig
	Owner   OwnerConfig
	Notify  NotifyConfig
	Reports ReportsConfig
	Log     LogConfig
}

type ServerConfig struct {
	Addr            string        `split_words:"true" default:":8443"`
	HTTPAddr        string        `split_words:"true" default:":9090"` // empty disables /metrics and /healthz
	TLSCert         string        `split_words:"true"`
	TLSKey          string        `split_words:"true"`
	Reflection      bool          `split_words:"true" default:"false"`
	ShutdownTimeout time.Duration `split_words:"true" default:"5s"`
}

// TLS reports whether a certificate pair is configured.
func (s ServerConfig) TLS() bool { return s.TLSCert != "" && s.TLSKey != "" }

type AuthConfig struct {
	JWTKey       string        `split_words:"true" required:"true"`
	AccessTTL    time.Duration `split_words:"true" default:"12h"`
	Leeway       time.Duration `split_words:"true" default:"30s"`
	LockAfter    int           `split_words:"true" default:"3"`
	VerifyAfter  int           `split_words:"true" default:"10"`
	LockFor      time.Duration `split_words:"true" default:"5m"`
	CodeTTL      time.Duration `split_words:"true" default:"15m"`
	MaxCodeTries int           `split_words:"true" default:"5"`
}

type StoreConfig struct {
	Driver        string `split_words:"true" default:"file"`
	Key           string `split_words:"true" default:"store"`
	Path          string `split_words:"true" default:"storekeeper.json"`
	PostgresDSN   string `split_words:"true"`
	RedisURL      string `split_words:"true"`
	RedisAddr     string `split_words:"true" default:"localhost:6379"`
	RedisPassword string `split_words:"true"`
	RedisDB       int    `split_words:"true" default:"0"`
	MongoURI      string `split_words:"true"`
	MongoDatabase string `split_words:"true" default:"storekeeper"`
}

// OwnerConfig seeds the first owner account when the store has no users.
type OwnerConfig struct {
	Username string `split_words:"true"`
	Password string `split_words:"true"`
	Email    string `split_words:"true"`
}

type NotifyConfig struct {
	WebhookURL   string        `split_words:"true"` // empty logs messages instead
	WebhookToken string        `split_words:"true"`
	Timeout      time.Duration `split_words:"true" default:"10s"`
}

type ReportsConfig struct {
	LowStockThreshold int    `split_words:"true" default:"10"`
	LowStockCron      string `split_words:"true" default:"0 7 * * *"`
	CodeSweepCron     string `split_words:"true" default:"*/10 * * * *"`
	StrictStock       bool   `split_words:"true" default:"false"`
}

type LogConfig struct {
	Level       string `split_words:"true" default:"info"`
	Development bool   `split_words:"true" default:"false"`
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		// a missing .env is fine when configuration comes from the environment
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if len(c.Auth.JWTKey) < 16 {
		return errors.New("SK_AUTH_JWT_KEY must be at least 16 characters")
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return errors.New("SK_SERVER_TLS_CERT and SK_SERVER_TLS_KEY must be set together")
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Store.Path == "" {
			return errors.New("SK_STORE_PATH must be provided for the file driver")
		}
	case DriverPostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("SK_STORE_POSTGRES_DSN must be provided for the postgres driver")
		}
	case DriverRedis:
		if c.Store.RedisURL == "" && c.Store.RedisAddr == "" {
			return errors.New("SK_STORE_REDIS_URL or SK_STORE_REDIS_ADDR must be provided for the redis driver")
		}
	case DriverMongo:
		if c.Store.MongoURI == "" {
			return errors.New("SK_STORE_MONGO_URI must be provided for the mongo driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if (c.Owner.Username == "") != (c.Owner.Password == "") {
		return errors.New("SK_OWNER_USERNAME and SK_OWNER_PASSWORD must be set together")
	}
	if c.Reports.LowStockThreshold < 0 {
		return errors.New("SK_REPORTS_LOW_STOCK_THRESHOLD must not be negative")
	}
	return nil
}

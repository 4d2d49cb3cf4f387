package config

import (
	"errors"
	"fmt"
	"net"
	"time"
)

const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	PMS      PMSConfig      `yaml:"pms"`
	Session  SessionConfig  `yaml:"session"`
	Payment  PaymentConfig  `yaml:"payment"`
	Webhook  WebhookConfig  `yaml:"webhook"`
}

// ServerConfig is the HTTP listener. OperatorSecret signs the operator
// tokens the /session endpoints require; left empty, they reject every call.
type ServerConfig struct {
	Host            string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	BasePath        string        `yaml:"base_path" env:"SERVER_BASE_PATH" env-default:"/api-ibe"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" env-default:"3s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
	OperatorSecret  string        `yaml:"operator_secret" env:"OPERATOR_SECRET"`
}

func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver           string        `yaml:"driver" env:"DATABASE_DRIVER" env-default:"postgres"`
	ConnectionString string        `yaml:"connection_string" env:"DATABASE_CONNECTION_URL"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout" env:"DATABASE_CONNECT_TIMEOUT" env-default:"20s"`
}

type PMSConfig struct {
	BaseURL         string        `yaml:"base_url" env:"PMS_BASE_URL"`
	RefreshPath     string        `yaml:"refresh_path" env:"PMS_REFRESH_PATH" env-default:"/api/auth/refresh"`
	CredentialsPath string        `yaml:"credentials_path" env:"PMS_CREDENTIALS_PATH" env-default:"/api/hotels/{hotelId}/payment-gateway"`
	PromotionsPath  string        `yaml:"promotions_path" env:"PMS_PROMOTIONS_PATH" env-default:"/api/hotels/{hotelId}/promotions"`
	Timeout         time.Duration `yaml:"timeout" env:"PMS_TIMEOUT" env-default:"10s"`
	LogRequests     bool          `yaml:"log_requests" env:"PMS_LOG_REQUESTS"`
}

// SessionConfig selects where the token pair survives restarts.
type SessionConfig struct {
	Store           string        `yaml:"store" env:"SESSION_STORE" env-default:"memory"`
	Namespace       string        `yaml:"namespace" env:"SESSION_NAMESPACE" env-default:"ibe"`
	FreshnessWindow time.Duration `yaml:"freshness_window" env:"SESSION_FRESHNESS_WINDOW" env-default:"5m"`
	FileDir         string        `yaml:"file_dir" env:"SESSION_FILE_DIR" env-default:".ibe-session"`
	EncryptionKey   string        `yaml:"encryption_key" env:"SESSION_ENCRYPTION_KEY"`
	RedisURL        string        `yaml:"redis_url" env:"REDIS_URL"`
	RedisTTL        time.Duration `yaml:"redis_ttl" env:"SESSION_REDIS_TTL"`
}

type PaymentConfig struct {
	Locale          string `yaml:"locale" env:"PAYMENT_LOCALE" env-default:"en"`
	TransactionType string `yaml:"transaction_type" env:"PAYMENT_TRANSACTION_TYPE" env-default:"sale"`
	Currency        string `yaml:"currency" env:"PAYMENT_CURRENCY" env-default:"USD"`
}

type WebhookConfig struct {
	URL     string        `yaml:"url" env:"WEBHOOK_URL"`
	Timeout time.Duration `yaml:"timeout" env:"WEBHOOK_TIMEOUT" env-default:"5s"`
}

// Validate checks the settings the selected store and the PMS client need.
func (c *Config) Validate() error {
	if c.PMS.BaseURL == "" {
		return fmt.Errorf("%w: pms.base_url is required", ErrInvalidConfig)
	}
	if c.Session.FreshnessWindow <= 0 {
		return fmt.Errorf("%w: session.freshness_window must be positive", ErrInvalidConfig)
	}

	switch c.Session.Store {
	case StoreMemory:
	case StoreFile:
		if c.Session.FileDir == "" {
			return fmt.Errorf("%w: session.file_dir is required for the file store", ErrInvalidConfig)
		}
	case StorePostgres:
		if c.Database.ConnectionString == "" {
			return fmt.Errorf("%w: database.connection_string is required for the postgres store", ErrInvalidConfig)
		}
	case StoreRedis:
		if c.Session.RedisURL == "" {
			return fmt.Errorf("%w: session.redis_url is required for the redis store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown session store %q", ErrInvalidConfig, c.Session.Store)
	}

	return nil
}

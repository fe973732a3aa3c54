package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// DBHostEnv is the environment variable for database host.
	DBHostEnv = "DB_HOST"

	// DBPortEnv is the environment variable for database port.
	DBPortEnv = "DB_PORT"

	// DBUserEnv is the environment variable for database user.
	DBUserEnv = "DB_USER"

	// DBPassEnv is the environment variable for database password.
	DBPassEnv = "DB_PASS"

	// DBNameEnv is the environment variable for database name.
	DBNameEnv = "DB_NAME"

	// DBSSLModeEnv is the environment variable for the Postgres sslmode.
	DBSSLModeEnv = "DB_SSL_MODE"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "HTTP_SERVER_PORT"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// CORSAllowedOriginsEnv is a comma separated list of browser origins.
	CORSAllowedOriginsEnv = "CORS_ALLOWED_ORIGINS"

	// JWTSecretEnv is the HMAC secret used to verify identity tokens.
	JWTSecretEnv = "JWT_SECRET"

	// JWTIssuerEnv is the expected token issuer. Empty disables the check.
	JWTIssuerEnv = "JWT_ISSUER"

	// RedisAddrEnv is the address of the product cache. Empty disables caching.
	RedisAddrEnv = "REDIS_ADDR"

	// RedisPasswordEnv is the password of the product cache.
	RedisPasswordEnv = "REDIS_PASSWORD"

	// CacheTTLSecondsEnv is the lifetime of cached products.
	CacheTTLSecondsEnv = "PRODUCT_CACHE_TTL_SECONDS"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSEndpointEnv is the environment variable for AWS endpoint.
	AWSEndpointEnv = "AWS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for SQS queue URL.
	SQSQueueURLEnv = "SQS_QUEUE_URL"

	// S3BucketEnv is the bucket product images are uploaded to.
	S3BucketEnv = "S3_BUCKET"

	// S3PublicURLEnv is the base URL uploaded objects are served from.
	S3PublicURLEnv = "S3_PUBLIC_URL"

	// OutboxIntervalSecondsEnv is how often pending events are published.
	OutboxIntervalSecondsEnv = "OUTBOX_INTERVAL_SECONDS"

	// OutboxBatchSizeEnv is how many events are published per tick.
	OutboxBatchSizeEnv = "OUTBOX_BATCH_SIZE"

	// ShippingFeeEnv is the flat shipping fee charged at checkout.
	ShippingFeeEnv = "SHIPPING_FEE"

	// FreeShippingMinimumEnv is the subtotal from which shipping is free.
	FreeShippingMinimumEnv = "FREE_SHIPPING_MINIMUM"
)

const (
	defaultSSLMode             = "disable"
	defaultCORSOrigins         = "*"
	defaultCacheTTLSeconds     = "300"
	defaultOutboxInterval      = "5"
	defaultOutboxBatchSize     = "10"
	defaultShippingFee         = "25.00"
	defaultFreeShippingMinimum = "500.00"
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")
)

// Config represents the application configuration.
type Config struct {
	DebugMode     bool
	Database      DB
	HTTPServer    Server
	MetricsServer Server
	CORS          CORS
	Auth          Auth
	Cache         Cache
	AWS           AWSConfig
	Outbox        Outbox
	Checkout      Checkout
}

// AWSConfig represents AWS-specific configuration settings.
type AWSConfig struct {
	Region      string
	Endpoint    string
	SQSQueueURL string
	S3Bucket    string
	S3PublicURL string
}

// DB represents database configuration settings.
type DB struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

// CORS lists the origins allowed to call the API from a browser.
type CORS struct {
	AllowedOrigins []string
}

// Auth holds identity token verification settings.
type Auth struct {
	JWTSecret string
	JWTIssuer string
}

// Cache holds the Redis product cache settings.
type Cache struct {
	Addr     string
	Password string
	TTL      time.Duration
}

// Enabled reports whether a cache address is configured.
func (c Cache) Enabled() bool {
	return c.Addr != ""
}

// Outbox holds the event publishing loop settings.
type Outbox struct {
	Interval  time.Duration
	BatchSize int
}

// Checkout holds order pricing settings.
type Checkout struct {
	ShippingFee         decimal.Decimal
	FreeShippingMinimum decimal.Decimal
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

func allDecimals(keyValues map[string]string) error {
	for key, value := range keyValues {
		d, err := decimal.NewFromString(value)
		if err != nil || d.IsNegative() {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value))
			return fmt.Errorf("invalid amount for key %s: %q", key, value)
		}
	}
	return nil
}

// rawConfig holds the string values read from the environment before parsing.
type rawConfig struct {
	dbPort, httpPort, metricsPort string
	cacheTTL, outboxInterval      string
	outboxBatch                   string
	shippingFee, freeShipping     string
}

func (c *Config) validate(raw rawConfig) error {
	// Validate database configuration
	if err := allNonEmpty(map[string]string{
		DBHostEnv: c.Database.Host,
		DBUserEnv: c.Database.User,
		DBNameEnv: c.Database.Name,
	}); err != nil {
		return fmt.Errorf("database configuration incomplete: %w", err)
	}

	// Validate server ports
	if err := allNonEmpty(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("server port configuration incomplete: %w", err)
	}

	// Validate numbers
	if err := allNumbers(map[string]string{
		DBPortEnv:                raw.dbPort,
		HTTPServerPortEnv:        raw.httpPort,
		MetricsServerPortEnv:     raw.metricsPort,
		CacheTTLSecondsEnv:       raw.cacheTTL,
		OutboxIntervalSecondsEnv: raw.outboxInterval,
		OutboxBatchSizeEnv:       raw.outboxBatch,
	}); err != nil {
		return fmt.Errorf("invalid number: %w", err)
	}

	if err := allDecimals(map[string]string{
		ShippingFeeEnv:         raw.shippingFee,
		FreeShippingMinimumEnv: raw.freeShipping,
	}); err != nil {
		return fmt.Errorf("invalid checkout configuration: %w", err)
	}

	if err := allNonEmpty(map[string]string{
		JWTSecretEnv: c.Auth.JWTSecret,
	}); err != nil {
		return fmt.Errorf("auth configuration incomplete: %w", err)
	}

	// Validate AWS configuration
	if err := allNonEmpty(map[string]string{
		SQSQueueURLEnv: c.AWS.SQSQueueURL,
		S3BucketEnv:    c.AWS.S3Bucket,
	}); err != nil {
		return fmt.Errorf("AWS configuration incomplete: %w", err)
	}

	return nil
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnv(name, defaultValue string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables and validates it.
func LoadFromEnv() (*Config, error) {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	raw := rawConfig{
		dbPort:         os.Getenv(DBPortEnv),
		httpPort:       os.Getenv(HTTPServerPortEnv),
		metricsPort:    os.Getenv(MetricsServerPortEnv),
		cacheTTL:       getEnv(CacheTTLSecondsEnv, defaultCacheTTLSeconds),
		outboxInterval: getEnv(OutboxIntervalSecondsEnv, defaultOutboxInterval),
		outboxBatch:    getEnv(OutboxBatchSizeEnv, defaultOutboxBatchSize),
		shippingFee:    getEnv(ShippingFeeEnv, defaultShippingFee),
		freeShipping:   getEnv(FreeShippingMinimumEnv, defaultFreeShippingMinimum),
	}

	conf := &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		Database: DB{
			Host:     os.Getenv(DBHostEnv),
			User:     os.Getenv(DBUserEnv),
			Password: os.Getenv(DBPassEnv),
			Name:     os.Getenv(DBNameEnv),
			Port:     raw.dbPort,
			SSLMode:  getEnv(DBSSLModeEnv, defaultSSLMode),
		},
		HTTPServer: Server{
			Port: raw.httpPort,
		},
		MetricsServer: Server{
			Port: raw.metricsPort,
		},
		CORS: CORS{
			AllowedOrigins: splitList(getEnv(CORSAllowedOriginsEnv, defaultCORSOrigins)),
		},
		Auth: Auth{
			JWTSecret: os.Getenv(JWTSecretEnv),
			JWTIssuer: os.Getenv(JWTIssuerEnv),
		},
		Cache: Cache{
			Addr:     os.Getenv(RedisAddrEnv),
			Password: os.Getenv(RedisPasswordEnv),
		},
		AWS: AWSConfig{
			Region:      os.Getenv(AWSRegionEnv),
			Endpoint:    os.Getenv(AWSEndpointEnv),
			SQSQueueURL: os.Getenv(SQSQueueURLEnv),
			S3Bucket:    os.Getenv(S3BucketEnv),
			S3PublicURL: os.Getenv(S3PublicURLEnv),
		},
	}

	if err := conf.validate(raw); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	// values below were validated above
	ttl, _ := strconv.Atoi(raw.cacheTTL)
	interval, _ := strconv.Atoi(raw.outboxInterval)
	batch, _ := strconv.Atoi(raw.outboxBatch)
	conf.Cache.TTL = time.Duration(ttl) * time.Second
	conf.Outbox = Outbox{Interval: time.Duration(interval) * time.Second, BatchSize: batch}
	conf.Checkout = Checkout{
		ShippingFee:         decimal.RequireFromString(raw.shippingFee),
		FreeShippingMinimum: decimal.RequireFromString(raw.freeShipping),
	}

	return conf, nil
}

package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kevin07696/checkout-kit/internal/adapters/ports"
	"github.com/kevin07696/checkout-kit/internal/adapters/secrets"
	"github.com/kevin07696/checkout-kit/internal/domain"
	pkgerrors "github.com/kevin07696/checkout-kit/pkg/errors"
	"github.com/kevin07696/checkout-kit/pkg/resilience"
)

// Environments of the payments API
const (
	EnvironmentTest = "test"
	EnvironmentLive = "live"
)

// Session store backends
const (
	SessionStoreMemory   = "memory"
	SessionStorePostgres = "postgres"
)

var defaultBaseURLs = map[string]string{
	EnvironmentTest: "https://checkoutshopper-test.adyen.com/checkoutshopper/",
	EnvironmentLive: "https://checkoutshopper-live.adyen.com/checkoutshopper/",
}

// Config holds all application configuration
type Config struct {
	Environment  string
	API          APIConfig
	Secrets      SecretsConfig
	Polling      PollingConfig
	SessionStore SessionStoreConfig
	Metrics      MetricsConfig
	Logger       LoggerConfig
}

// APIConfig holds payments API configuration
type APIConfig struct {
	BaseURL         string
	ClientKey       string // Set directly, or...
	ClientKeySecret string // ...read from the secrets backend at this path
	Timeout         time.Duration
	RateLimit       float64 // Status requests per second, 0 disables
}

// SecretsConfig holds secret backend configuration
type SecretsConfig struct {
	Backend   string // local, aws, vault
	LocalPath string
	CacheTTL  time.Duration

	AWSRegion   string
	AWSProfile  string
	AWSEndpoint string

	VaultAddress   string
	VaultToken     string
	VaultRoleID    string
	VaultSecretID  string
	VaultMount     string
	VaultKVVersion string
}

// PollingConfig holds the polling schedule
type PollingConfig struct {
	FastDelay   time.Duration
	SlowDelay   time.Duration
	FastWindow  time.Duration
	MaxDuration time.Duration
}

// SessionStoreConfig selects where polling sessions are kept
type SessionStoreConfig struct {
	Backend  string
	Database DatabaseConfig
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL      string // Takes precedence over the fields below
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// MetricsConfig holds the Prometheus endpoint configuration
type MetricsConfig struct {
	Port int // 0 disables the metrics server
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	env := &envReader{}
	defaults := resilience.DefaultPollingSchedule()

	cfg := &Config{
		Environment: strings.ToLower(env.String("CHECKOUT_ENVIRONMENT", EnvironmentTest)),
		API: APIConfig{
			BaseURL:         env.String("CHECKOUT_BASE_URL", ""),
			ClientKey:       env.String("CHECKOUT_CLIENT_KEY", ""),
			ClientKeySecret: env.String("CHECKOUT_CLIENT_KEY_SECRET", ""),
			Timeout:         env.Duration("CHECKOUT_TIMEOUT", 10*time.Second),
			RateLimit:       env.Float("CHECKOUT_RATE_LIMIT", 5),
		},
		Secrets: SecretsConfig{
			Backend:        env.String("SECRETS_BACKEND", secrets.BackendLocal),
			LocalPath:      env.String("SECRETS_LOCAL_PATH", "./secrets"),
			CacheTTL:       env.Duration("SECRETS_CACHE_TTL", 5*time.Minute),
			AWSRegion:      env.String("AWS_REGION", "eu-west-1"),
			AWSProfile:     env.String("AWS_PROFILE", ""),
			AWSEndpoint:    env.String("AWS_ENDPOINT_URL", ""),
			VaultAddress:   env.String("VAULT_ADDR", "http://127.0.0.1:8200"),
			VaultToken:     env.String("VAULT_TOKEN", ""),
			VaultRoleID:    env.String("VAULT_ROLE_ID", ""),
			VaultSecretID:  env.String("VAULT_SECRET_ID", ""),
			VaultMount:     env.String("VAULT_MOUNT_PATH", "secret"),
			VaultKVVersion: env.String("VAULT_KV_VERSION", "v2"),
		},
		Polling: PollingConfig{
			FastDelay:   env.Duration("POLL_FAST_DELAY", defaults.FastDelay),
			SlowDelay:   env.Duration("POLL_SLOW_DELAY", defaults.SlowDelay),
			FastWindow:  env.Duration("POLL_FAST_WINDOW", defaults.FastWindow),
			MaxDuration: env.Duration("POLL_MAX_DURATION", defaults.MaxDuration),
		},
		SessionStore: SessionStoreConfig{
			Backend: env.String("SESSION_STORE", SessionStoreMemory),
			Database: DatabaseConfig{
				URL:      env.String("DATABASE_URL", ""),
				Host:     env.String("DB_HOST", "localhost"),
				Port:     env.Int("DB_PORT", 5432),
				User:     env.String("DB_USER", "postgres"),
				Password: env.String("DB_PASSWORD", ""),
				Database: env.String("DB_NAME", "checkout_kit"),
				SSLMode:  env.String("DB_SSL_MODE", "disable"),
				MaxConns: int32(env.Int("DB_MAX_CONNS", 4)),
				MinConns: int32(env.Int("DB_MIN_CONNS", 1)),
			},
		},
		Metrics: MetricsConfig{
			Port: env.Int("METRICS_PORT", 0),
		},
		Logger: LoggerConfig{
			Level:       env.String("LOG_LEVEL", "info"),
			Development: env.Bool("LOG_DEVELOPMENT", false),
		},
	}

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaultBaseURLs[cfg.Environment]
	}

	if err := errors.Join(append(env.errs, cfg.Validate())...); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfigInvalid, err)
	}
	return cfg, nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	var errs []error

	if _, ok := defaultBaseURLs[c.Environment]; !ok {
		errs = append(errs, pkgerrors.NewValidationError("CHECKOUT_ENVIRONMENT", "must be test or live"))
	}

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		errs = append(errs, pkgerrors.NewValidationError("CHECKOUT_BASE_URL", "must be an absolute http(s) URL"))
	}

	switch {
	case c.API.ClientKey == "" && c.API.ClientKeySecret == "":
		errs = append(errs, pkgerrors.NewValidationError("CHECKOUT_CLIENT_KEY", "client key or CHECKOUT_CLIENT_KEY_SECRET is required"))
	case c.API.ClientKey != "":
		if err := ValidateClientKey(c.API.ClientKey, c.Environment); err != nil {
			errs = append(errs, err)
		}
	}

	if c.API.Timeout <= 0 {
		errs = append(errs, pkgerrors.NewValidationError("CHECKOUT_TIMEOUT", "must be positive"))
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, pkgerrors.NewValidationError("CHECKOUT_RATE_LIMIT", "must not be negative"))
	}

	switch c.Secrets.Backend {
	case secrets.BackendLocal, secrets.BackendAWS, secrets.BackendVault:
	default:
		errs = append(errs, pkgerrors.NewValidationError("SECRETS_BACKEND", "must be local, aws or vault"))
	}

	if err := c.PollingSchedule().Validate(); err != nil {
		errs = append(errs, pkgerrors.NewValidationError("POLL_*", err.Error()))
	}

	switch c.SessionStore.Backend {
	case SessionStoreMemory:
	case SessionStorePostgres:
		if db := c.SessionStore.Database; db.URL == "" && db.Password == "" {
			errs = append(errs, pkgerrors.NewValidationError("DB_PASSWORD", "is required for the postgres session store"))
		}
	default:
		errs = append(errs, pkgerrors.NewValidationError("SESSION_STORE", "must be memory or postgres"))
	}

	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		errs = append(errs, pkgerrors.NewValidationError("METRICS_PORT", "must be a port number"))
	}

	return errors.Join(errs...)
}

// ValidateClientKey checks that key belongs to environment
func ValidateClientKey(key, environment string) error {
	prefix := environment + "_"
	if !strings.HasPrefix(key, prefix) || len(key) == len(prefix) {
		return pkgerrors.NewValidationError("CHECKOUT_CLIENT_KEY", fmt.Sprintf("must start with %q", prefix))
	}
	return nil
}

// ResolveClientKey returns the configured client key, reading it from
// provider when only a secret path is configured.
func (c *Config) ResolveClientKey(ctx context.Context, provider ports.SecretProvider) (string, error) {
	if c.API.ClientKey != "" {
		return c.API.ClientKey, nil
	}

	secret, err := provider.GetSecret(ctx, c.API.ClientKeySecret)
	if err != nil {
		return "", fmt.Errorf("failed to read client key: %w", err)
	}

	key := strings.TrimSpace(secret.Value)
	if err := ValidateClientKey(key, c.Environment); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrConfigInvalid, err)
	}
	return key, nil
}

// PollingSchedule returns the configured polling schedule
func (c *Config) PollingSchedule() *resilience.PollingSchedule {
	return &resilience.PollingSchedule{
		FastDelay:   c.Polling.FastDelay,
		SlowDelay:   c.Polling.SlowDelay,
		FastWindow:  c.Polling.FastWindow,
		MaxDuration: c.Polling.MaxDuration,
	}
}

// SecretsSettings returns the settings of the configured secret backend
func (c *Config) SecretsSettings() secrets.Settings {
	settings := secrets.Settings{
		Backend:   c.Secrets.Backend,
		LocalPath: c.Secrets.LocalPath,
	}

	switch c.Secrets.Backend {
	case secrets.BackendAWS:
		aws := secrets.DefaultAWSSecretsManagerConfig(c.Secrets.AWSRegion)
		aws.Profile = c.Secrets.AWSProfile
		aws.Endpoint = c.Secrets.AWSEndpoint
		aws.CacheTTL = c.Secrets.CacheTTL
		settings.AWS = aws

	case secrets.BackendVault:
		vault := secrets.DefaultVaultConfig(c.Secrets.VaultAddress)
		vault.Token = c.Secrets.VaultToken
		if c.Secrets.VaultRoleID != "" {
			vault.AuthMethod = "approle"
			vault.RoleID = c.Secrets.VaultRoleID
			vault.SecretID = c.Secrets.VaultSecretID
		}
		vault.MountPath = c.Secrets.VaultMount
		vault.KVVersion = c.Secrets.VaultKVVersion
		vault.CacheTTL = c.Secrets.CacheTTL
		settings.Vault = vault
	}

	return settings
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.Database,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// envReader reads typed environment variables. Unparseable values are
// collected instead of silently replaced by their defaults.
type envReader struct {
	errs []error
}

func (r *envReader) String(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func (r *envReader) Int(key string, defaultValue int) int {
	valueStr := r.String(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		r.errs = append(r.errs, pkgerrors.NewValidationError(key, "must be an integer"))
		return defaultValue
	}
	return value
}

func (r *envReader) Float(key string, defaultValue float64) float64 {
	valueStr := r.String(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		r.errs = append(r.errs, pkgerrors.NewValidationError(key, "must be a number"))
		return defaultValue
	}
	return value
}

func (r *envReader) Bool(key string, defaultValue bool) bool {
	valueStr := r.String(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		r.errs = append(r.errs, pkgerrors.NewValidationError(key, "must be a boolean"))
		return defaultValue
	}
	return value
}

func (r *envReader) Duration(key string, defaultValue time.Duration) time.Duration {
	valueStr := r.String(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		r.errs = append(r.errs, pkgerrors.NewValidationError(key, "must be a duration such as 2s or 15m"))
		return defaultValue
	}
	return value
}

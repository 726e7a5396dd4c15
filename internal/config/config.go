package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"observer-console.backend/pkg/utils"
)

// Config holds all configuration values
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	RabbitMQ     RabbitMQConfig
	JWT          JWTConfig
	Verification VerificationConfig
	Security     SecurityConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port          string
	Env           string
	PublicBaseURL string
	CORSOrigins   []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// DSN returns the key/value connection string lib/pq expects
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis configuration; an empty URL runs without cache and idempotency
type RedisConfig struct {
	URL      string
	Password string
}

// RabbitMQConfig holds RabbitMQ configuration; an empty URL disables event publishing
type RabbitMQConfig struct {
	URL   string
	Queue string
}

// JWTConfig holds bearer token configuration
type JWTConfig struct {
	Secret string
	Issuer string
	Expiry time.Duration
}

// VerificationConfig holds the identity vendor integration and session policy
type VerificationConfig struct {
	VendorBaseURL           string
	VendorAPIKey            string
	WorkflowID              string
	VendorTimeout           time.Duration
	WebhookSecret           string
	SignatureHeader         string
	AllowUnsignedWebhooks   bool
	SessionTTL              time.Duration
	CancelPropagatesProfile bool
	DefaultMethods          []string
	ConfigCacheTTL          time.Duration
	ExpirySweepEnabled      bool
	ExpirySweepInterval     time.Duration
	ExpirySweepBatchSize    int
	PhoneDefaultRegion      string
}

// SecurityConfig holds field encryption keys (64 hex chars each)
type SecurityConfig struct {
	FieldEncryptionKey          string
	PreviousFieldEncryptionKeys []string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          getEnv("SERVER_PORT", "8080"),
			Env:           getEnv("SERVER_ENV", "development"),
			PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
			CORSOrigins:   getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "observer_console"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   getEnv("RABBITMQ_URL", ""),
			Queue: getEnv("RABBITMQ_VERIFICATION_QUEUE", "verification.status_changed"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Issuer: getEnv("JWT_ISSUER", ""),
			Expiry: getEnvAsDuration("JWT_EXPIRY", time.Hour),
		},
		Verification: VerificationConfig{
			VendorBaseURL:           strings.TrimRight(getEnv("VENDOR_BASE_URL", "https://verification.didit.me"), "/"),
			VendorAPIKey:            getEnv("VENDOR_API_KEY", ""),
			WorkflowID:              getEnv("VENDOR_WORKFLOW_ID", ""),
			VendorTimeout:           getEnvAsDuration("VENDOR_TIMEOUT", 15*time.Second),
			WebhookSecret:           getEnv("VERIFICATION_WEBHOOK_SECRET", ""),
			SignatureHeader:         getEnv("VERIFICATION_SIGNATURE_HEADER", "X-Signature"),
			AllowUnsignedWebhooks:   getEnvAsBool("VERIFICATION_ALLOW_UNSIGNED_WEBHOOKS", false),
			SessionTTL:              getEnvAsDuration("VERIFICATION_SESSION_TTL", 30*time.Minute),
			CancelPropagatesProfile: getEnvAsBool("VERIFICATION_CANCEL_PROPAGATES_PROFILE", false),
			DefaultMethods:          getEnvAsList("VERIFICATION_DEFAULT_METHODS", []string{"document"}),
			ConfigCacheTTL:          getEnvAsDuration("VERIFICATION_CONFIG_CACHE_TTL", time.Minute),
			ExpirySweepEnabled:      getEnvAsBool("VERIFICATION_EXPIRY_SWEEP_ENABLED", true),
			ExpirySweepInterval:     getEnvAsDuration("VERIFICATION_EXPIRY_SWEEP_INTERVAL", time.Minute),
			ExpirySweepBatchSize:    getEnvAsInt("VERIFICATION_EXPIRY_SWEEP_BATCH_SIZE", 100),
			PhoneDefaultRegion:      strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "")),
		},
		Security: SecurityConfig{
			FieldEncryptionKey:          getEnv("FIELD_ENCRYPTION_KEY", ""),
			PreviousFieldEncryptionKeys: getEnvAsList("FIELD_ENCRYPTION_PREVIOUS_KEYS", nil),
		},
	}
}

// Validate reports settings the server must not start with
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Verification.WebhookSecret == "" && !c.Verification.AllowUnsignedWebhooks {
		errs = append(errs, errors.New("VERIFICATION_WEBHOOK_SECRET is required; set VERIFICATION_ALLOW_UNSIGNED_WEBHOOKS=true to accept unsigned webhooks"))
	}
	if strings.TrimSpace(c.Verification.SignatureHeader) == "" {
		errs = append(errs, errors.New("VERIFICATION_SIGNATURE_HEADER must not be empty"))
	}
	if c.Verification.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("VERIFICATION_SESSION_TTL must be positive, got %s", c.Verification.SessionTTL))
	}
	if c.Verification.ExpirySweepEnabled {
		if c.Verification.ExpirySweepInterval <= 0 {
			errs = append(errs, fmt.Errorf("VERIFICATION_EXPIRY_SWEEP_INTERVAL must be positive, got %s", c.Verification.ExpirySweepInterval))
		}
		if c.Verification.ExpirySweepBatchSize <= 0 {
			errs = append(errs, fmt.Errorf("VERIFICATION_EXPIRY_SWEEP_BATCH_SIZE must be positive, got %d", c.Verification.ExpirySweepBatchSize))
		}
	}
	if region := c.Verification.PhoneDefaultRegion; region != "" && !utils.IsSupportedPhoneRegion(region) {
		errs = append(errs, fmt.Errorf("PHONE_DEFAULT_REGION %q is not a supported region code", region))
	}
	if c.Verification.VendorTimeout <= 0 {
		errs = append(errs, fmt.Errorf("VENDOR_TIMEOUT must be positive, got %s", c.Verification.VendorTimeout))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

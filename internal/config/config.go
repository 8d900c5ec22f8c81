package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	SMTP         SMTPConfig
	Registration RegistrationConfig
	Notify       NotifyConfig
	Verification VerificationConfig
	Admin        AdminConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// SMTPConfig defines the outbound mail transport.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	TLSMode     string // "starttls", "ssl" or "none"
	FromAddress string
	FromName    string
}

// RegistrationConfig tunes the registration workflow.
type RegistrationConfig struct {
	DefaultPassword string
	DefaultAppKeys  []string
	ReuseExisting   bool
	TrialDays       int
	BcryptCost      int
}

// NotifyConfig holds notification recipients and mail content values.
type NotifyConfig struct {
	AdminEmail       string
	IOSAppURL        string
	AndroidLoginURL  string
	UpsellURL        string
	SendVerification bool
	QueueSize        int
}

// VerificationConfig defines email-verification link parameters.
type VerificationConfig struct {
	Secret        string
	TTLHours      int
	PublicBaseURL string
}

// AdminConfig guards the operator endpoints.
type AdminConfig struct {
	APIKey string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "salon-registration-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		SMTP: SMTPConfig{
			Host:        os.Getenv("SMTP_HOST"),
			Port:        getEnvAsInt("SMTP_PORT", 587),
			Username:    os.Getenv("SMTP_USERNAME"),
			Password:    os.Getenv("SMTP_PASSWORD"),
			TLSMode:     getEnv("SMTP_TLS_MODE", "starttls"),
			FromAddress: getEnv("SMTP_FROM_ADDRESS", "noreply@melcoco.jp"),
			FromName:    getEnv("SMTP_FROM_NAME", "MELCOCO"),
		},
		Registration: RegistrationConfig{
			DefaultPassword: getEnv("REGISTER_DEFAULT_PASSWORD", "melcoco"),
			DefaultAppKeys:  getEnvAsList("APPS_DEFAULT_KEYS", []string{"i-agent", "i-timer", "a-agent", "a-timer"}),
			ReuseExisting:   getEnvAsBool("REGISTER_REUSE_EXISTING", true),
			TrialDays:       getEnvAsInt("REGISTER_TRIAL_DAYS", 7),
			BcryptCost:      getEnvAsInt("REGISTER_BCRYPT_COST", 12),
		},
		Notify: NotifyConfig{
			AdminEmail:       os.Getenv("NOTIFY_ADMIN_EMAIL"),
			IOSAppURL:        getEnv("IOS_APP_URL", "https://melcoco.jp/irontimer-ios/"),
			AndroidLoginURL:  getEnv("ANDROID_LOGIN_URL", "https://melco-hairdesign.com/pwa/login.html"),
			UpsellURL:        getEnv("NOTIFY_UPSELL_URL", "https://melcoco.jp/coconut-lab/"),
			SendVerification: getEnvAsBool("NOTIFY_SEND_VERIFICATION", false),
			QueueSize:        getEnvAsInt("NOTIFY_QUEUE_SIZE", 64),
		},
		Verification: VerificationConfig{
			Secret:        getEnv("VERIFY_SECRET", "dev-secret"),
			TTLHours:      getEnvAsInt("VERIFY_TTL_HOURS", 24),
			PublicBaseURL: getEnv("VERIFY_PUBLIC_BASE_URL", "http://localhost:8080"),
		},
		Admin: AdminConfig{
			APIKey: os.Getenv("ADMIN_API_KEY"),
		},
	}

	return cfg, nil
}

// Validate rejects configurations the service cannot safely start with.
// Missing mail or database settings abort boot rather than serving
// degraded traffic with silent notification loss.
func (c *Config) Validate() error {
	var missing []string
	if c.Postgres.DSN == "" {
		missing = append(missing, "POSTGRES_DSN")
	}
	if c.SMTP.Host == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if c.SMTP.Username == "" {
		missing = append(missing, "SMTP_USERNAME")
	}
	if c.SMTP.Password == "" {
		missing = append(missing, "SMTP_PASSWORD")
	}
	if c.Notify.AdminEmail == "" {
		missing = append(missing, "NOTIFY_ADMIN_EMAIL")
	}
	if len(missing) > 0 {
		return errors.New("missing required configuration: " + strings.Join(missing, ", "))
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-acme/lego/v4/lego"
	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Config holds all configuration
type Config struct {
	HTTPAddr string
	ACME     ACMEConfig
	Poll     PollConfig
	Store    StoreConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Redis    RedisConfig
	Report   ReportConfig
}

// ACMEConfig holds ACME client configuration
type ACMEConfig struct {
	DirectoryURL   string
	AccountKeyPath string
}

// PollConfig bounds the challenge/order polling loops
type PollConfig struct {
	IntervalSec int
	MaxAttempts int
}

// StoreConfig holds request store lifecycle configuration
type StoreConfig struct {
	RetentionMinutes int
	SweepIntervalSec int
	SweeperEnabled   bool
}

// JWTConfig holds JWT configuration for the admin API
type JWTConfig struct {
	Secret        string
	ExpireMinutes int
	Issuer        string
}

// AdminConfig holds the single admin credential pair.
// PasswordHash is a bcrypt hash; the admin API is disabled when either
// field is empty.
type AdminConfig struct {
	Username     string
	PasswordHash string
}

// RedisConfig holds Redis configuration for usage statistics.
// Stats fall back to an in-process recorder when Addr is empty.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ReportConfig holds issue-report email delivery configuration.
// Reports are logged instead of mailed when ServerToken is empty.
type ReportConfig struct {
	PostmarkServerToken  string
	PostmarkAccountToken string
	FromEmail            string
	SupportEmail         string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		ACME: ACMEConfig{
			DirectoryURL:   getEnv("ACME_DIRECTORY_URL", defaultDirectoryURL()),
			AccountKeyPath: getEnv("ACME_ACCOUNT_KEY_PATH", "./account-key.pem"),
		},
		Poll: PollConfig{
			IntervalSec: getEnvInt("ACME_POLL_INTERVAL_SEC", 2),
			MaxAttempts: getEnvInt("ACME_POLL_MAX_ATTEMPTS", 15),
		},
		Store: StoreConfig{
			RetentionMinutes: getEnvInt("REQUEST_RETENTION_MINUTES", 60),
			SweepIntervalSec: getEnvInt("REQUEST_SWEEP_INTERVAL_SEC", 300),
			SweeperEnabled:   getEnv("REQUEST_SWEEPER_ENABLED", "1") == "1",
		},
		JWT: JWTConfig{
			Secret:        os.Getenv("JWT_SECRET"),
			ExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 1440),
			Issuer:        getEnv("JWT_ISSUER", "certhub"),
		},
		Admin: AdminConfig{
			Username:     getEnv("ADMIN_USERNAME", ""),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASS", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Report: ReportConfig{
			PostmarkServerToken:  getEnv("POSTMARK_SERVER_TOKEN", ""),
			PostmarkAccountToken: getEnv("POSTMARK_ACCOUNT_TOKEN", ""),
			FromEmail:            getEnv("REPORT_FROM_EMAIL", ""),
			SupportEmail:         getEnv("REPORT_SUPPORT_EMAIL", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromINI loads configuration from an INI file with environment
// variable override (ENV > INI > default)
func LoadFromINI(iniPath string) (*Config, error) {
	cfgFile, err := ini.Load(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load INI file: %w", err)
	}

	getValue := func(envKey, iniSection, iniKey, defaultValue string) string {
		if value := os.Getenv(envKey); value != "" {
			return value
		}
		if value := cfgFile.Section(iniSection).Key(iniKey).String(); value != "" {
			return value
		}
		return defaultValue
	}

	getValueInt := func(envKey, iniSection, iniKey string, defaultValue int) int {
		if value := os.Getenv(envKey); value != "" {
			if intValue, err := strconv.Atoi(value); err == nil {
				return intValue
			}
		}
		if cfgFile.Section(iniSection).HasKey(iniKey) {
			if value, err := cfgFile.Section(iniSection).Key(iniKey).Int(); err == nil {
				return value
			}
		}
		return defaultValue
	}

	getValueBool := func(envKey, iniSection, iniKey string, defaultValue bool) bool {
		if value := os.Getenv(envKey); value != "" {
			return value == "1" || value == "true"
		}
		if value, err := cfgFile.Section(iniSection).Key(iniKey).Bool(); err == nil {
			return value
		}
		return defaultValue
	}

	cfg := &Config{
		HTTPAddr: getValue("HTTP_ADDR", "http", "addr", ":8080"),
		ACME: ACMEConfig{
			DirectoryURL:   getValue("ACME_DIRECTORY_URL", "acme", "directory_url", defaultDirectoryURL()),
			AccountKeyPath: getValue("ACME_ACCOUNT_KEY_PATH", "acme", "account_key_path", "./account-key.pem"),
		},
		Poll: PollConfig{
			IntervalSec: getValueInt("ACME_POLL_INTERVAL_SEC", "acme", "poll_interval_sec", 2),
			MaxAttempts: getValueInt("ACME_POLL_MAX_ATTEMPTS", "acme", "poll_max_attempts", 15),
		},
		Store: StoreConfig{
			RetentionMinutes: getValueInt("REQUEST_RETENTION_MINUTES", "store", "retention_minutes", 60),
			SweepIntervalSec: getValueInt("REQUEST_SWEEP_INTERVAL_SEC", "store", "sweep_interval_sec", 300),
			SweeperEnabled:   getValueBool("REQUEST_SWEEPER_ENABLED", "store", "sweeper_enabled", true),
		},
		JWT: JWTConfig{
			Secret:        getValue("JWT_SECRET", "jwt", "secret", ""),
			ExpireMinutes: getValueInt("JWT_EXPIRE_MINUTES", "jwt", "expire_minutes", 1440),
			Issuer:        getValue("JWT_ISSUER", "jwt", "issuer", "certhub"),
		},
		Admin: AdminConfig{
			Username:     getValue("ADMIN_USERNAME", "admin", "username", ""),
			PasswordHash: getValue("ADMIN_PASSWORD_HASH", "admin", "password_hash", ""),
		},
		Redis: RedisConfig{
			Addr:     getValue("REDIS_ADDR", "redis", "addr", ""),
			Password: getValue("REDIS_PASS", "redis", "pass", ""),
			DB:       getValueInt("REDIS_DB", "redis", "db", 0),
		},
		Report: ReportConfig{
			PostmarkServerToken:  getValue("POSTMARK_SERVER_TOKEN", "report", "postmark_server_token", ""),
			PostmarkAccountToken: getValue("POSTMARK_ACCOUNT_TOKEN", "report", "postmark_account_token", ""),
			FromEmail:            getValue("REPORT_FROM_EMAIL", "report", "from_email", ""),
			SupportEmail:         getValue("REPORT_SUPPORT_EMAIL", "report", "support_email", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ACME.DirectoryURL == "" {
		return fmt.Errorf("ACME_DIRECTORY_URL is required")
	}
	if c.ACME.AccountKeyPath == "" {
		return fmt.Errorf("ACME_ACCOUNT_KEY_PATH is required")
	}
	if c.Poll.IntervalSec <= 0 || c.Poll.MaxAttempts <= 0 {
		return fmt.Errorf("poll interval and max attempts must be positive")
	}
	if c.Store.RetentionMinutes <= 0 {
		return fmt.Errorf("request retention must be positive")
	}
	if c.Admin.Username != "" && c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required when the admin account is configured")
	}
	return nil
}

// defaultDirectoryURL selects the Let's Encrypt directory. Staging is the
// default so a misconfigured deployment cannot burn production rate limits.
func defaultDirectoryURL() string {
	if os.Getenv("ACME_ENV") == "production" {
		return lego.LEDirectoryProduction
	}
	return lego.LEDirectoryStaging
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

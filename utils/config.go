package utils

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the site reads from the environment.
// It is built once at startup and handed to the components that need it.
type Config struct {
	StoreURL      string
	MongoDatabase string

	SMTP SMTPConfig

	AdminEmail    string
	AdminPassword string

	SessionSecret       string
	SessionTTL          time.Duration
	SessionSecureCookie bool

	PublicRateLimit int

	Backup BackupConfig
}

// SMTPConfig describes the outgoing mail relay.
type SMTPConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	TLS           bool
	SenderAddress string
	SenderName    string
	Timeout       time.Duration
}

// Enabled reports whether enough is configured to open an SMTP session.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Password != ""
}

// BackupConfig describes the S3 bucket database backups are pushed to.
type BackupConfig struct {
	BucketName      string
	EndpointURL     string
	AccessKeyID     string
	SecretAccessKey string
	Hour            int
	RetentionDays   int
	Timezone        string
}

// Enabled reports whether backups can be uploaded.
func (c BackupConfig) Enabled() bool {
	return c.BucketName != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// Store backends understood by STORE_URL.
const (
	StorePocketBase = "pocketbase"
	StoreMemory     = "memory://"
)

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("store_url", StorePocketBase)
	v.SetDefault("mongo_database", "event_registration")

	v.SetDefault("smtp_host", "smtp.gmail.com")
	v.SetDefault("smtp_port", 465)
	v.SetDefault("smtp_tls", true)
	v.SetDefault("mail_sender_name", "Event Team")
	v.SetDefault("mail_timeout", "10s")

	v.SetDefault("session_ttl", "12h")
	v.SetDefault("session_secure_cookie", false)

	v.SetDefault("rate_limit_public", 30)

	v.SetDefault("backup_hour", 3)
	v.SetDefault("backup_retention_days", 30)
	v.SetDefault("backup_timezone", "UTC")
}

// LoadConfig loads an optional .env file, reads the environment and validates
// the settings shared by every command.
func LoadConfig(envFiles ...string) (*Config, error) {
	return configFromViper(newEnvViper(envFiles))
}

// LoadSMTPConfig reads only the mail relay settings. Unlike LoadConfig it
// does not require the rest of the site configuration.
func LoadSMTPConfig(envFiles ...string) SMTPConfig {
	return buildConfig(newEnvViper(envFiles)).SMTP
}

func newEnvViper(envFiles []string) *viper.Viper {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err == nil {
			log.Printf("[Config] Loaded %s", f)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setConfigDefaults(v)
	return v
}

func configFromViper(v *viper.Viper) (*Config, error) {
	cfg := buildConfig(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildConfig(v *viper.Viper) *Config {
	cfg := &Config{
		StoreURL:      strings.TrimSpace(v.GetString("store_url")),
		MongoDatabase: v.GetString("mongo_database"),
		SMTP: SMTPConfig{
			Host:          v.GetString("smtp_host"),
			Port:          v.GetInt("smtp_port"),
			Username:      v.GetString("smtp_username"),
			Password:      v.GetString("smtp_password"),
			TLS:           v.GetBool("smtp_tls"),
			SenderAddress: v.GetString("mail_sender_address"),
			SenderName:    v.GetString("mail_sender_name"),
			Timeout:       v.GetDuration("mail_timeout"),
		},
		AdminEmail:          v.GetString("admin_email"),
		AdminPassword:       v.GetString("admin_password"),
		SessionSecret:       v.GetString("session_secret"),
		SessionTTL:          v.GetDuration("session_ttl"),
		SessionSecureCookie: v.GetBool("session_secure_cookie"),
		PublicRateLimit:     v.GetInt("rate_limit_public"),
		Backup: BackupConfig{
			BucketName:      v.GetString("backup_bucket_name"),
			EndpointURL:     v.GetString("backup_endpoint_url"),
			AccessKeyID:     v.GetString("backup_access_key_id"),
			SecretAccessKey: v.GetString("backup_secret_access_key"),
			Hour:            v.GetInt("backup_hour"),
			RetentionDays:   v.GetInt("backup_retention_days"),
			Timezone:        v.GetString("backup_timezone"),
		},
	}

	if cfg.SMTP.SenderAddress == "" {
		cfg.SMTP.SenderAddress = cfg.SMTP.Username
	}
	return cfg
}

// Validate rejects settings no command can run with. Web server settings
// are checked separately by ValidateServer.
func (c *Config) Validate() error {
	var errs []error

	if c.SMTP.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("MAIL_TIMEOUT must be positive, got %s", c.SMTP.Timeout))
	}
	if c.Backup.Hour < 0 || c.Backup.Hour > 23 {
		errs = append(errs, fmt.Errorf("BACKUP_HOUR must be between 0 and 23, got %d", c.Backup.Hour))
	}

	switch {
	case c.StoreURL == StorePocketBase, c.StoreURL == StoreMemory:
	case strings.HasPrefix(c.StoreURL, "mongodb://"), strings.HasPrefix(c.StoreURL, "mongodb+srv://"):
	default:
		errs = append(errs, fmt.Errorf("unsupported STORE_URL %q", c.StoreURL))
	}

	return errors.Join(errs...)
}

// ValidateServer rejects configurations the web server cannot safely run with.
func (c *Config) ValidateServer() error {
	var errs []error

	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	// a limit below 1 would reject every public submission
	if c.PublicRateLimit < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PUBLIC must be at least 1, got %d", c.PublicRateLimit))
	}

	return errors.Join(errs...)
}

// AdminConfigured reports whether an admin login pair is set.
func (c *Config) AdminConfigured() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

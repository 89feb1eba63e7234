// Package config loads service settings from an optional YAML file, an
// optional .env file and the process environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port      string `yaml:"port"`
	DBPath    string `yaml:"db_path"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	FrontEndURL string `yaml:"front_end_url"`

	Tokens TokenConfig `yaml:"tokens"`
	Mail   MailConfig  `yaml:"mail"`
}

type TokenConfig struct {
	AccessSecret  string        `yaml:"access_secret"`
	RefreshSecret string        `yaml:"refresh_secret"`
	EmailSecret   string        `yaml:"email_secret"`
	AccessTTL     time.Duration `yaml:"access_ttl"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl"`
	EmailTTL      time.Duration `yaml:"email_ttl"`
}

type MailConfig struct {
	From          string `yaml:"from"`
	SMTPHost      string `yaml:"smtp_host"`
	SMTPPort      int    `yaml:"smtp_port"`
	SMTPUser      string `yaml:"smtp_user"`
	SMTPPassword  string `yaml:"smtp_password"`
	PostmarkToken string `yaml:"postmark_token"`
}

func Default() Config {
	return Config{
		Port:        "5000",
		DBPath:      "wishlist.db",
		LogLevel:    "info",
		LogFormat:   "text",
		FrontEndURL: "http://localhost:3000",
		Tokens: TokenConfig{
			AccessTTL:  25 * time.Minute,
			RefreshTTL: 24 * time.Hour,
			EmailTTL:   24 * time.Hour,
		},
		Mail: MailConfig{
			SMTPPort: 587,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty or the file does not exist), a .env file in the working
// directory, and finally environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "WISHLIST_PORT")
	setString(&c.DBPath, "WISHLIST_DB_PATH")
	setString(&c.LogLevel, "WISHLIST_LOG_LEVEL")
	setString(&c.LogFormat, "WISHLIST_LOG_FORMAT")
	setString(&c.FrontEndURL, "FRONT_END_URL")

	setString(&c.Tokens.AccessSecret, "SECRET_TOKEN")
	setString(&c.Tokens.RefreshSecret, "REFRESH_TOKEN_SECRET")
	setString(&c.Tokens.EmailSecret, "EMAIL_TOKEN_SECRET")

	setString(&c.Mail.From, "EMAIL_FROM_MAIL")
	setString(&c.Mail.SMTPHost, "SMTP_HOST")
	setString(&c.Mail.SMTPUser, "SMTP_USER")
	setString(&c.Mail.SMTPPassword, "SMTP_PASSWORD")
	setString(&c.Mail.PostmarkToken, "POSTMARK_TOKEN")

	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		c.Mail.SMTPPort = port
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate reports every missing required setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Tokens.AccessSecret == "" {
		errs = append(errs, errors.New("SECRET_TOKEN is required"))
	}
	if c.Tokens.RefreshSecret == "" {
		errs = append(errs, errors.New("REFRESH_TOKEN_SECRET is required"))
	}
	if c.Tokens.EmailSecret == "" {
		errs = append(errs, errors.New("EMAIL_TOKEN_SECRET is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	return errors.Join(errs...)
}

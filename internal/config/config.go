// Package config loads server configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	GitHub   GitHubConfig   `yaml:"github"`
	Sheets   SheetsConfig   `yaml:"sheets"`
	Images   ImagesConfig   `yaml:"images"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port         string `yaml:"port"`
	CookieSecure bool   `yaml:"cookie_secure"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds the admin credentials. Either AdminPassword or
// AdminPasswordHash must be set; the hash wins when both are.
type AuthConfig struct {
	JWTSecret         string `yaml:"jwt_secret"`
	AdminPassword     string `yaml:"admin_password"`
	AdminPasswordHash string `yaml:"admin_password_hash"`
	BcryptCost        int    `yaml:"bcrypt_cost"`
}

// GitHubConfig names the site repository. Owner, repo, branch and
// gallery path are defaults; the admin may remember others at runtime.
type GitHubConfig struct {
	Owner       string `yaml:"owner"`
	Repo        string `yaml:"repo"`
	Branch      string `yaml:"branch"`
	GalleryPath string `yaml:"gallery_path"`
	Token       string `yaml:"token"`
	BaseURL     string `yaml:"base_url"`
}

type SheetsConfig struct {
	APIKey             string `yaml:"api_key"`
	FoodSpreadsheetID  string `yaml:"food_spreadsheet_id"`
	BooksSpreadsheetID string `yaml:"books_spreadsheet_id"`
	GearSpreadsheetID  string `yaml:"gear_spreadsheet_id"`
	CacheTTL           string `yaml:"cache_ttl"`
}

type ImagesConfig struct {
	Workers     int `yaml:"workers"`
	MaxUploadMB int `yaml:"max_upload_mb"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8080", CookieSecure: true},
		Database: DatabaseConfig{Path: "gallery-admin.db"},
		Auth:     AuthConfig{BcryptCost: 12},
		GitHub:   GitHubConfig{Branch: "main", GalleryPath: "photos.html"},
		Sheets:   SheetsConfig{CacheTTL: "5m"},
		Images:   ImagesConfig{Workers: 2, MaxUploadMB: 64},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path, when it exists, over the defaults and
// then applies environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	strs := map[string]*string{
		"PORT":                 &c.Server.Port,
		"DATABASE_PATH":        &c.Database.Path,
		"JWT_SECRET":           &c.Auth.JWTSecret,
		"ADMIN_PASSWORD":       &c.Auth.AdminPassword,
		"ADMIN_PASSWORD_HASH":  &c.Auth.AdminPasswordHash,
		"GITHUB_TOKEN":         &c.GitHub.Token,
		"GITHUB_OWNER":         &c.GitHub.Owner,
		"GITHUB_REPO":          &c.GitHub.Repo,
		"GITHUB_BRANCH":        &c.GitHub.Branch,
		"GITHUB_API_URL":       &c.GitHub.BaseURL,
		"GALLERY_PATH":         &c.GitHub.GalleryPath,
		"SHEETS_API_KEY":       &c.Sheets.APIKey,
		"FOOD_SPREADSHEET_ID":  &c.Sheets.FoodSpreadsheetID,
		"BOOKS_SPREADSHEET_ID": &c.Sheets.BooksSpreadsheetID,
		"GEAR_SPREADSHEET_ID":  &c.Sheets.GearSpreadsheetID,
		"SHEETS_CACHE_TTL":     &c.Sheets.CacheTTL,
		"LOG_LEVEL":            &c.Logging.Level,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"BCRYPT_COST":   &c.Auth.BcryptCost,
		"WORKERS":       &c.Images.Workers,
		"MAX_UPLOAD_MB": &c.Images.MaxUploadMB,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
	}

	// Secure cookies stay on unless explicitly disabled for local development.
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		c.Server.CookieSecure = v != "false"
	}
	return nil
}

// Validate reports the first configuration problem that prevents startup.
func (c *Config) Validate() error {
	switch {
	case c.Auth.JWTSecret == "":
		return errors.New("JWT_SECRET is required")
	case len(c.Auth.JWTSecret) < 32:
		return errors.New("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
	case c.Auth.AdminPassword == "" && c.Auth.AdminPasswordHash == "":
		return errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	case c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 14:
		return fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.Auth.BcryptCost)
	case c.Images.Workers < 1:
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Images.Workers)
	case c.Images.MaxUploadMB < 1:
		return fmt.Errorf("MAX_UPLOAD_MB must be at least 1, got %d", c.Images.MaxUploadMB)
	}
	if _, err := c.SheetsCacheTTL(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// SheetsCacheTTL parses the sheets cache duration. Empty means no cache.
func (c *Config) SheetsCacheTTL() (time.Duration, error) {
	if c.Sheets.CacheTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Sheets.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid sheets cache ttl: %w", err)
	}
	return d, nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Logging.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	return level, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the scraper.
type Config struct {
	// List selection and page range
	List ListConfig `yaml:"list" json:"list"`

	// Cover download settings
	Covers CoversConfig `yaml:"covers" json:"covers"`

	// Network behavior
	Network NetworkConfig `yaml:"network" json:"network"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ListConfig selects the list and page range to crawl.
type ListConfig struct {
	ID               string `yaml:"id" json:"id"`
	StartPage        int    `yaml:"start_page" json:"start_page"`
	EndPage          int    `yaml:"end_page" json:"end_page"`
	DelayPagesSecs   int    `yaml:"delay_pages_seconds" json:"delay_pages_seconds"`
}

// CoversConfig controls cover image downloads.
type CoversConfig struct {
	Download        bool   `yaml:"download" json:"download"`
	MaxPerPage      int    `yaml:"max_per_page" json:"max_per_page"`
	DelayCoversSecs int    `yaml:"delay_covers_seconds" json:"delay_covers_seconds"`
	Directory       string `yaml:"directory" json:"directory"`
}

// NetworkConfig holds HTTP client settings.
type NetworkConfig struct {
	RequestTimeoutSecs  int    `yaml:"request_timeout_seconds" json:"request_timeout_seconds"`
	DownloadTimeoutSecs int    `yaml:"download_timeout_seconds" json:"download_timeout_seconds"`
	RateLimitWaitSecs   int    `yaml:"rate_limit_wait_seconds" json:"rate_limit_wait_seconds"`
	MaxRateLimitRetries int    `yaml:"max_rate_limit_retries" json:"max_rate_limit_retries"`
	UserAgent           string `yaml:"user_agent" json:"user_agent"`
}

// OutputConfig holds dataset output settings.
type OutputConfig struct {
	File string `yaml:"file" json:"file"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// PageDelay is the pause between list pages.
func (c ListConfig) PageDelay() time.Duration {
	return time.Duration(c.DelayPagesSecs) * time.Second
}

// CoverDelay is the base pause before each cover fetch.
func (c CoversConfig) CoverDelay() time.Duration {
	return time.Duration(c.DelayCoversSecs) * time.Second
}

// RequestTimeout is the page request timeout.
func (c NetworkConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// DownloadTimeout is the cover request timeout.
func (c NetworkConfig) DownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeoutSecs) * time.Second
}

// RateLimitWait is the cooldown after an HTTP 429.
func (c NetworkConfig) RateLimitWait() time.Duration {
	return time.Duration(c.RateLimitWaitSecs) * time.Second
}

// DefaultConfig returns a Config instance with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		List: ListConfig{
			ID:             "1.Best_Books_Ever",
			StartPage:      1,
			EndPage:        50,
			DelayPagesSecs: 15,
		},
		Covers: CoversConfig{
			Download:        true,
			MaxPerPage:      3,
			DelayCoversSecs: 2,
			Directory:       "covers",
		},
		Network: NetworkConfig{
			RequestTimeoutSecs:  10,
			DownloadTimeoutSecs: 5,
			RateLimitWaitSecs:   120,
			MaxRateLimitRetries: 0, // 0 means retry on 429 as long as it recurs
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
				"AppleWebKit/537.36 (KHTML, like Gecko) " +
				"Chrome/91.0.4472.124 Safari/537.36",
		},
		Output: OutputConfig{
			File: "",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration overrides from environment variables.
func (c *Config) LoadFromEnv() error {
	if listID := os.Getenv("GRSCRAPER_LIST_ID"); listID != "" {
		c.List.ID = listID
	}
	if outputFile := os.Getenv("GRSCRAPER_OUTPUT_FILE"); outputFile != "" {
		c.Output.File = outputFile
	}
	if coversDir := os.Getenv("GRSCRAPER_COVERS_DIR"); coversDir != "" {
		c.Covers.Directory = coversDir
	}
	if logLevel := os.Getenv("GRSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if userAgent := os.Getenv("GRSCRAPER_USER_AGENT"); userAgent != "" {
		c.Network.UserAgent = userAgent
	}
	if delay := os.Getenv("GRSCRAPER_DELAY_PAGES"); delay != "" {
		if val, err := strconv.Atoi(delay); err == nil && val >= 0 {
			c.List.DelayPagesSecs = val
		}
	}
	if maxCovers := os.Getenv("GRSCRAPER_MAX_COVERS_PER_PAGE"); maxCovers != "" {
		if val, err := strconv.Atoi(maxCovers); err == nil && val >= 0 {
			c.Covers.MaxPerPage = val
		}
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file.
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for a config file in standard locations.
func (c *Config) findConfigFile() string {
	locations := []string{
		".grscraper.yaml",
		".grscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "grscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "grscraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".grscraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// normalize fills in derived values once all sources have been merged.
func (c *Config) normalize() {
	if c.Output.File == "" {
		name := strings.ReplaceAll(c.List.ID, ".", "_")
		c.Output.File = filepath.Join("dataset", fmt.Sprintf("goodreads_%s.csv", name))
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if c.List.ID == "" {
		errs = append(errs, errors.New("list id is required"))
	}
	if c.List.StartPage < 1 {
		errs = append(errs, errors.New("start page must be at least 1"))
	}
	if c.List.EndPage < c.List.StartPage {
		errs = append(errs, errors.New("end page must not be before start page"))
	}
	if c.List.DelayPagesSecs < 0 {
		errs = append(errs, errors.New("page delay cannot be negative"))
	}

	if c.Covers.MaxPerPage < 0 {
		errs = append(errs, errors.New("max covers per page cannot be negative"))
	}
	if c.Covers.DelayCoversSecs < 0 {
		errs = append(errs, errors.New("cover delay cannot be negative"))
	}
	if c.Covers.Download && c.Covers.Directory == "" {
		errs = append(errs, errors.New("covers directory is required when downloads are enabled"))
	}

	if c.Network.RequestTimeoutSecs <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Network.DownloadTimeoutSecs <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Network.RateLimitWaitSecs <= 0 {
		errs = append(errs, errors.New("rate limit wait must be positive"))
	}
	if c.Network.MaxRateLimitRetries < 0 {
		errs = append(errs, errors.New("max rate limit retries cannot be negative"))
	}

	if c.Output.File == "" {
		errs = append(errs, errors.New("output file is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if listID, ok := flags["list-id"].(string); ok && listID != "" {
		c.List.ID = listID
	}
	if startPage, ok := flags["start-page"].(int); ok && startPage > 0 {
		c.List.StartPage = startPage
	}
	if endPage, ok := flags["end-page"].(int); ok && endPage > 0 {
		c.List.EndPage = endPage
	}
	if download, ok := flags["download-covers"].(bool); ok {
		c.Covers.Download = download
	}
	if maxCovers, ok := flags["max-covers-per-page"].(int); ok && maxCovers >= 0 {
		c.Covers.MaxPerPage = maxCovers
	}
	if delayPages, ok := flags["delay-pages"].(int); ok && delayPages >= 0 {
		c.List.DelayPagesSecs = delayPages
	}
	if delayCovers, ok := flags["delay-covers"].(int); ok && delayCovers >= 0 {
		c.Covers.DelayCoversSecs = delayCovers
	}
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Output.File = output
	}
	if coversDir, ok := flags["covers-dir"].(string); ok && coversDir != "" {
		c.Covers.Directory = coversDir
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: command line flags > environment variables > .env file >
// config file > defaults.
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".grscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// ABOUTME: Configuration loading and parsing for coven-mailstore
// ABOUTME: YAML files with environment variable expansion and defaulting

package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Defaults applied when a field is absent from the file.
const (
	DefaultDataDir       = "data"
	DefaultInboxPerPage  = 10
	DefaultThreadPerPage = 20
	DefaultAuditPerPage  = 20
)

// Config represents the complete mailstore configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Pages   PagesConfig   `yaml:"pages"`
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig holds the data directory for the backing files.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

// PagesConfig holds the default page sizes per view. The engine operations
// take an explicit page size; these feed the CLI and the API layer.
type PagesConfig struct {
	Inbox  int `yaml:"inbox"`
	Thread int `yaml:"thread"`
	Audit  int `yaml:"audit"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded and
// defaults are applied to absent fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func (c *Config) applyDefaults() {
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = DefaultDataDir
	}
	if c.Pages.Inbox == 0 {
		c.Pages.Inbox = DefaultInboxPerPage
	}
	if c.Pages.Thread == 0 {
		c.Pages.Thread = DefaultThreadPerPage
	}
	if c.Pages.Audit == 0 {
		c.Pages.Audit = DefaultAuditPerPage
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks that all configuration fields are usable. Returns an error
// describing the first failure encountered.
func (c *Config) Validate() error {
	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir is required")
	}
	for name, size := range map[string]int{
		"pages.inbox":  c.Pages.Inbox,
		"pages.thread": c.Pages.Thread,
		"pages.audit":  c.Pages.Audit,
	} {
		if size < 1 {
			return fmt.Errorf("%s must be a positive integer, got %d", name, size)
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json")
	}
	return nil
}

package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

const (
	DefaultAPIURL   = "https://localhost:7219/api/todos"
	DefaultLogLevel = "info"
	DefaultTheme    = "classic"
)

var (
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validThemes    = []string{"classic", "neon", "mono"}
)

// Config holds everything the todo client can be told from outside.
type Config struct {
	APIURL      string   `toml:"api_url"`
	Timeout     Duration `toml:"timeout"`
	InsecureTLS bool     `toml:"insecure_tls"`
	LogFile     string   `toml:"log_file"`
	LogLevel    string   `toml:"log_level"`
	Theme       string   `toml:"theme"`
	MetricsAddr string   `toml:"metrics_addr"`
	Group       bool     `toml:"group"`

	// Files lists the config files that were read, in order.
	Files []string `toml:"-"`
}

// Duration decodes TOML strings such as "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func setDefaults(cfg *Config) {
	cfg.APIURL = DefaultAPIURL
	cfg.Timeout = Duration{}
	cfg.LogFile = defaultLogFile()
	cfg.LogLevel = DefaultLogLevel
	cfg.Theme = DefaultTheme
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api url %q: %w", c.APIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api url %q: scheme must be http or https", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid api url %q: missing host", c.APIURL)
	}
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("invalid timeout: %s (must be >= 0)", c.Timeout.Duration)
	}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (valid: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if !slices.Contains(validThemes, c.Theme) {
		return fmt.Errorf("invalid theme: %s (valid: %s)", c.Theme, strings.Join(validThemes, ", "))
	}
	return nil
}

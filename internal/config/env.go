package config

import (
	"os"
	"strconv"
	"time"
)

// loadFromEnv overrides cfg from TADA_* variables. Unparseable values are
// reported rather than silently ignored.
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("TADA_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("TADA_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("TADA_TIMEOUT", v, err)
		}
		cfg.Timeout = Duration{d}
	}
	if v := os.Getenv("TADA_INSECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("TADA_INSECURE", v, err)
		}
		cfg.InsecureTLS = b
	}
	if v := os.Getenv("TADA_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TADA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TADA_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("TADA_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	return nil
}

type parseError struct {
	key, value string
	err        error
}

func (e *parseError) Error() string {
	return e.key + "=" + strconv.Quote(e.value) + ": " + e.err.Error()
}

func (e *parseError) Unwrap() error { return e.err }

func envError(key, value string, err error) error {
	return &parseError{key: key, value: value, err: err}
}

package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// flagValues are the raw flag targets; only flags actually given override
// the lower layers.
type flagValues struct {
	configFile  string
	apiURL      string
	timeout     string
	insecure    bool
	logFile     string
	logLevel    string
	theme       string
	metricsAddr string
	group       bool
}

func registerFlags(fs *flag.FlagSet, fv *flagValues) {
	fs.StringVar(&fv.configFile, "config", "", "path to a TOML config file")
	fs.StringVar(&fv.apiURL, "url", "", "todo collection URL (default "+DefaultAPIURL+")")
	fs.StringVar(&fv.timeout, "timeout", "", "per-request timeout, e.g. 10s (default none)")
	fs.BoolVar(&fv.insecure, "insecure", false, "skip TLS certificate verification")
	fs.StringVar(&fv.logFile, "log-file", "", "log file path, - for stderr")
	fs.StringVar(&fv.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&fv.theme, "theme", "", "classic, neon or mono")
	fs.StringVar(&fv.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.BoolVar(&fv.group, "group", false, "group list output by pending/done")
}

// Load parses args with fs and layers every source over the defaults.
// It returns the config and the non-flag arguments.
func Load(fs *flag.FlagSet, args []string) (*Config, []string, error) {
	var fv flagValues
	registerFlags(fs, &fv)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg := &Config{}
	setDefaults(cfg)

	if fv.configFile != "" {
		if err := loadConfigFile(cfg, fv.configFile); err != nil {
			return nil, nil, fmt.Errorf("loading config file %s: %w", fv.configFile, err)
		}
	} else if p := userConfigFile(); p != "" {
		if err := loadConfigFile(cfg, p); err != nil {
			return nil, nil, fmt.Errorf("loading user config file %s: %w", p, err)
		}
	}
	if p := projectConfigFile(); p != "" {
		if err := loadConfigFile(cfg, p); err != nil {
			return nil, nil, fmt.Errorf("loading project config file %s: %w", p, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("loading .env: %w", err)
	}
	if err := loadFromEnv(cfg); err != nil {
		return nil, nil, fmt.Errorf("environment: %w", err)
	}

	if err := applyFlags(cfg, fs, &fv); err != nil {
		return nil, nil, fmt.Errorf("flags: %w", err)
	}

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, fs.Args(), nil
}

func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	cfg.Files = append(cfg.Files, path)
	return nil
}

func applyFlags(cfg *Config, fs *flag.FlagSet, fv *flagValues) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "url":
			cfg.APIURL = fv.apiURL
		case "timeout":
			var d Duration
			if e := d.UnmarshalText([]byte(fv.timeout)); e != nil {
				err = e
				return
			}
			cfg.Timeout = d
		case "insecure":
			cfg.InsecureTLS = fv.insecure
		case "log-file":
			cfg.LogFile = fv.logFile
		case "log-level":
			cfg.LogLevel = fv.logLevel
		case "theme":
			cfg.Theme = fv.theme
		case "metrics-addr":
			cfg.MetricsAddr = fv.metricsAddr
		case "group":
			cfg.Group = fv.group
		}
	})
	return err
}

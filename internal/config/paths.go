package config

import (
	"os"
	"path/filepath"
)

const (
	appDir            = "tada"
	userConfigName    = "config.toml"
	projectConfigName = "tada.toml"
	logFileName       = "tada.log"
)

// userConfigFile returns the user-level config path if the file exists.
func userConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, appDir, userConfigName)
	if fileExists(p) {
		return p
	}
	return ""
}

// projectConfigFile returns ./tada.toml if it exists.
func projectConfigFile() string {
	if fileExists(projectConfigName) {
		return projectConfigName
	}
	return ""
}

// defaultLogFile follows XDG_STATE_HOME, falling back to ~/.local/state.
func defaultLogFile() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appDir, logFileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appDir, logFileName)
	}
	return filepath.Join(home, ".local", "state", appDir, logFileName)
}

func fileExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}

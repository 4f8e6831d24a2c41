// Package config loads client settings.
//
// Sources, lowest priority first:
//  1. Built-in defaults
//  2. User config file ($XDG_CONFIG_HOME/tada/config.toml, or the OS
//     equivalent), or the file named by -config
//  3. Project config file (./tada.toml)
//  4. .env in the working directory (never overrides the real environment)
//  5. Environment variables (TADA_*)
//  6. CLI flags
package config

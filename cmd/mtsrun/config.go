package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix          = "MTS"
	settingsName       = "mtsrun"
	defaultShutdown    = 5 * time.Second
	maxShutdownTimeout = time.Minute

	keyConfig   = "config"
	keyLogLevel = "log-level"
	keyDB       = "db"
	keyListen   = "listen"
	keyFor      = "for"
	keyScript   = "script"
	keyShutdown = "shutdown-timeout"
	keyTable    = "table"
	keyColumn   = "column"
	keyFrom     = "from"
	keyTo       = "to"
)

// newSettings merges flags of cmd, MTS_* environment variables and an
// optional mtsrun.yaml in the user config directory, in that order of
// precedence.
func newSettings(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(keyShutdown, defaultShutdown)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(settingsName)
	v.SetConfigType("yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "mts"))
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	if timeout := v.GetDuration(keyShutdown); timeout <= 0 || timeout > maxShutdownTimeout {
		return nil, fmt.Errorf("bad %s: %v", keyShutdown, timeout)
	}
	return v, nil
}

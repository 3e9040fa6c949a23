package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Paths         []string `toml:"paths"`
	ListenNetwork string   `toml:"listen_network"`
	ListenAddress string   `toml:"listen_address"`
	QuietWindow   string   `toml:"quiet_window"`
	RebuildCmd    []string `toml:"rebuild_cmd"`
	RebuildDir    string   `toml:"rebuild_dir"`
	Artifact      string   `toml:"artifact"`
	Backend       string   `toml:"backend"`
	Debug         *bool    `toml:"debug"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.hotswap/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".hotswap", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setStrings("watch", fc.Paths, &cfg.Paths)
	s.setString("listen-network", fc.ListenNetwork, &cfg.ListenNetwork)
	s.setString("listen", fc.ListenAddress, &cfg.ListenAddress)
	s.setStrings("rebuild", fc.RebuildCmd, &cfg.RebuildArgv)
	s.setString("rebuild-dir", fc.RebuildDir, &cfg.RebuildDir)
	s.setString("artifact", fc.Artifact, &cfg.Artifact)
	s.setString("backend", fc.Backend, &cfg.Backend)

	if err := s.setDuration("quiet-window", fc.QuietWindow, &cfg.QuietWindow); err != nil {
		return err
	}

	s.setBool("debug", fc.Debug, &cfg.Debug)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

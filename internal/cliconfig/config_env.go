package cliconfig

import (
	"os"
	"strings"
)

// ApplyEnvConfig applies configuration from environment variables (HOTSWAP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setStrings("watch", splitList(os.Getenv("HOTSWAP_PATHS")), &cfg.Paths)
	s.setString("listen-network", os.Getenv("HOTSWAP_LISTEN_NETWORK"), &cfg.ListenNetwork)
	s.setString("listen", os.Getenv("HOTSWAP_LISTEN"), &cfg.ListenAddress)
	s.setStrings("rebuild", strings.Fields(os.Getenv("HOTSWAP_REBUILD_CMD")), &cfg.RebuildArgv)
	s.setString("rebuild-dir", os.Getenv("HOTSWAP_REBUILD_DIR"), &cfg.RebuildDir)
	s.setString("artifact", os.Getenv("HOTSWAP_ARTIFACT"), &cfg.Artifact)
	s.setString("backend", os.Getenv("HOTSWAP_BACKEND"), &cfg.Backend)

	if err := s.setDuration("quiet-window", os.Getenv("HOTSWAP_QUIET_WINDOW"), &cfg.QuietWindow); err != nil {
		return err
	}

	s.setBoolFromString("debug", os.Getenv("HOTSWAP_DEBUG"), &cfg.Debug)

	return nil
}

// splitList splits a comma-separated environment value, dropping empties.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

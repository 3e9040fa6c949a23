package hotswap

import (
	"fmt"
	"strings"
	"time"

	"github.com/patchwork-labs/hotswap/internal/debounce"
	"github.com/patchwork-labs/hotswap/internal/watcher"
)

// Config holds the configuration for the hotswap agent.
type Config struct {
	// Paths are the directories to watch for changes. Required.
	Paths []string

	// QuietWindow is the inactivity gap before a settle fires.
	// Zero means the default (200ms).
	QuietWindow time.Duration

	// ListenNetwork is the listener network: "unix" or "tcp".
	// Derived from ListenAddress when empty.
	ListenNetwork string

	// ListenAddress is where peers dial in. Empty disables the listener;
	// the agent then only rebuilds.
	ListenAddress string

	// Backend selects the watcher backend: "inotify", "fsnotify", or empty
	// for the platform-native choice.
	Backend string

	// RebuildArgv is the external build command. Required unless a
	// Rebuilder is injected via WithRebuilder.
	RebuildArgv []string

	// RebuildDir is the working directory for the build command.
	RebuildDir string

	// Artifact optionally fixes the artifact path; otherwise the last
	// non-empty stdout line of the build command is used.
	Artifact string
}

// SetDefaults fills unset fields with sensible defaults.
func (c *Config) SetDefaults() {
	if c.QuietWindow <= 0 {
		c.QuietWindow = debounce.DefaultQuietWindow
	}
	if c.ListenNetwork == "" && c.ListenAddress != "" {
		if strings.ContainsRune(c.ListenAddress, '/') {
			c.ListenNetwork = "unix"
		} else {
			c.ListenNetwork = "tcp"
		}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.Paths) == 0 {
		return fmt.Errorf("%w: at least one watch path is required", ErrInvalidConfig)
	}
	for _, p := range c.Paths {
		if p == "" {
			return fmt.Errorf("%w: watch path must not be empty", ErrInvalidConfig)
		}
	}
	switch c.ListenNetwork {
	case "", "unix", "tcp":
	default:
		return fmt.Errorf("%w: listen network %q (want unix or tcp)", ErrInvalidConfig, c.ListenNetwork)
	}
	switch watcher.Backend(c.Backend) {
	case watcher.BackendAuto, watcher.BackendInotify, watcher.BackendFSNotify:
	default:
		return fmt.Errorf("%w: unknown watcher backend %q", ErrInvalidConfig, c.Backend)
	}
	return nil
}

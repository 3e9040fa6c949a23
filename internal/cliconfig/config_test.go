package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %q, want %q", cfg.ListenAddress, DefaultListenAddress)
	}
	if cfg.QuietWindow != 200*time.Millisecond {
		t.Errorf("QuietWindow = %v, want 200ms", cfg.QuietWindow)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Paths = []string{"./src"}
	cfg.RebuildArgv = []string{"make", "dylib"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config failed validation: %v", err)
	}

	noPaths := DefaultConfig()
	noPaths.RebuildArgv = []string{"make"}
	if err := noPaths.Validate(); err == nil {
		t.Error("config without paths should fail validation")
	}

	noRebuild := DefaultConfig()
	noRebuild.Paths = []string{"./src"}
	if err := noRebuild.Validate(); err == nil {
		t.Error("config without rebuild command should fail validation")
	}

	badWindow := DefaultConfig()
	badWindow.Paths = []string{"./src"}
	badWindow.RebuildArgv = []string{"make"}
	badWindow.QuietWindow = -time.Second
	if err := badWindow.Validate(); err == nil {
		t.Error("config with negative quiet window should fail validation")
	}
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
paths = ["./Sources", "./Tests"]
listen_address = "/tmp/dev.sock"
quiet_window = "300ms"
rebuild_cmd = ["make", "dylib"]
backend = "fsnotify"
debug = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, nil); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}

	if len(cfg.Paths) != 2 || cfg.Paths[0] != "./Sources" {
		t.Errorf("Paths = %v, want [./Sources ./Tests]", cfg.Paths)
	}
	if cfg.ListenAddress != "/tmp/dev.sock" {
		t.Errorf("ListenAddress = %q, want /tmp/dev.sock", cfg.ListenAddress)
	}
	if cfg.QuietWindow != 300*time.Millisecond {
		t.Errorf("QuietWindow = %v, want 300ms", cfg.QuietWindow)
	}
	if len(cfg.RebuildArgv) != 2 || cfg.RebuildArgv[0] != "make" {
		t.Errorf("RebuildArgv = %v, want [make dylib]", cfg.RebuildArgv)
	}
	if cfg.Backend != "fsnotify" {
		t.Errorf("Backend = %q, want fsnotify", cfg.Backend)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
}

func TestApplyFileConfig_RespectsChangedFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ListenAddress = "/from/flag.sock"

	fc := FileConfig{ListenAddress: "/from/file.sock", QuietWindow: "1s"}
	changed := map[string]bool{"listen": true}

	if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}

	if cfg.ListenAddress != "/from/flag.sock" {
		t.Errorf("ListenAddress = %q, flag value should win", cfg.ListenAddress)
	}
	if cfg.QuietWindow != time.Second {
		t.Errorf("QuietWindow = %v, file value should apply", cfg.QuietWindow)
	}
}

func TestApplyFileConfig_BadDuration(t *testing.T) {
	cfg := DefaultConfig()
	fc := FileConfig{QuietWindow: "soon"}
	if err := ApplyFileConfig(&cfg, fc, nil); err == nil {
		t.Error("invalid duration should fail")
	}
}

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("HOTSWAP_PATHS", "./a, ./b")
	t.Setenv("HOTSWAP_LISTEN", "127.0.0.1:9001")
	t.Setenv("HOTSWAP_REBUILD_CMD", "make dylib")
	t.Setenv("HOTSWAP_QUIET_WINDOW", "150ms")
	t.Setenv("HOTSWAP_DEBUG", "1")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, nil); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}

	if len(cfg.Paths) != 2 || cfg.Paths[0] != "./a" || cfg.Paths[1] != "./b" {
		t.Errorf("Paths = %v, want [./a ./b]", cfg.Paths)
	}
	if cfg.ListenAddress != "127.0.0.1:9001" {
		t.Errorf("ListenAddress = %q", cfg.ListenAddress)
	}
	if len(cfg.RebuildArgv) != 2 || cfg.RebuildArgv[1] != "dylib" {
		t.Errorf("RebuildArgv = %v, want [make dylib]", cfg.RebuildArgv)
	}
	if cfg.QuietWindow != 150*time.Millisecond {
		t.Errorf("QuietWindow = %v, want 150ms", cfg.QuietWindow)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
}

func TestApplyEnvConfig_FlagWins(t *testing.T) {
	t.Setenv("HOTSWAP_LISTEN", "/from/env.sock")

	cfg := DefaultConfig()
	cfg.ListenAddress = "/from/flag.sock"
	changed := map[string]bool{"listen": true}

	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}
	if cfg.ListenAddress != "/from/flag.sock" {
		t.Errorf("ListenAddress = %q, flag value should win", cfg.ListenAddress)
	}
}

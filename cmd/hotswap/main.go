package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/patchwork-labs/hotswap/internal/cliconfig"
	"github.com/patchwork-labs/hotswap/pkg/hotswap"
	logpkg "github.com/patchwork-labs/hotswap/pkg/log"
)

const helpDescription = `
Watch a source tree, rebuild on change, and hot-reload running targets.

Hotswap coalesces bursty file-system events into one settled signal, runs
your build command, and pushes the fresh dynamic library to every connected
peer over a local socket. Peers swap the new code in without relaunching.
`

var longHelp = strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  hotswap --watch ./Sources --rebuild "make dylib" --listen /tmp/hotswap.sock
  hotswap --config $HOME/.hotswap/config.toml --debug
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	var rebuildCmd string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "hotswap",
		Short:   "Watch a source tree, rebuild on change, and hot-reload running targets",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.hotswap/config.toml),
			// then apply env vars and flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if rebuildCmd != "" {
				cfg.RebuildArgv = strings.Fields(rebuildCmd)
			}

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Environment variables (HOTSWAP_*) override file config but are
			// overridden by flags (checked via changed map).
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			if cfg.Debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			log.Info().Interface("config", cfg).Msg("configuration")

			libCfg := hotswap.Config{
				Paths:         cfg.Paths,
				QuietWindow:   cfg.QuietWindow,
				ListenNetwork: cfg.ListenNetwork,
				ListenAddress: cfg.ListenAddress,
				Backend:       cfg.Backend,
				RebuildArgv:   cfg.RebuildArgv,
				RebuildDir:    cfg.RebuildDir,
				Artifact:      cfg.Artifact,
			}

			agent, err := hotswap.New(libCfg,
				hotswap.WithLogger(logpkg.NewZerologAdapterWithLogger(log)),
			)
			if err != nil {
				return fmt.Errorf("create hotswap: %w", err)
			}

			// Setup signal handling for graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := agent.Start(ctx); err != nil {
				return fmt.Errorf("start hotswap: %w", err)
			}

			<-sigCh
			log.Info().Msg("received signal, stopping...")

			if err := agent.Stop(); err != nil {
				return fmt.Errorf("stop hotswap: %w", err)
			}
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.hotswap/config.toml)")
	root.Flags().StringSliceVar(&cfg.Paths, "watch", cfg.Paths, "directories to watch (repeatable)")
	root.Flags().StringVar(&cfg.ListenAddress, "listen", cfg.ListenAddress, "socket address peers dial in on")
	root.Flags().StringVar(&cfg.ListenNetwork, "listen-network", cfg.ListenNetwork, "listener network: unix or tcp (derived from --listen when empty)")
	root.Flags().DurationVar(&cfg.QuietWindow, "quiet-window", cfg.QuietWindow, "inactivity gap before a rebuild fires")
	root.Flags().StringVar(&rebuildCmd, "rebuild", "", "build command; its last stdout line is the artifact path")
	root.Flags().StringVar(&cfg.RebuildDir, "rebuild-dir", cfg.RebuildDir, "working directory for the build command")
	root.Flags().StringVar(&cfg.Artifact, "artifact", cfg.Artifact, "fixed artifact path (overrides build command output)")
	root.Flags().StringVar(&cfg.Backend, "backend", cfg.Backend, "watcher backend: inotify or fsnotify (default: platform-native)")
	root.Flags().BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("hotswap")
		os.Exit(1)
	}
}

// Package hotswap provides a convenience entry point for the live-reload
// agent. Most embedders should use pkg/hotswap directly; this root package
// exists for the common run-until-cancelled case.
//
// Example usage:
//
//	cfg := hotswap.DefaultConfig()
//	cfg.Paths = []string{"./Sources"}
//	cfg.RebuildArgv = []string{"make", "dylib"}
//	if err := hotswap.Run(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
package hotswap

import (
	"context"

	agent "github.com/patchwork-labs/hotswap/pkg/hotswap"
)

// Config holds the configuration for the hotswap agent.
type Config = agent.Config

// Option configures optional behavior of the agent.
type Option = agent.Option

// DefaultConfig returns a Config with defaults applied.
// At minimum, set Paths and RebuildArgv before calling Run.
func DefaultConfig() Config {
	var cfg Config
	cfg.SetDefaults()
	return cfg
}

// Run starts the agent and blocks until the context is cancelled, then
// shuts down gracefully.
func Run(ctx context.Context, cfg Config, opts ...Option) error {
	a, err := agent.New(cfg, opts...)
	if err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return a.Stop()
}

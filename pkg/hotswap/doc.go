// Package hotswap provides an embeddable live-reload agent.
//
// Hotswap watches a source tree, triggers a rebuild once the file system
// settles, and notifies connected peer processes that a freshly built
// dynamic library is available, over a compact binary protocol on a local
// socket. Peers swap the artifact in without relaunching.
//
// # Basic Usage
//
//	cfg := hotswap.Config{
//	    Paths:         []string{"./Sources"},
//	    ListenNetwork: "unix",
//	    ListenAddress: "/tmp/hotswap.sock",
//	    RebuildArgv:   []string{"make", "dylib"},
//	}
//
//	agent, err := hotswap.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := agent.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... run until shutdown signal ...
//
//	if err := agent.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Dependency Injection
//
// For testing or custom builds, inject your own collaborators:
//
//	agent, err := hotswap.New(cfg,
//	    hotswap.WithLogger(customLogger),
//	    hotswap.WithRebuilder(myRebuilder),
//	    hotswap.WithListener(ln),
//	)
//
// # Lifecycle States
//
// An agent instance can be in one of five states: [StateStopped],
// [StateStarting], [StateRunning], [StateStopping], or [StateCrashed].
// Use [Hotswap.Status] to query the current state.
package hotswap

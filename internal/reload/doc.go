// Package reload drives the live development loop.
//
// The Orchestrator owns one watch session, one debounce coalescer and the
// set of live peer connections. When the file system settles it invokes the
// injected Rebuilder; on success it broadcasts a ReloadDylib packet carrying
// the artifact path to every connected peer. Peers answer to nothing except
// Ping, which gets a Pong.
//
// Connection failures remove the one affected peer; the watcher and the
// remaining peers are untouched. Rebuild failures are logged and nothing is
// sent, so peers keep running previously loaded code.
package reload

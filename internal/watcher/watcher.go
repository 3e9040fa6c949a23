package watcher

import (
	"fmt"
	"strings"

	"github.com/patchwork-labs/hotswap/pkg/log"
)

// ChangeFlags is the normalized change-kind vocabulary shared by all
// backends. Raw backend bits are mapped into these before delivery.
type ChangeFlags uint32

const (
	// FlagCreated marks a file or directory creation.
	FlagCreated ChangeFlags = 1 << iota

	// FlagRemoved marks a file or directory removal.
	FlagRemoved

	// FlagModified marks a content write.
	FlagModified

	// FlagRenamed marks a rename or move.
	FlagRenamed

	// FlagMetadata marks a permission/attribute change.
	FlagMetadata

	// FlagCloned marks a copy-on-write clone. Carries no actionable payload.
	FlagCloned

	// FlagHistoryDone marks the end of a historical event replay.
	// Carries no actionable payload.
	FlagHistoryDone
)

// nonActionable flags never justify a rebuild on their own.
const nonActionable = FlagCloned | FlagHistoryDone

// Actionable reports whether the event should reach the coalescer.
// Events tagged purely cloned or history-done are discarded.
func (f ChangeFlags) Actionable() bool {
	return f&^nonActionable != 0
}

// String returns a pipe-separated list of set flags for logging.
func (f ChangeFlags) String() string {
	var parts []string
	for _, e := range []struct {
		flag ChangeFlags
		name string
	}{
		{FlagCreated, "created"},
		{FlagRemoved, "removed"},
		{FlagModified, "modified"},
		{FlagRenamed, "renamed"},
		{FlagMetadata, "metadata"},
		{FlagCloned, "cloned"},
		{FlagHistoryDone, "history-done"},
	} {
		if f&e.flag != 0 {
			parts = append(parts, e.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// RawChangeEvent is one normalized file-system event. Events are ephemeral:
// produced by a backend, inspected by the coalescer, never retained.
type RawChangeEvent struct {
	// Path is the affected file or directory.
	Path string

	// Flags is the normalized change-kind set.
	Flags ChangeFlags

	// Seq is a per-session monotonically increasing sequence id,
	// assigned when the raw backend record is marshaled.
	Seq uint64
}

// EventFunc receives events asynchronously, in arrival order per path.
// There is no cross-path ordering guarantee.
type EventFunc func(RawChangeEvent)

// ErrorFunc receives backend errors. An unrecoverable error is reported
// once, after which delivery ceases.
type ErrorFunc func(error)

// Session is a running watch. Delivery continues until Stop is called or
// the backend fails. Stop is idempotent.
type Session interface {
	// Stop ends event delivery and releases backend resources. After Stop
	// returns no further events reach the callbacks.
	Stop() error
}

// Backend selects a watcher implementation.
type Backend string

const (
	// BackendAuto picks the native backend for the current platform.
	BackendAuto Backend = ""

	// BackendInotify is the raw kernel event stream. Linux only.
	BackendInotify Backend = "inotify"

	// BackendFSNotify is the portable fsnotify backend.
	BackendFSNotify Backend = "fsnotify"
)

// Watch starts watching the given paths with the platform-native backend.
// Backend create/start failure is fatal and returned immediately; it is
// never retried. Exactly one backend is active per session.
func Watch(paths []string, onEvent EventFunc, onError ErrorFunc, logger log.Logger) (Session, error) {
	return WatchWithBackend(BackendAuto, paths, onEvent, onError, logger)
}

// WatchWithBackend starts watching with an explicit backend choice.
func WatchWithBackend(backend Backend, paths []string, onEvent EventFunc, onError ErrorFunc, logger log.Logger) (Session, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("watcher: no paths to watch")
	}
	if onEvent == nil {
		return nil, fmt.Errorf("watcher: onEvent callback is required")
	}
	if onError == nil {
		onError = func(error) {}
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	switch backend {
	case BackendAuto:
		return newPlatformSession(paths, onEvent, onError, logger)
	case BackendFSNotify:
		return newFSNotifySession(paths, onEvent, onError, logger)
	case BackendInotify:
		return newInotifySession(paths, onEvent, onError, logger)
	default:
		return nil, fmt.Errorf("watcher: unknown backend %q", backend)
	}
}

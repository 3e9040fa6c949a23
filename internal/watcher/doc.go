// Package watcher delivers normalized file-system change events.
//
// Two backends exist. On Linux the default is a raw inotify event stream:
// one kernel descriptor, batched variable-length records read in bulk and
// marshaled into individual events. Everywhere else (and on request) the
// fsnotify backend opens one subscription per watched path and fans all
// subscriptions into one merged delivery goroutine.
//
// Both backends speak the same vocabulary (ChangeFlags), assign per-session
// sequence ids, and apply the same filtering: events that carry only
// clone or history-replay flags never reach the caller.
package watcher

//go:build linux

package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestNormalizeMask(t *testing.T) {
	tests := []struct {
		mask uint32
		want ChangeFlags
	}{
		{unix.IN_CREATE, FlagCreated},
		{unix.IN_DELETE, FlagRemoved},
		{unix.IN_DELETE_SELF, FlagRemoved},
		{unix.IN_MODIFY, FlagModified},
		{unix.IN_CLOSE_WRITE, FlagModified},
		{unix.IN_MOVED_FROM, FlagRenamed},
		{unix.IN_MOVED_TO, FlagRenamed},
		{unix.IN_ATTRIB, FlagMetadata},
		{unix.IN_CREATE | unix.IN_ATTRIB, FlagCreated | FlagMetadata},
	}

	for _, tt := range tests {
		if got := normalizeMask(tt.mask); got != tt.want {
			t.Errorf("normalizeMask(%#x) = %s, want %s", tt.mask, got, tt.want)
		}
	}
}

func TestInotify_DeliversEvents(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var events []RawChangeEvent

	session, err := WatchWithBackend(BackendInotify, []string{dir},
		func(ev RawChangeEvent) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		},
		func(err error) { t.Errorf("unexpected watcher error: %v", err) },
		nil,
	)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer session.Stop()

	target := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(target, []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(events)
		mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no event observed within 2s")
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if events[0].Path != target {
		t.Errorf("event path = %q, want %q", events[0].Path, target)
	}
	if events[0].Seq == 0 {
		t.Error("sequence ids start at 1")
	}
}

func TestInotify_StartFailureIsFatal(t *testing.T) {
	_, err := WatchWithBackend(BackendInotify, []string{"/nonexistent-hotswap-path"},
		func(RawChangeEvent) {}, nil, nil)
	if err == nil {
		t.Fatal("watching a nonexistent path should fail at start")
	}
}

func TestInotify_ReadFailureReportedOnceThenSilent(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var events int
	var errors int

	session, err := WatchWithBackend(BackendInotify, []string{dir},
		func(RawChangeEvent) {
			mu.Lock()
			events++
			mu.Unlock()
		},
		func(error) {
			mu.Lock()
			errors++
			mu.Unlock()
		},
		nil,
	)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	// Kill the kernel descriptor out from under the read loop to force an
	// unrecoverable read failure mid-session.
	is := session.(*inotifySession)
	unix.Close(is.fd)

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := errors
		mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("read failure never reported")
		}
		time.Sleep(10 * time.Millisecond)
	}
	is.wg.Wait()

	// The loop is gone: further file changes produce neither events nor a
	// second error report.
	if err := os.WriteFile(filepath.Join(dir, "late.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if errors != 1 {
		t.Errorf("error reports = %d, want exactly 1", errors)
	}
	if events != 0 {
		t.Errorf("events after failure = %d, want 0", events)
	}
}

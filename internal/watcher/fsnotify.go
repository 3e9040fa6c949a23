package watcher

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/patchwork-labs/hotswap/pkg/log"
)

// fsnotifySession watches via fsnotify: one Add per path, all subscriptions
// merged into the watcher's single event channel.
type fsnotifySession struct {
	watcher *fsnotify.Watcher
	onEvent EventFunc
	onError ErrorFunc
	logger  log.Logger

	seq     atomic.Uint64
	stopped atomic.Bool
	wg      sync.WaitGroup

	stopOnce sync.Once
	stopErr  error
}

func newFSNotifySession(paths []string, onEvent EventFunc, onError ErrorFunc, logger log.Logger) (Session, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: create fsnotify watcher: %w", err)
	}

	s := &fsnotifySession{
		watcher: w,
		onEvent: onEvent,
		onError: onError,
		logger:  logger,
	}

	added := 0
	for _, p := range paths {
		if err := w.Add(p); err != nil {
			// One failed subscription does not cancel its siblings.
			onError(fmt.Errorf("watcher: watch %s: %w", p, err))
			continue
		}
		added++
	}
	if added == 0 {
		w.Close()
		return nil, fmt.Errorf("watcher: no path could be watched")
	}

	logger.Debug("fsnotify session started", log.Int("paths", added))

	s.wg.Add(1)
	go s.loop()
	return s, nil
}

func (s *fsnotifySession) loop() {
	defer s.wg.Done()

	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.deliver(ev)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			if !s.stopped.Load() {
				s.onError(err)
			}
		}
	}
}

func (s *fsnotifySession) deliver(ev fsnotify.Event) {
	flags := normalizeOp(ev.Op)
	if !flags.Actionable() {
		return
	}
	if s.stopped.Load() {
		return
	}
	s.onEvent(RawChangeEvent{
		Path:  ev.Name,
		Flags: flags,
		Seq:   s.seq.Add(1),
	})
}

// Stop closes the underlying watcher and waits for the delivery goroutine,
// so no event reaches the callbacks after it returns.
func (s *fsnotifySession) Stop() error {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
		s.stopErr = s.watcher.Close()
		s.wg.Wait()
		s.logger.Debug("fsnotify session stopped")
	})
	return s.stopErr
}

// normalizeOp maps fsnotify ops into the shared flag vocabulary.
func normalizeOp(op fsnotify.Op) ChangeFlags {
	var f ChangeFlags
	if op&fsnotify.Create != 0 {
		f |= FlagCreated
	}
	if op&fsnotify.Remove != 0 {
		f |= FlagRemoved
	}
	if op&fsnotify.Write != 0 {
		f |= FlagModified
	}
	if op&fsnotify.Rename != 0 {
		f |= FlagRenamed
	}
	if op&fsnotify.Chmod != 0 {
		f |= FlagMetadata
	}
	return f
}

//go:build linux

package watcher

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/patchwork-labs/hotswap/pkg/log"
)

// inotifyMask covers every change kind the normalized vocabulary expresses.
const inotifyMask = unix.IN_CREATE |
	unix.IN_DELETE | unix.IN_DELETE_SELF |
	unix.IN_MODIFY | unix.IN_CLOSE_WRITE |
	unix.IN_MOVED_FROM | unix.IN_MOVED_TO | unix.IN_MOVE_SELF |
	unix.IN_ATTRIB

// inotifySession reads batched kernel records from one inotify descriptor.
// Records arrive as variable-length structs packed into the read buffer and
// are marshaled into individual RawChangeEvent values. The kernel identifies
// each watch by a stable integer descriptor; roots maps it back to the
// watched path.
type inotifySession struct {
	fd    int
	roots map[int32]string
	buf   []byte

	onEvent EventFunc
	onError ErrorFunc
	logger  log.Logger

	seq     uint64
	stopped atomic.Bool
	wg      sync.WaitGroup

	stopOnce sync.Once
	stopErr  error
}

func newInotifySession(paths []string, onEvent EventFunc, onError ErrorFunc, logger log.Logger) (Session, error) {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("watcher: inotify init: %w", err)
	}

	s := &inotifySession{
		fd:      fd,
		roots:   make(map[int32]string, len(paths)),
		buf:     make([]byte, 64*1024),
		onEvent: onEvent,
		onError: onError,
		logger:  logger,
	}

	for _, p := range paths {
		wd, err := unix.InotifyAddWatch(fd, p, inotifyMask)
		if err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("watcher: inotify add %s: %w", p, err)
		}
		s.roots[int32(wd)] = p
	}

	logger.Debug("inotify session started", log.Int("paths", len(paths)))

	s.wg.Add(1)
	go s.loop()
	return s, nil
}

func (s *inotifySession) loop() {
	defer s.wg.Done()

	for {
		n, err := unix.Read(s.fd, s.buf)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if !s.stopped.Load() {
				s.onError(fmt.Errorf("watcher: inotify read: %w", err))
			}
			return
		}
		s.marshalBatch(s.buf[:n])
	}
}

// marshalBatch walks the packed kernel records in buf and delivers one
// event per actionable record. The record layout is struct inotify_event
// followed by a NUL-padded name of Len bytes.
func (s *inotifySession) marshalBatch(buf []byte) {
	var offset uint32
	for offset+unix.SizeofInotifyEvent <= uint32(len(buf)) {
		raw := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
		nameLen := raw.Len
		recEnd := offset + unix.SizeofInotifyEvent + nameLen
		if recEnd > uint32(len(buf)) {
			s.onError(fmt.Errorf("watcher: truncated inotify record"))
			return
		}

		var name string
		if nameLen > 0 {
			name = string(bytes.TrimRight(buf[offset+unix.SizeofInotifyEvent:recEnd], "\x00"))
		}
		mask := raw.Mask
		wd := raw.Wd
		offset = recEnd

		if mask&unix.IN_Q_OVERFLOW != 0 {
			s.logger.Warn("inotify queue overflow, events lost")
			continue
		}
		if mask&unix.IN_IGNORED != 0 {
			continue
		}

		root, ok := s.roots[wd]
		if !ok {
			continue
		}
		path := root
		if name != "" {
			path = filepath.Join(root, name)
		}

		flags := normalizeMask(mask)
		if !flags.Actionable() {
			continue
		}
		if s.stopped.Load() {
			return
		}
		s.seq++
		s.onEvent(RawChangeEvent{Path: path, Flags: flags, Seq: s.seq})
	}
}

// Stop closes the kernel descriptor, which unblocks the read loop, and
// waits for it to exit before releasing the session.
func (s *inotifySession) Stop() error {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
		s.stopErr = unix.Close(s.fd)
		s.wg.Wait()
		s.logger.Debug("inotify session stopped")
	})
	return s.stopErr
}

// normalizeMask maps raw inotify mask bits into the shared flag vocabulary.
func normalizeMask(mask uint32) ChangeFlags {
	var f ChangeFlags
	if mask&unix.IN_CREATE != 0 {
		f |= FlagCreated
	}
	if mask&(unix.IN_DELETE|unix.IN_DELETE_SELF) != 0 {
		f |= FlagRemoved
	}
	if mask&(unix.IN_MODIFY|unix.IN_CLOSE_WRITE) != 0 {
		f |= FlagModified
	}
	if mask&(unix.IN_MOVED_FROM|unix.IN_MOVED_TO|unix.IN_MOVE_SELF) != 0 {
		f |= FlagRenamed
	}
	if mask&unix.IN_ATTRIB != 0 {
		f |= FlagMetadata
	}
	return f
}

func newPlatformSession(paths []string, onEvent EventFunc, onError ErrorFunc, logger log.Logger) (Session, error) {
	return newInotifySession(paths, onEvent, onError, logger)
}

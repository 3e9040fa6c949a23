//go:build !linux

package watcher

import (
	"fmt"

	"github.com/patchwork-labs/hotswap/pkg/log"
)

func newInotifySession(paths []string, onEvent EventFunc, onError ErrorFunc, logger log.Logger) (Session, error) {
	return nil, fmt.Errorf("watcher: inotify backend requires linux")
}

func newPlatformSession(paths []string, onEvent EventFunc, onError ErrorFunc, logger log.Logger) (Session, error) {
	return newFSNotifySession(paths, onEvent, onError, logger)
}

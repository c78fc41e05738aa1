package app

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"acctview/internal/logging"
)

const defaultWatchDebounce = 200 * time.Millisecond

// watchAccounts calls onChange, debounced, whenever an account file or the
// order file in dir changes. The returned stop func is idempotent.
func watchAccounts(dir string, debounce time.Duration, onChange func()) (func(), error) {
	if debounce <= 0 {
		debounce = defaultWatchDebounce
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		var debounceTimer *time.Timer
		var mu sync.Mutex
		closed := false

		defer func() {
			mu.Lock()
			closed = true
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			mu.Unlock()
		}()

		for {
			select {
			case <-done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !relevantAccountEvent(event) {
					continue
				}

				mu.Lock()
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounce, func() {
					mu.Lock()
					stopped := closed
					mu.Unlock()
					if !stopped {
						onChange()
					}
				})
				mu.Unlock()

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Warn(storeSubsystem, "account watcher: %v", err)
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			_ = watcher.Close()
		})
	}
	return stop, nil
}

func relevantAccountEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Base(event.Name)
	return name == stateFileName || accountIDFromPath(name) != ""
}

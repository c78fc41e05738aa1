package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	lockWaitTimeout = 10 * time.Second
	lockRetryDelay  = 100 * time.Millisecond
	lockStaleAfter  = 30 * time.Second
)

// storeLock serializes writers of one accounts directory across processes.
type storeLock struct {
	path string
}

// acquireLock creates the lock file exclusively, retrying until it succeeds,
// the lock goes stale, ctx ends, or lockWaitTimeout passes.
func acquireLock(ctx context.Context, path string) (*storeLock, error) {
	if err := ensureParentDir(path); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(lockWaitTimeout)
	for {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_, _ = fmt.Fprintf(file, "%d\n%d\n", os.Getpid(), time.Now().Unix())
			_ = file.Close()
			return &storeLock{path: path}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}

		if stale, staleErr := isStaleLock(path); staleErr == nil && stale {
			_ = os.Remove(path)
			continue
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timeout acquiring lock %s", path)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire lock %s: %w", path, ctx.Err())
		case <-time.After(lockRetryDelay):
		}
	}
}

func isStaleLock(path string) (bool, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	parts := strings.Split(strings.TrimSpace(string(bytes)), "\n")
	if len(parts) < 2 {
		return true, nil
	}
	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return true, nil
	}
	return time.Since(time.Unix(ts, 0)) > lockStaleAfter, nil
}

func (l *storeLock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// withLock runs fn while holding the directory lock.
func withLock(ctx context.Context, path string, fn func() error) error {
	lock, err := acquireLock(ctx, path)
	if err != nil {
		return err
	}
	fnErr := fn()
	if err := lock.Release(); err != nil && fnErr == nil {
		return err
	}
	return fnErr
}

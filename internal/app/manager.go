package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"acctview/internal/account"
	"acctview/internal/dispatch"
	"acctview/internal/logging"
)

const storeSubsystem = "store"

type ManagerOptions struct {
	// Watch enables fsnotify change tracking once the manager is ready.
	Watch bool
	// Debounce coalesces bursts of file events into one rescan.
	Debounce time.Duration
}

// DirManager is an account.Manager backed by a directory of TOML files.
// File IO runs on worker goroutines; every state change and signal is
// applied through the dispatcher.
type DirManager struct {
	paths StorePaths
	d     dispatch.Dispatcher
	opts  ManagerOptions

	mu       sync.Mutex
	accounts map[string]*dirAccount
	order    []string
	loaded   bool
	ready    *account.PendingOperation
	stop     func()
	closed   bool

	// scanMu keeps snapshot order equal to post order.
	scanMu sync.Mutex

	newAccount account.Signal[account.Account]
}

func NewDirManager(dir string, d dispatch.Dispatcher, opts ManagerOptions) (*DirManager, error) {
	paths, err := resolveStorePaths(dir)
	if err != nil {
		return nil, err
	}
	return &DirManager{
		paths:    paths,
		d:        d,
		opts:     opts,
		accounts: map[string]*dirAccount{},
	}, nil
}

func (m *DirManager) Paths() StorePaths {
	return m.paths
}

type scanEntry struct {
	id   string
	file AccountFile
	err  error
}

// scan reads every account file in manager order.
func (m *DirManager) scan() ([]scanEntry, error) {
	ids, err := listAccountIDs(m.paths)
	if err != nil {
		return nil, err
	}
	state, err := loadState(m.paths)
	if err != nil {
		logging.Warn(storeSubsystem, "ignoring unreadable state file %s: %v", m.paths.StatePath, err)
		state = StateFile{Version: 1}
	}
	ordered := orderIDs(state.Order, ids)
	out := make([]scanEntry, 0, len(ordered))
	for _, id := range ordered {
		f, err := loadAccountFile(m.paths, id)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		out = append(out, scanEntry{id: id, file: f, err: err})
	}
	return out, nil
}

func (m *DirManager) BecomeReady() *account.PendingOperation {
	m.mu.Lock()
	if m.ready != nil {
		op := m.ready
		m.mu.Unlock()
		return op
	}
	op := account.NewPendingOperation(m.d)
	m.ready = op
	m.mu.Unlock()

	go func() {
		var stop func()
		if m.opts.Watch {
			var err error
			stop, err = watchAccounts(m.paths.RootDir, m.opts.Debounce, m.requestRescan)
			if err != nil {
				logging.Warn(storeSubsystem, "account watcher disabled: %v", err)
			}
		}

		m.scanMu.Lock()
		entries, err := m.scan()
		m.d.Post(func() {
			m.mu.Lock()
			closed := m.closed
			if !closed {
				m.stop = stop
			}
			m.mu.Unlock()
			if closed && stop != nil {
				stop()
			}
			if err == nil {
				m.applySnapshot(entries, false)
				logging.Debug(storeSubsystem, "loaded %d accounts from %s", len(entries), m.paths.RootDir)
			}
			m.mu.Lock()
			m.loaded = true
			m.mu.Unlock()
			op.Finish(err)
		})
		m.scanMu.Unlock()
	}()
	return op
}

// requestRescan reloads the directory off the dispatcher and applies the
// result on it.
func (m *DirManager) requestRescan() {
	go func() {
		m.scanMu.Lock()
		defer m.scanMu.Unlock()
		entries, err := m.scan()
		m.d.Post(func() {
			if err != nil {
				logging.Error(storeSubsystem, err, "rescan of %s failed", m.paths.RootDir)
				return
			}
			m.mu.Lock()
			loaded := m.loaded && !m.closed
			m.mu.Unlock()
			if loaded {
				m.applySnapshot(entries, true)
			}
		})
	}()
}

// applySnapshot reconciles the in-memory accounts with entries. State is
// updated first and signals are emitted afterwards, so handlers always see
// the complete new account set.
func (m *DirManager) applySnapshot(entries []scanEntry, notify bool) {
	var emits []func()
	var added []*dirAccount

	m.mu.Lock()
	seen := make(map[string]bool, len(entries))
	order := make([]string, 0, len(entries))
	for _, entry := range entries {
		seen[entry.id] = true
		order = append(order, entry.id)
		if entry.err != nil {
			logging.Warn(storeSubsystem, "account %s is invalid: %v", entry.id, entry.err)
		}
		valid := entry.err == nil && fileValid(entry.file)
		if existing, ok := m.accounts[entry.id]; ok {
			emits = append(emits, existing.update(entry.file, valid)...)
			continue
		}
		acc := newDirAccount(m, entry.id, entry.file, valid)
		m.accounts[entry.id] = acc
		added = append(added, acc)
	}
	var removed []*dirAccount
	for id, acc := range m.accounts {
		if !seen[id] {
			delete(m.accounts, id)
			removed = append(removed, acc)
		}
	}
	m.order = order
	m.mu.Unlock()

	if !notify {
		return
	}
	for _, acc := range removed {
		logging.Debug(storeSubsystem, "account %s removed", acc.id)
		acc.invalidate()
	}
	for _, emit := range emits {
		emit()
	}
	for _, acc := range added {
		logging.Debug(storeSubsystem, "account %s added", acc.id)
		m.newAccount.Emit(acc)
	}
}

func (m *DirManager) AllAccounts() []account.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]account.Account, 0, len(m.order))
	for _, id := range m.order {
		if acc, ok := m.accounts[id]; ok {
			out = append(out, acc)
		}
	}
	return out
}

func (m *DirManager) NewAccount() *account.Signal[account.Account] {
	return &m.newAccount
}

// Lookup returns the account with the given id.
func (m *DirManager) Lookup(id string) (account.Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return nil, false
	}
	return acc, true
}

// CreateAccount writes a new account file. The account shows up through
// NewAccount once the change has been picked up.
func (m *DirManager) CreateAccount(ctx context.Context, spec AccountSpec) (AccountSpec, error) {
	spec, err := normalizeAccountSpec(spec)
	if err != nil {
		return spec, err
	}
	err = withLock(ctx, m.paths.LockPath, func() error {
		if _, err := os.Stat(accountPath(m.paths, spec.ID)); err == nil {
			return fmt.Errorf("account %q already exists", spec.ID)
		}
		if err := saveAccountFile(m.paths, spec.ID, newAccountFile(spec)); err != nil {
			return err
		}
		state, err := loadState(m.paths)
		if err != nil {
			return err
		}
		return saveState(m.paths, appendToOrder(state, spec.ID))
	})
	if err != nil {
		return spec, err
	}
	m.requestRescan()
	return spec, nil
}

// RemoveAccount deletes an account file and its order entry.
func (m *DirManager) RemoveAccount(ctx context.Context, id string) error {
	if err := validateAccountID(id); err != nil {
		return err
	}
	err := withLock(ctx, m.paths.LockPath, func() error {
		if _, err := os.Stat(accountPath(m.paths, id)); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("account %q does not exist", id)
			}
			return err
		}
		if err := deleteAccountFile(m.paths, id); err != nil {
			return err
		}
		state, err := loadState(m.paths)
		if err != nil {
			return err
		}
		return saveState(m.paths, removeFromOrder(state, id))
	})
	if err != nil {
		return err
	}
	m.requestRescan()
	return nil
}

// write applies mutate to the account's file on a worker and, once saved,
// to the in-memory account on the dispatcher.
func (m *DirManager) write(acc *dirAccount, mutate func(*AccountFile)) *account.PendingOperation {
	op := account.NewPendingOperation(m.d)
	go func() {
		var saved AccountFile
		err := withLock(context.Background(), m.paths.LockPath, func() error {
			f, err := loadAccountFile(m.paths, acc.id)
			if err != nil {
				return err
			}
			mutate(&f)
			if err := saveAccountFile(m.paths, acc.id, f); err != nil {
				return err
			}
			saved = f
			return nil
		})
		m.d.Post(func() {
			if err != nil {
				logging.Error(storeSubsystem, err, "write to account %s failed", acc.id)
			} else {
				for _, emit := range acc.update(saved, fileValid(saved)) {
					emit()
				}
			}
			op.Finish(err)
		})
	}()
	return op
}

// Close stops the watcher. Accounts stay readable.
func (m *DirManager) Close() {
	m.mu.Lock()
	m.closed = true
	stop := m.stop
	m.stop = nil
	m.mu.Unlock()
	if stop != nil {
		stop()
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"acctview/internal/account"
	"acctview/internal/dispatch"
	"acctview/internal/logging"
	"acctview/internal/model"
)

const serviceSubsystem = "service"

type ServiceOptions struct {
	AccountsDir string
	// Watch keeps the model in sync with changes made by other processes.
	Watch         bool
	WatchDebounce time.Duration
	// Timeout bounds readiness and every wait for a write to land.
	Timeout time.Duration
}

// Service owns one dispatcher, the directory manager and the model over it.
// Its methods must be called from a single goroutine, which is also the
// goroutine that drains the dispatcher.
type Service struct {
	opts    ServiceOptions
	queue   *dispatch.Queue
	manager *DirManager
	model   *model.Model
}

// OpenService loads the accounts directory and returns once the model is
// ready. A readiness timeout is reported with ExitNotReady.
func OpenService(ctx context.Context, opts ServiceOptions) (*Service, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	dir := strings.TrimSpace(opts.AccountsDir)
	if dir == "" {
		var err error
		dir, err = DefaultAccountsDir()
		if err != nil {
			return nil, WrapExit(ExitIOFailure, err)
		}
	}

	queue := dispatch.NewQueue()
	manager, err := NewDirManager(dir, queue, ManagerOptions{Watch: opts.Watch, Debounce: opts.WatchDebounce})
	if err != nil {
		return nil, WrapExit(ExitIOFailure, err)
	}
	s := &Service{
		opts:    opts,
		queue:   queue,
		manager: manager,
		model:   model.New(manager),
	}

	if err := s.wait(ctx, func() bool { return s.model.State() == model.Ready }); err != nil {
		s.Close()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, WrapExit(ExitNotReady, fmt.Errorf("accounts in %s not ready after %s", manager.Paths().RootDir, opts.Timeout))
		}
		return nil, err
	}
	if err := manager.BecomeReady().Err(); err != nil {
		logging.Warn(serviceSubsystem, "continuing with an empty account list: %v", err)
	}
	return s, nil
}

func (s *Service) wait(ctx context.Context, done func() bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	return dispatch.DrainUntil(ctx, s.queue, done)
}

func (s *Service) Queue() *dispatch.Queue {
	return s.queue
}

func (s *Service) Model() *model.Model {
	return s.model
}

func (s *Service) Paths() StorePaths {
	return s.manager.Paths()
}

// Headers returns the horizontal header labels in column order.
func (s *Service) Headers() []string {
	out := make([]string, 0, s.model.ColumnCount())
	for i := 0; i < s.model.ColumnCount(); i++ {
		label, _ := s.model.HeaderData(i, model.Horizontal, model.DisplayRole).(string)
		out = append(out, label)
	}
	return out
}

// Rows renders the current row set through the model's display role.
func (s *Service) Rows() []Row {
	rows := make([]Row, 0, s.model.RowCount())
	for r := 0; r < s.model.RowCount(); r++ {
		cells := make([]any, 0, s.model.ColumnCount())
		for c := 0; c < s.model.ColumnCount(); c++ {
			cells = append(cells, s.model.Data(r, model.Column(c), model.DisplayRole))
		}
		rows = append(rows, Row{Account: accountKey(s.model.Account(r)), Cells: cells})
	}
	return rows
}

func accountKey(acc account.Account) string {
	if acc == nil {
		return ""
	}
	if withID, ok := acc.(interface{ ID() string }); ok {
		return withID.ID()
	}
	return acc.ObjectPath()
}

// ResolveRow accepts a zero-based row index or an account id.
func (s *Service) ResolveRow(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if idx, err := strconv.Atoi(ref); err == nil {
		if idx < 0 || idx >= s.model.RowCount() {
			return -1, fmt.Errorf("row %d out of range (0-%d)", idx, s.model.RowCount()-1)
		}
		return idx, nil
	}
	for r := 0; r < s.model.RowCount(); r++ {
		if accountKey(s.model.Account(r)) == ref {
			return r, nil
		}
	}
	return -1, fmt.Errorf("unknown account %q", ref)
}

// ResolveColumn accepts a column label, an alias or a zero-based index.
func ResolveColumn(ref string) (model.Column, error) {
	if idx, err := strconv.Atoi(strings.TrimSpace(ref)); err == nil {
		column := model.Column(idx)
		if !column.Valid() {
			return column, fmt.Errorf("column %d out of range (0-%d)", idx, model.ColumnCount-1)
		}
		return column, nil
	}
	column, ok := model.ParseColumn(ref)
	if !ok {
		return column, fmt.Errorf("unknown column %q", ref)
	}
	return column, nil
}

func parseCellValue(column model.Column, raw string) (any, error) {
	if column != model.ColumnEnabled {
		return raw, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid boolean %q", raw)
	}
	return value, nil
}

// Set edits one cell and waits until the write has been saved and the
// model has picked it up.
func (s *Service) Set(ctx context.Context, rowRef, columnRef, raw string) error {
	column, err := ResolveColumn(columnRef)
	if err != nil {
		return WrapExit(ExitUserError, err)
	}
	if !model.Editable(column) {
		return WrapExit(ExitUserError, fmt.Errorf("column %q is read-only", column.Label()))
	}
	row, err := s.ResolveRow(rowRef)
	if err != nil {
		return WrapExit(ExitUserError, err)
	}
	value, err := parseCellValue(column, raw)
	if err != nil {
		return WrapExit(ExitUserError, err)
	}

	op, ok := s.model.SetDataPending(row, column, value, model.EditRole)
	if !ok {
		return WrapExit(ExitUserError, fmt.Errorf("row %d column %q rejected the edit", row, column.Label()))
	}
	if err := s.wait(ctx, op.IsFinished); err != nil {
		return WrapExit(ExitIOFailure, fmt.Errorf("waiting for write: %w", err))
	}
	if err := op.Err(); err != nil {
		return WrapExit(ExitIOFailure, err)
	}
	logging.Debug(serviceSubsystem, "set %s of row %d", column.Label(), row)
	return nil
}

// Watch calls fn with the current rows and again after every model reset
// until ctx ends.
func (s *Service) Watch(ctx context.Context, fn func([]Row)) error {
	sub := s.model.OnReset(func() { fn(s.Rows()) })
	defer sub.Disconnect()
	fn(s.Rows())

	err := s.queue.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Create adds an account file and waits until the model lists it.
func (s *Service) Create(ctx context.Context, spec AccountSpec) (AccountSpec, error) {
	created, err := s.manager.CreateAccount(ctx, spec)
	if err != nil {
		return created, WrapExit(ExitUserError, err)
	}
	err = s.wait(ctx, func() bool {
		_, ok := s.manager.Lookup(created.ID)
		return ok
	})
	if err != nil {
		return created, WrapExit(ExitIOFailure, fmt.Errorf("account %s written but not loaded: %w", created.ID, err))
	}
	return created, nil
}

// Remove deletes an account file and waits until the model drops it.
func (s *Service) Remove(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if err := s.manager.RemoveAccount(ctx, id); err != nil {
		return WrapExit(ExitUserError, err)
	}
	err := s.wait(ctx, func() bool {
		_, ok := s.manager.Lookup(id)
		return !ok
	})
	if err != nil {
		return WrapExit(ExitIOFailure, fmt.Errorf("account %s deleted but still loaded: %w", id, err))
	}
	return nil
}

func (s *Service) Status() StatusResult {
	result := StatusResult{
		Paths:        s.manager.Paths(),
		Ready:        s.model.State() == model.Ready,
		AccountCount: s.model.RowCount(),
	}
	for r := 0; r < s.model.RowCount(); r++ {
		acc := s.model.Account(r)
		if acc == nil {
			continue
		}
		if !acc.IsValidAccount() {
			result.Invalid = append(result.Invalid, accountKey(acc))
		}
		if acc.IsEnabled() {
			result.Enabled++
		}
		if acc.ConnectionStatus() == account.StatusConnected {
			result.Connected++
		}
	}
	return result
}

// Close releases the model, stops the watcher and discards queued work.
func (s *Service) Close() {
	s.model.Close()
	s.manager.Close()
	s.queue.Close()
}

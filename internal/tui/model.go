package tui

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"acctview/internal/account"
	"acctview/internal/dispatch"
	"acctview/internal/logging"
	"acctview/internal/model"
)

const subsystem = "tui"

// workMsg reports that the dispatcher has queued callbacks.
type workMsg struct{}

// Model is the interactive account table. All dispatcher work is drained
// inside Update, so the account model is only touched from the program
// goroutine.
type Model struct {
	queue *dispatch.Queue
	table *model.Model

	keys  KeyMap
	help  help.Model
	input textinput.Model
	copy  func(string) error

	row, col int
	editing  bool
	editAcc  account.Account
	editCol  model.Column

	// selected is the account under the cursor when a reset starts.
	selected account.Account

	width, height int
	status        string
	statusErr     bool
	resets        int

	subs []*account.Subscription
}

// New builds the view over table. queue must be the dispatcher table's
// manager posts to; the program drains it.
func New(queue *dispatch.Queue, table *model.Model) *Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	m := &Model{
		queue: queue,
		table: table,
		keys:  DefaultKeyMap(),
		help:  help.New(),
		input: ti,
		copy:  clipboard.WriteAll,
	}
	m.subs = append(m.subs,
		table.OnAboutToReset(m.beforeReset),
		table.OnReset(m.afterReset),
	)
	return m
}

// Close drops the view's model subscriptions.
func (m *Model) Close() {
	for _, sub := range m.subs {
		sub.Disconnect()
	}
	m.subs = nil
}

func (m *Model) beforeReset() {
	m.selected = m.table.Account(m.row)
}

// afterReset keeps the cursor on the same account when it survived the reset.
func (m *Model) afterReset() {
	m.resets++
	if m.selected != nil {
		if r := m.rowOf(m.selected); r >= 0 {
			m.row = r
		}
	}
	m.selected = nil
	if m.editing && m.rowOf(m.editAcc) < 0 {
		m.stopEditing()
		m.setStatus("account removed while editing", true)
	}
	m.clamp()
}

func (m *Model) rowOf(acc account.Account) int {
	for r := 0; r < m.table.RowCount(); r++ {
		if m.table.Account(r) == acc {
			return r
		}
	}
	return -1
}

func (m *Model) clamp() {
	if m.row >= m.table.RowCount() {
		m.row = m.table.RowCount() - 1
	}
	if m.row < 0 {
		m.row = 0
	}
	if m.col >= model.ColumnCount {
		m.col = model.ColumnCount - 1
	}
	if m.col < 0 {
		m.col = 0
	}
}

func (m *Model) waitForWork() tea.Cmd {
	ready := m.queue.Ready()
	return func() tea.Msg {
		<-ready
		return workMsg{}
	}
}

func (m *Model) Init() tea.Cmd {
	return m.waitForWork()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workMsg:
		m.queue.Drain()
		return m, m.waitForWork()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateTable(msg)
	}
	return m, nil
}

func (m *Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.row--
	case key.Matches(msg, m.keys.Down):
		m.row++
	case key.Matches(msg, m.keys.Left):
		m.col--
	case key.Matches(msg, m.keys.Right):
		m.col++
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Toggle):
		m.toggleEnabled()
	case key.Matches(msg, m.keys.Edit):
		return m, m.startEditing()
	case key.Matches(msg, m.keys.Copy):
		m.copyCell()
	}
	m.clamp()
	return m, nil
}

func (m *Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.stopEditing()
		m.setStatus("edit cancelled", false)
		return m, nil
	case msg.Type == tea.KeyEnter:
		value := m.input.Value()
		row, col := m.rowOf(m.editAcc), m.editCol
		m.stopEditing()
		m.submit(row, col, value)
		return m, nil
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) toggleEnabled() {
	if m.table.RowCount() == 0 {
		return
	}
	current := m.table.Data(m.row, model.ColumnEnabled, model.EditRole)
	enabled, _ := current.(bool)
	m.submit(m.row, model.ColumnEnabled, !enabled)
}

func (m *Model) startEditing() tea.Cmd {
	if m.table.RowCount() == 0 {
		return nil
	}
	column := model.Column(m.col)
	if !model.Editable(column) {
		m.setStatus(fmt.Sprintf("%s is read-only", column.Label()), true)
		return nil
	}
	if column == model.ColumnEnabled {
		m.toggleEnabled()
		return nil
	}
	m.editing = true
	m.editAcc, m.editCol = m.table.Account(m.row), column
	m.input.SetValue(model.DisplayText(m.table.Data(m.row, column, model.EditRole)))
	m.input.CursorEnd()
	m.input.Prompt = column.Label() + ": "
	return m.input.Focus()
}

func (m *Model) stopEditing() {
	m.editing = false
	m.editAcc = nil
	m.input.Blur()
	m.input.Reset()
}

// submit forwards the edit and reports the write's outcome in the status
// line once the account confirms it.
func (m *Model) submit(row int, column model.Column, value any) {
	op, ok := m.table.SetDataPending(row, column, value, model.EditRole)
	if !ok {
		m.setStatus(fmt.Sprintf("cannot edit %s", column.Label()), true)
		return
	}
	label := column.Label()
	m.setStatus(fmt.Sprintf("saving %s…", label), false)
	started := time.Now()
	op.OnFinished(func(op *account.PendingOperation) {
		if err := op.Err(); err != nil {
			logging.Error(subsystem, err, "saving %s failed", label)
			m.setStatus(fmt.Sprintf("saving %s failed: %v", label, err), true)
			return
		}
		m.setStatus(fmt.Sprintf("saved %s in %s", label, time.Since(started).Round(time.Millisecond)), false)
	})
}

func (m *Model) copyCell() {
	if m.table.RowCount() == 0 {
		return
	}
	text := model.DisplayText(m.table.Data(m.row, model.Column(m.col), model.DisplayRole))
	if err := m.copy(text); err != nil {
		logging.Warn(subsystem, "clipboard copy failed: %v", err)
		m.setStatus("copy failed", true)
		return
	}
	m.setStatus("copied to clipboard", false)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(queue *dispatch.Queue, table *model.Model) error {
	m := New(queue, table)
	defer m.Close()
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

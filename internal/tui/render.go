package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"acctview/internal/model"
)

func (m *Model) View() string {
	if m.table.State() != model.Ready {
		return statusStyle.Render("waiting for the account manager…")
	}

	widths := m.columnWidths()
	first := m.firstVisibleColumn(widths)

	var b strings.Builder
	b.WriteString(m.renderHeader(widths, first))
	b.WriteByte('\n')
	if m.table.RowCount() == 0 {
		b.WriteString(statusStyle.Render("no accounts"))
		b.WriteByte('\n')
	}
	for r := 0; r < m.table.RowCount(); r++ {
		b.WriteString(m.renderRow(r, widths, first))
		b.WriteByte('\n')
	}

	if m.editing {
		b.WriteString(editorStyle.Render(m.input.View()))
		b.WriteByte('\n')
	}
	b.WriteString(m.renderStatus())
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// columnWidths measures every column over the header and all rows.
func (m *Model) columnWidths() []int {
	widths := make([]int, model.ColumnCount)
	for c := 0; c < model.ColumnCount; c++ {
		label, _ := m.table.HeaderData(c, model.Horizontal, model.DisplayRole).(string)
		widths[c] = runewidth.StringWidth(label)
		for r := 0; r < m.table.RowCount(); r++ {
			w := runewidth.StringWidth(cellText(m.table, r, model.Column(c)))
			if w > widths[c] {
				widths[c] = w
			}
		}
		if widths[c] > maxCellWidth {
			widths[c] = maxCellWidth
		}
	}
	return widths
}

// firstVisibleColumn scrolls horizontally so the cursor column fits in the
// terminal width.
func (m *Model) firstVisibleColumn(widths []int) int {
	if m.width <= 0 {
		return 0
	}
	first := 0
	for first < m.col {
		total := 0
		for c := first; c <= m.col; c++ {
			total += widths[c] + cellGap
		}
		if total <= m.width {
			break
		}
		first++
	}
	return first
}

// lastVisibleColumn returns the index of the last column that fits after
// first.
func (m *Model) lastVisibleColumn(widths []int, first int) int {
	if m.width <= 0 {
		return len(widths) - 1
	}
	total := 0
	last := first
	for c := first; c < len(widths); c++ {
		total += widths[c] + cellGap
		if total > m.width && c > first {
			break
		}
		last = c
	}
	return last
}

func (m *Model) renderHeader(widths []int, first int) string {
	last := m.lastVisibleColumn(widths, first)
	cells := make([]string, 0, last-first+1)
	for c := first; c <= last; c++ {
		label, _ := m.table.HeaderData(c, model.Horizontal, model.DisplayRole).(string)
		cells = append(cells, headerStyle.Render(pad(label, widths[c])))
	}
	return strings.Join(cells, strings.Repeat(" ", cellGap))
}

func (m *Model) renderRow(r int, widths []int, first int) string {
	last := m.lastVisibleColumn(widths, first)
	base := rowStyle
	if acc := m.table.Account(r); acc != nil && !acc.IsValidAccount() {
		base = invalidRowStyle
	}
	if r == m.row {
		base = selectedRowStyle
	}

	cells := make([]string, 0, last-first+1)
	for c := first; c <= last; c++ {
		style := base
		if r == m.row && c == m.col {
			style = selectedCellStyle
		}
		cells = append(cells, style.Render(pad(cellText(m.table, r, model.Column(c)), widths[c])))
	}
	return strings.Join(cells, base.Render(strings.Repeat(" ", cellGap)))
}

func (m *Model) renderStatus() string {
	state := fmt.Sprintf("%d accounts", m.table.RowCount())
	if m.table.RowCount() > 0 {
		state = fmt.Sprintf("%s · row %d/%d · %s", state, m.row+1, m.table.RowCount(), model.Column(m.col).Label())
	}
	if m.status == "" {
		return statusStyle.Render(state)
	}
	style := statusStyle
	if m.statusErr {
		style = statusErrorStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, statusStyle.Render(state+" · "), style.Render(m.status))
}

func cellText(table *model.Model, r int, column model.Column) string {
	value := table.Data(r, column, model.DisplayRole)
	if value == nil {
		return "-"
	}
	return model.DisplayText(value)
}

// pad truncates or right-pads s to exactly width terminal cells.
func pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

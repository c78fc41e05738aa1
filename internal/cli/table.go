package cli

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"acctview/internal/app"
	"acctview/internal/model"
)

const maxColumnWidth = 32

// renderTable lays rows out in aligned columns measured in terminal cells.
// Absent values print as "-".
func renderTable(headers []string, rows []app.Row) string {
	cells := make([][]string, 0, len(rows))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		line := make([]string, len(headers))
		for i := range headers {
			text := "-"
			if i < len(row.Cells) && row.Cells[i] != nil {
				text = model.DisplayText(row.Cells[i])
			}
			line[i] = text
			if w := runewidth.StringWidth(text); w > widths[i] {
				widths[i] = w
			}
		}
		cells = append(cells, line)
	}
	for i := range widths {
		if widths[i] > maxColumnWidth {
			widths[i] = maxColumnWidth
		}
	}

	var b strings.Builder
	writeLine(&b, headers, widths)
	for _, line := range cells {
		writeLine(&b, line, widths)
	}
	return b.String()
}

func writeLine(b *strings.Builder, values []string, widths []int) {
	for i, v := range values {
		if runewidth.StringWidth(v) > widths[i] {
			v = runewidth.Truncate(v, widths[i], "…")
		}
		if i == len(values)-1 {
			b.WriteString(v)
			break
		}
		b.WriteString(runewidth.FillRight(v, widths[i]))
		b.WriteString("  ")
	}
	b.WriteByte('\n')
}

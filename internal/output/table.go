package output

import (
	"fmt"
	"io"
	"strings"
)

// Table renders aligned tabular data for text output.
type Table struct {
	headers   []string
	rows      [][]string
	separator string
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{
		headers:   headers,
		separator: "  ",
	}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return nil
	}

	widths := t.calculateWidths()

	if len(t.headers) > 0 {
		if err := t.renderRow(w, t.headers, widths); err != nil {
			return err
		}
		underline := make([]string, len(widths))
		for i, width := range widths {
			underline[i] = strings.Repeat("-", width)
		}
		if err := t.renderRow(w, underline, widths); err != nil {
			return err
		}
	}

	for _, row := range t.rows {
		if err := t.renderRow(w, row, widths); err != nil {
			return err
		}
	}

	return nil
}

// String returns the table as a string.
func (t *Table) String() string {
	var sb strings.Builder
	_ = t.Render(&sb)
	return sb.String()
}

// calculateWidths returns the maximum width of each column.
func (t *Table) calculateWidths() []int {
	numCols := len(t.headers)
	for _, row := range t.rows {
		if len(row) > numCols {
			numCols = len(row)
		}
	}

	widths := make([]int, numCols)
	for i, h := range t.headers {
		if len(h) > widths[i] {
			widths[i] = len(h)
		}
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < numCols && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	return widths
}

// renderRow renders a single row, padding cells to column width.
func (t *Table) renderRow(w io.Writer, cells []string, widths []int) error {
	parts := make([]string, len(widths))
	for i := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
	}
	_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, t.separator), " "))
	return err
}

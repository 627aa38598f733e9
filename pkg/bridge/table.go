package bridge

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Table is an in-memory materialization result: ordered column names and
// row values as returned by the adapter.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// RowMaps returns the rows as column-name-keyed maps, mainly for tests and
// JSON output.
func (t *Table) RowMaps() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		m := make(map[string]any, len(t.Columns))
		for j, col := range t.Columns {
			m[col] = row[j]
		}
		out[i] = m
	}
	return out
}

// Render writes the table in the requested format: "table" (default),
// "json", "csv" or "md".
func (t *Table) Render(w io.Writer, format string) error {
	switch format {
	case "json":
		return t.renderJSON(w)
	case "csv":
		return t.renderCSV(w)
	case "md", "markdown":
		return t.renderPretty(w, true)
	default:
		return t.renderPretty(w, false)
	}
}

func (t *Table) renderPretty(w io.Writer, markdown bool) error {
	if len(t.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(t.Columns))
	for i, col := range t.Columns {
		headerRow[i] = col
	}
	tw.AppendHeader(headerRow)

	for _, row := range t.Rows {
		pretty := make(table.Row, len(t.Columns))
		for i, v := range row {
			pretty[i] = formatValue(v)
		}
		tw.AppendRow(pretty)
	}

	if markdown {
		tw.RenderMarkdown()
		return nil
	}
	tw.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(t.Rows))
	return nil
}

func (t *Table) renderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t.RowMaps())
}

func (t *Table) renderCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = formatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

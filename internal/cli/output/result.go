package output

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/leapstack-labs/sqlsh/internal/completion"
)

// ResultSet is a fully read query result.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// Result writes rs in the renderer's mode. vertical prints one
// "column: value" block per row and applies to table mode only.
func (r *Renderer) Result(rs *ResultSet, vertical bool) error {
	switch r.mode {
	case ModeJSON:
		return r.JSON(rs.Records())
	case ModeCSV:
		rows := make([][]string, len(rs.Rows))
		for i, row := range rs.Rows {
			rows[i] = make([]string, len(row))
			for j, v := range row {
				rows[i][j] = FormatValue(v)
			}
		}
		return r.csv(rs.Columns, rows)
	case ModeMarkdown:
		if len(rs.Rows) > 0 {
			r.Println(newResultTable(rs).RenderMarkdown())
		}
	default:
		if len(rs.Rows) == 0 {
			return nil
		}
		if vertical {
			r.vertical(rs)
			return nil
		}
		r.Println(newResultTable(rs).Render())
	}
	return nil
}

func newResultTable(rs *ResultSet) table.Writer {
	t := newWriter()
	header := make(table.Row, len(rs.Columns))
	for i, col := range rs.Columns {
		header[i] = col
	}
	t.AppendHeader(header)
	for _, row := range rs.Rows {
		out := make(table.Row, len(row))
		for i, v := range row {
			out[i] = FormatValue(v)
		}
		t.AppendRow(out)
	}
	return t
}

// newWriter returns a table writer that keeps header case as given.
func newWriter() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	return t
}

func (r *Renderer) vertical(rs *ResultSet) {
	width := 0
	for _, col := range rs.Columns {
		width = max(width, len(col))
	}
	for n, row := range rs.Rows {
		r.Println(r.Muted(fmt.Sprintf("%s %d. row %s", strings.Repeat("*", 27), n+1, strings.Repeat("*", 27))))
		for i, col := range rs.Columns {
			r.Printf("%*s: %s\n", width, col, FormatValue(row[i]))
		}
	}
}

// Records converts the rows to column-keyed maps. Byte slices become
// strings.
func (rs *ResultSet) Records() []map[string]any {
	out := make([]map[string]any, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		rec := make(map[string]any, len(rs.Columns))
		for i, col := range rs.Columns {
			if b, ok := row[i].([]byte); ok {
				rec[col] = string(b)
				continue
			}
			rec[col] = row[i]
		}
		out = append(out, rec)
	}
	return out
}

// FormatValue renders a scanned value for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.DateTime)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// RowsFooter writes the "N rows in set" summary in table mode.
func (r *Renderer) RowsFooter(rows int, elapsed time.Duration) {
	if r.mode != ModeTable {
		return
	}
	switch rows {
	case 0:
		r.Println(r.Muted(fmt.Sprintf("Empty set (%s)", Elapsed(elapsed))))
	case 1:
		r.Println(r.Muted(fmt.Sprintf("1 row in set (%s)", Elapsed(elapsed))))
	default:
		r.Println(r.Muted(fmt.Sprintf("%d rows in set (%s)", rows, Elapsed(elapsed))))
	}
}

// AffectedFooter writes the "Query OK" summary for statements without rows.
func (r *Renderer) AffectedFooter(affected int64, elapsed time.Duration) {
	if r.mode != ModeTable {
		return
	}
	noun := "rows"
	if affected == 1 {
		noun = "row"
	}
	r.Println(r.Muted(fmt.Sprintf("Query OK, %d %s affected (%s)", affected, noun, Elapsed(elapsed))))
}

// Elapsed formats a duration as seconds with millisecond precision.
func Elapsed(d time.Duration) string {
	return fmt.Sprintf("%.3f sec", d.Seconds())
}

// Suggestions writes ranked completion suggestions.
func (r *Renderer) Suggestions(items []completion.Suggestion) error {
	if r.mode == ModeJSON {
		if items == nil {
			items = []completion.Suggestion{}
		}
		return r.JSON(items)
	}
	if r.mode == ModeCSV {
		rows := make([][]string, len(items))
		for i, s := range items {
			rows[i] = []string{s.Text, s.Category.String(), strconv.Itoa(s.Relevance), s.Description}
		}
		return r.csv([]string{"text", "category", "score", "description"}, rows)
	}
	if len(items) == 0 {
		r.Println(r.Muted("(no suggestions)"))
		return nil
	}

	t := newWriter()
	t.AppendHeader(table.Row{"", "Text", "Category", "Score", "Description"})
	for _, s := range items {
		t.AppendRow(table.Row{s.Category.Icon(), s.Text, s.Category.String(), s.Relevance, s.Description})
	}
	switch r.mode {
	case ModeMarkdown:
		r.Println(t.RenderMarkdown())
	default:
		r.Println(t.Render())
	}
	return nil
}

// csv writes RFC 4180 records. go-pretty's RenderCSV escapes embedded
// commas with a backslash, which other CSV readers do not understand.
func (r *Renderer) csv(header []string, rows [][]string) error {
	w := csv.NewWriter(r.out)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

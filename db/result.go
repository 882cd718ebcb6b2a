package db

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nickyhof/CommitQuery/core"
)

// Result is the collected outcome of a synchronous execution.
type Result struct {
	SQL              string
	Columns          []core.Column
	Rows             []Row
	InsertID         int64
	ExecutionTimeSec float64
}

// ColumnNames returns the column names in result order.
func (result *Result) ColumnNames() []string {
	names := make([]string, len(result.Columns))
	for i, column := range result.Columns {
		names[i] = column.Name
	}
	return names
}

// Data renders every row as text, aligned with ColumnNames.
func (result *Result) Data() [][]string {
	data := make([][]string, len(result.Rows))
	for i, row := range result.Rows {
		record := make([]string, len(result.Columns))
		for j, column := range result.Columns {
			record[j] = FormatValue(row[column.Name])
		}
		data[i] = record
	}
	return data
}

// FormatValue renders a typed row value for display and export. NULL is
// rendered as the text NULL.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}

// formatDuration formats a duration in human-readable form
func formatDuration(secs float64) string {
	if secs < 0.001 {
		return "<1ms"
	} else if secs < 1 {
		ms := secs * 1000
		if ms < 10 {
			return fmt.Sprintf("%.1fms", ms)
		}
		return fmt.Sprintf("%dms", int(ms))
	} else if secs < 60 {
		if secs < 10 {
			return fmt.Sprintf("%.1fs", secs)
		}
		return fmt.Sprintf("%ds", int(secs))
	}
	mins := int(secs / 60)
	remainSecs := int(secs) % 60
	if remainSecs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm%ds", mins, remainSecs)
}

func (result *Result) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

// Display prints the result table and a stats line to stdout.
func (result *Result) Display() {
	result.Fprint(os.Stdout)
}

// Fprint writes the result table followed by a stats line to w. Results
// without columns, such as inserts, print only the stats line.
func (result *Result) Fprint(w io.Writer) {
	if len(result.Columns) == 0 {
		if result.InsertID > 0 {
			fmt.Fprintf(w, "OK, insert id %d (%s)\n", result.InsertID, result.ExecutionTime())
		} else {
			fmt.Fprintf(w, "OK (%s)\n", result.ExecutionTime())
		}
		return
	}

	if len(result.Rows) > 0 {
		table := NewTable(w)
		table.MaxCellWidth = 64
		table.Header(result.ColumnNames())
		table.Bulk(result.Data())
		table.Render()
	}

	fmt.Fprintf(w, "%d rows (%s)\n", len(result.Rows), result.ExecutionTime())
}

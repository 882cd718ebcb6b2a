package conn

import (
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nickyhof/CommitQuery/core"
)

// rowsCursor renders each row of a *sql.Rows as text.
type rowsCursor struct {
	rows    *sql.Rows
	columns []core.Column

	advanced bool
	hasNext  bool
	closed   bool
}

func newRowsCursor(rows *sql.Rows) (*rowsCursor, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		rows.Close()
		return nil, err
	}

	columns := make([]core.Column, len(types))
	for i, columnType := range types {
		columns[i] = ColumnOf(columnType.Name(), columnType.DatabaseTypeName())
	}
	return &rowsCursor{rows: rows, columns: columns}, nil
}

func (c *rowsCursor) HasNext() bool {
	if c.closed {
		return false
	}
	if !c.advanced {
		c.hasNext = c.rows.Next()
		c.advanced = true
	}
	return c.hasNext
}

func (c *rowsCursor) Next() (core.RawRow, error) {
	if !c.HasNext() {
		if err := c.rows.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	c.advanced = false

	values := make([]any, len(c.columns))
	dest := make([]any, len(c.columns))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := c.rows.Scan(dest...); err != nil {
		return nil, err
	}

	row := make(core.RawRow, len(values))
	for i, value := range values {
		row[i] = FormatField(value, c.columns[i].Type)
	}
	return row, nil
}

func (c *rowsCursor) ColumnCount() int {
	return len(c.columns)
}

func (c *rowsCursor) Column(i int) core.Column {
	return c.columns[i]
}

func (c *rowsCursor) InsertID() int64 {
	return 0
}

// Close reports iteration errors that ended HasNext early.
func (c *rowsCursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.rows.Err(); err != nil {
		c.rows.Close()
		return err
	}
	return c.rows.Close()
}

type execCursor struct {
	insertID int64
}

func (c *execCursor) HasNext() bool { return false }
func (c *execCursor) Next() (core.RawRow, error) { return nil, io.EOF }
func (c *execCursor) ColumnCount() int { return 0 }
func (c *execCursor) Column(i int) core.Column { return core.Column{} }
func (c *execCursor) InsertID() int64 { return c.insertID }
func (c *execCursor) Close() error { return nil }

// FormatField renders a scanned driver value in the textual protocol form
// the row caster expects. Nil stays nil.
func FormatField(value any, columnType core.ColumnType) *string {
	var text string
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		text = v
	case []byte:
		text = string(v)
	case int64:
		text = strconv.FormatInt(v, 10)
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		text = "0"
		if v {
			text = "1"
		}
	case time.Time:
		switch columnType {
		case core.DateType:
			text = v.Format("2006-01-02")
		case core.TimeType:
			text = v.Format("15:04:05")
		default:
			text = v.Format("2006-01-02 15:04:05")
		}
	default:
		text = fmt.Sprint(v)
	}
	return &text
}

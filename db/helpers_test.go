package db

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/nickyhof/CommitQuery/core"
)

type fakeResult struct {
	columns  []core.Column
	rows     []core.RawRow
	insertID int64
	err      error
	nextErr  error
	noCursor bool // Execute returns a nil cursor and no error
}

// fakeConnection answers statements from a table of canned results and
// records what was executed.
type fakeConnection struct {
	mu       sync.Mutex
	results  map[string]fakeResult
	executed []string
	gate     chan struct{}
	quoting  core.Quoting
}

func newFakeConnection() *fakeConnection {
	return &fakeConnection{
		results: make(map[string]fakeResult),
		quoting: core.DefaultQuoting,
	}
}

func (c *fakeConnection) on(sql string, result fakeResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[sql] = result
}

func (c *fakeConnection) statements() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.executed...)
}

func (c *fakeConnection) Quoting() core.Quoting { return c.quoting }
func (c *fakeConnection) Open(ctx context.Context) error { return nil }
func (c *fakeConnection) Close() error { return nil }
func (c *fakeConnection) IsOpened() bool { return true }
func (c *fakeConnection) Version() string { return "fake" }
func (c *fakeConnection) Escape(value string) string { return strings.ReplaceAll(value, "'", "\\'") }

func (c *fakeConnection) Execute(ctx context.Context, sql string) (core.Cursor, error) {
	if c.gate != nil {
		select {
		case <-c.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c.mu.Lock()
	c.executed = append(c.executed, sql)
	result, ok := c.results[sql]
	c.mu.Unlock()

	if !ok {
		return nil, errors.New("no such table")
	}
	if result.err != nil {
		return nil, result.err
	}
	if result.noCursor {
		return nil, nil
	}
	return &fakeCursor{result: result}, nil
}

type fakeCursor struct {
	result   fakeResult
	position int
	closed   bool
}

func (c *fakeCursor) HasNext() bool {
	return c.position < len(c.result.rows) || (c.result.nextErr != nil && c.position == len(c.result.rows))
}

func (c *fakeCursor) Next() (core.RawRow, error) {
	if c.position == len(c.result.rows) {
		c.position++
		return nil, c.result.nextErr
	}
	row := c.result.rows[c.position]
	c.position++
	return row, nil
}

func (c *fakeCursor) ColumnCount() int { return len(c.result.columns) }
func (c *fakeCursor) Column(i int) core.Column { return c.result.columns[i] }
func (c *fakeCursor) InsertID() int64 { return c.result.insertID }
func (c *fakeCursor) Close() error {
	c.closed = true
	return nil
}

func text(s string) *string {
	return &s
}

func rawRow(fields ...string) core.RawRow {
	row := make(core.RawRow, len(fields))
	for i := range fields {
		row[i] = &fields[i]
	}
	return row
}

// eventLog records notifications in delivery order.
type eventLog struct {
	events []string
}

func (l *eventLog) listener() ListenerFuncs {
	return ListenerFuncs{
		Start: func(sql string) { l.events = append(l.events, "start") },
		Row: func(row Row, index int, last bool) {
			if last {
				l.events = append(l.events, "row(last)")
			} else {
				l.events = append(l.events, "row")
			}
		},
		Success: func(rows []Row, columns []core.Column) { l.events = append(l.events, "success") },
		Error:   func(err error) { l.events = append(l.events, "error") },
		Finish:  func() { l.events = append(l.events, "finish") },
	}
}

func (l *eventLog) String() string {
	return strings.Join(l.events, ",")
}

package conn

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/nickyhof/CommitQuery/core"
	sqlbind "github.com/nickyhof/CommitQuery/sql"
)

// Dialect describes a database/sql driver.
type Dialect struct {
	Name    string
	Driver  string
	Quoting core.Quoting

	// Escape overrides string escaping. Nil doubles the string quote.
	Escape func(string) string

	VersionQuery string

	// MaxOpenConns caps the pool when positive. In-memory SQLite needs 1
	// so that every statement sees the same database.
	MaxOpenConns int
}

// Connection is a core.Connection backed by a *sql.DB.
type Connection struct {
	dialect Dialect
	dsn     string

	mu      sync.RWMutex
	db      *sql.DB
	version string
}

func New(dialect Dialect, dsn string) *Connection {
	return &Connection{dialect: dialect, dsn: dsn}
}

// DB returns the underlying pool, nil before Open.
func (c *Connection) DB() *sql.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

func (c *Connection) Dialect() Dialect {
	return c.dialect
}

func (c *Connection) Quoting() core.Quoting {
	return c.dialect.Quoting
}

func (c *Connection) Escape(value string) string {
	if c.dialect.Escape != nil {
		return c.dialect.Escape(value)
	}
	return sqlbind.EscapeQuotes(c.dialect.Quoting.String, value)
}

func (c *Connection) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return nil
	}

	db, err := sql.Open(c.dialect.Driver, c.dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.dialect.Name, err)
	}
	if c.dialect.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.dialect.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to %s: %w", c.dialect.Name, err)
	}

	if c.dialect.VersionQuery != "" {
		var version string
		if err := db.QueryRowContext(ctx, c.dialect.VersionQuery).Scan(&version); err != nil {
			db.Close()
			return fmt.Errorf("failed to read %s version: %w", c.dialect.Name, err)
		}
		c.version = version
	}

	c.db = db
	return nil
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

func (c *Connection) IsOpened() bool {
	return c.DB() != nil
}

// Version returns the server version read at Open.
func (c *Connection) Version() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Execute runs sql. Statements that produce rows return a cursor over
// them; other statements return an empty cursor carrying the insert id.
func (c *Connection) Execute(ctx context.Context, sql string) (core.Cursor, error) {
	db := c.DB()
	if db == nil {
		return nil, core.ErrNotOpened
	}

	if !ReturnsRows(sql) {
		result, err := db.ExecContext(ctx, sql)
		if err != nil {
			return nil, err
		}
		// Drivers without insert ids report an error here, which reads as 0.
		insertID, _ := result.LastInsertId()
		return &execCursor{insertID: insertID}, nil
	}

	rows, err := db.QueryContext(ctx, sql)
	if err != nil {
		return nil, err
	}
	return newRowsCursor(rows)
}

var rowKeywords = map[string]bool{
	"SELECT":    true,
	"WITH":      true,
	"VALUES":    true,
	"PRAGMA":    true,
	"SHOW":      true,
	"DESCRIBE":  true,
	"EXPLAIN":   true,
	"TABLE":     true,
	"FROM":      true,
	"SUMMARIZE": true,
}

// ReturnsRows guesses whether sql yields a result set from its leading
// keyword, or a RETURNING clause.
func ReturnsRows(sql string) bool {
	text := strings.TrimLeft(sql, " \t\r\n(")
	end := strings.IndexFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_')
	})
	if end < 0 {
		end = len(text)
	}
	if rowKeywords[strings.ToUpper(text[:end])] {
		return true
	}
	return strings.Contains(strings.ToUpper(sql), " RETURNING ")
}

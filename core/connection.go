package core

import (
	"context"
	"strings"
)

// Quoting holds the dialect quoting characters.
type Quoting struct {
	String byte // string literals
	Field  byte // column names and aliases
	Table  byte // table names and aliases
}

// DefaultQuoting matches MySQL: single quoted strings, backtick identifiers.
var DefaultQuoting = Quoting{String: '\'', Field: '`', Table: '`'}

// StandardQuoting matches ANSI SQL (SQLite, DuckDB, PostgreSQL).
var StandardQuoting = Quoting{String: '\'', Field: '"', Table: '"'}

// Connection is a database session. Queries sharing a connection may call
// Execute from several workers at once, so Execute must be safe for
// concurrent use.
type Connection interface {
	Quoting() Quoting
	Open(ctx context.Context) error
	Close() error
	IsOpened() bool

	// Escape makes a raw string safe to place between two string quotes.
	Escape(value string) string
	Version() string

	// Execute runs literal SQL text.
	Execute(ctx context.Context, sql string) (Cursor, error)
}

// Cursor is a forward-only, single-pass iterator over textual rows. Rows
// returned by Next belong to the caller. Close may be called more than once.
type Cursor interface {
	HasNext() bool
	Next() (RawRow, error)
	ColumnCount() int
	Column(i int) Column
	InsertID() int64
	Close() error
}

// EscapeName quotes an identifier. Dotted names (schema.table) are quoted
// per segment; a bare * segment is left unquoted. A quote inside a segment
// is doubled.
func EscapeName(quote byte, name string) string {
	if quote == 0 {
		return name
	}
	q := string(quote)
	if !strings.Contains(name, ".") {
		return quoteSegment(q, name)
	}

	segments := strings.Split(name, ".")
	escaped := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		escaped = append(escaped, quoteSegment(q, segment))
	}
	return strings.Join(escaped, ".")
}

func quoteSegment(quote, segment string) string {
	if segment == "*" {
		return segment
	}
	return quote + strings.ReplaceAll(segment, quote, quote+quote) + quote
}

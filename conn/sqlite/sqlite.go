// Package sqlite provides a SQLite Connection on the pure Go
// modernc.org/sqlite driver.
package sqlite

import (
	"github.com/nickyhof/CommitQuery/conn"
	"github.com/nickyhof/CommitQuery/core"

	_ "modernc.org/sqlite"
)

const Memory = ":memory:"

var Dialect = conn.Dialect{
	Name:         "sqlite",
	Driver:       "sqlite",
	Quoting:      core.StandardQuoting,
	VersionQuery: "SELECT sqlite_version()",
}

// New returns an unopened connection to the database file at path, or to a
// private in-memory database when path is empty or Memory.
func New(path string) *conn.Connection {
	dialect := Dialect
	if path == "" || path == Memory {
		path = Memory
		dialect.MaxOpenConns = 1
	}
	return conn.New(dialect, path)
}

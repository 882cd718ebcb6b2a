// Package duckdb provides a DuckDB Connection on duckdb-go.
package duckdb

import (
	"github.com/nickyhof/CommitQuery/conn"
	"github.com/nickyhof/CommitQuery/core"

	_ "github.com/duckdb/duckdb-go/v2"
)

var Dialect = conn.Dialect{
	Name:         "duckdb",
	Driver:       "duckdb",
	Quoting:      core.StandardQuoting,
	VersionQuery: "SELECT version()",
}

// New returns an unopened connection to the database file at path. An
// empty path opens an in-memory database.
func New(path string) *conn.Connection {
	return conn.New(Dialect, path)
}

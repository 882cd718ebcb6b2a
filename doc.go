// Package CommitQuery provides a database-agnostic SQL statement builder
// with an asynchronous execution pipeline.
//
// Statements are built fluently, values are bound into ? placeholders
// with dialect-aware escaping, and the literal SQL runs on a worker pool.
// Result rows come back cast to Go types through lifecycle notifications
// delivered on the goroutine that waits for them. Executions can be
// journaled to a Git repository.
//
// # Quick Start
//
// Open an in-memory SQLite database:
//
//	instance, _ := CommitQuery.Open(ctx, sqlite.New(sqlite.Memory), CommitQuery.Options{})
//	defer instance.Close()
//
//	instance.Query().Execute(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, age INTEGER)")
//	instance.Query().Execute(ctx, "INSERT INTO users (name, age) VALUES (?, ?)", []any{"Alice", 30})
//
//	instance.Query().
//	    Select([]any{"id", "name"}).
//	    From("users").
//	    Where("age > ?", 25).
//	    Execute(ctx, func(rows []db.Row, columns []core.Column) {
//	        fmt.Println(rows)
//	    })
//
//	instance.Wait(ctx)
//
// # Packages
//
//   - core: column metadata, quoting and the Connection interfaces
//   - sql: bound values, serialization and placeholder binding
//   - db: the statement builder, row caster and execution coordinator
//   - conn: database/sql connections for SQLite and DuckDB
//   - ps: the Git-backed execution journal
package CommitQuery

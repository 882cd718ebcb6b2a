// Package db provides the statement builder and execution pipeline for
// CommitQuery.
//
// The Query type accumulates a statement through chained clause calls,
// binds positional values, executes the literal SQL on a Connection and
// delivers typed rows through lifecycle notifications.
//
// # Query Usage
//
//	coordinator := db.NewCoordinator(db.CoordinatorOptions{})
//	query := db.NewQuery(connection, coordinator)
//	query.Select([]any{"id", "name"}).
//	    From("mydb.users").
//	    Where("age > ?", 30).
//	    Where("city IN ?", []string{"Oslo", "Bergen"}).
//	    Limit(10)
//
//	err := query.Execute(ctx, func(rows []db.Row, columns []core.Column) {
//	    fmt.Println(len(rows), "rows")
//	})
//	coordinator.Wait(ctx) // deliver notifications on this goroutine
//
// # Notifications
//
// Every execution emits, in order: one row notification per result row,
// then either success or error, then finish. Listeners registered with On
// receive them, as do the callbacks set through Options.
//
// # Asynchronous Execution
//
// Asynchronous queries run the blocking driver call on a bounded worker
// pool. Row casting and every notification happen on the goroutine that
// calls Coordinator.Wait, Poll or Run, never on a worker.
//
// # Result Types
//
// Run executes synchronously and returns a Result holding columns, typed
// rows and execution metrics. A Result can be displayed as a table or
// exported to a local file or an s3:// URL.
package db

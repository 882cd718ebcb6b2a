// Package conn implements core.Connection on top of database/sql.
//
// A Connection runs literal SQL and exposes the result through a textual
// cursor: every field is rendered as text (or nil for NULL) and each
// column carries a core.ColumnType derived from the driver's database
// type name. Dialect packages such as conn/sqlite and conn/duckdb supply
// the driver name, quoting and version query.
package conn

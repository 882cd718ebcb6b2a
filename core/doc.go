// Package core provides core types used throughout CommitQuery.
//
// The package defines the collaborator contracts the pipeline is built
// against (Connection and Cursor), result column metadata, the dialect
// quoting characters and the error taxonomy shared by every layer.
//
// # Column Types
//
// Result columns carry one of the following semantic types:
//   - StringType: Short strings (VARCHAR equivalent)
//   - TextType: Long text (TEXT/BLOB equivalent)
//   - IntType: Integers
//   - NumberType: Floating point and decimal numbers
//   - DateType: Calendar dates
//   - TimeType: Time of day
//   - DateTimeType: Date and time values
//   - BoolType: Boolean values
//   - SetType: Comma separated set values
//
// # Connection
//
// A Connection wraps one database session:
//
//	conn, _ := sqlite.Open(":memory:")
//	_ = conn.Open(ctx)
//	cursor, err := conn.Execute(ctx, "SELECT 1")
//
// # Errors
//
// Errors are wrapped around the sentinels ErrBuilder, ErrBinding,
// ErrSerialization and ErrDriver so callers can test them with errors.Is.
package core

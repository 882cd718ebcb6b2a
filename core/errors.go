package core

import "errors"

var (
	// ErrBuilder marks malformed clause input: wrong arity, an empty
	// required collection or an argument of the wrong type.
	ErrBuilder = errors.New("invalid statement")

	// ErrBinding marks a placeholder/value count mismatch.
	ErrBinding = errors.New("binding failed")

	// ErrSerialization marks a value that cannot be rendered as a SQL literal.
	ErrSerialization = errors.New("serialization failed")

	// ErrDriver marks a failure reported by the Connection or its Cursor.
	ErrDriver = errors.New("driver error")

	// ErrBusy is returned when a query is executed while a previous
	// execution of the same query is still outstanding.
	ErrBusy = errors.New("query has an outstanding execution")

	ErrNotOpened = errors.New("connection not opened")
)

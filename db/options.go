package db

import (
	"fmt"

	"github.com/nickyhof/CommitQuery/core"
	"github.com/nickyhof/CommitQuery/sql"
)

// StartFunc runs before dispatch with the fully bound SQL. Returning
// ("", true) proceeds unchanged, (s, true) executes s instead and
// (_, false) cancels the execution; only finish is notified then.
type StartFunc func(sql string) (string, bool)

type RowFunc func(row Row, index int, last bool)

// SuccessFunc receives every typed row and the column metadata of a
// successful execution.
type SuccessFunc func(rows []Row, columns []core.Column)

type ErrorFunc func(err error)

type FinishFunc func()

// Options configures executions of a Query. Nil fields leave the current
// setting untouched, so options can be layered across Execute calls.
//
// Defaults: Async true, Cast true, BufferText false.
type Options struct {
	Async      *bool
	Cast       *bool
	BufferText *bool

	OnStart   StartFunc
	OnRow     RowFunc
	OnSuccess SuccessFunc
	OnError   ErrorFunc
	OnFinish  FinishFunc
}

// Bool returns a pointer to b, for use in Options.
func Bool(b bool) *bool {
	return &b
}

type settings struct {
	async      bool
	cast       bool
	bufferText bool

	onStart   StartFunc
	onRow     RowFunc
	onSuccess SuccessFunc
	onError   ErrorFunc
	onFinish  FinishFunc
}

func defaultSettings() settings {
	return settings{async: true, cast: true}
}

func (s *settings) apply(options Options) {
	if options.Async != nil {
		s.async = *options.Async
	}
	if options.Cast != nil {
		s.cast = *options.Cast
	}
	if options.BufferText != nil {
		s.bufferText = *options.BufferText
	}
	if options.OnStart != nil {
		s.onStart = options.OnStart
	}
	if options.OnRow != nil {
		s.onRow = options.OnRow
	}
	if options.OnSuccess != nil {
		s.onSuccess = options.OnSuccess
	}
	if options.OnError != nil {
		s.onError = options.OnError
	}
	if options.OnFinish != nil {
		s.onFinish = options.OnFinish
	}
}

// Set merges options into the query settings.
func (query *Query) Set(options Options) *Query {
	query.settings.apply(options)
	return query
}

type executeArgs struct {
	sql       *string
	values    []sql.Value
	hasValues bool
	callback  SuccessFunc
	options   *Options
}

type argKind int

const (
	argUnknown argKind = iota
	argSQL
	argValues
	argCallback
	argOptions
)

func classify(arg any) argKind {
	switch arg.(type) {
	case string:
		return argSQL
	case []any, []sql.Value:
		return argValues
	case SuccessFunc, func([]Row, []core.Column):
		return argCallback
	case Options, *Options:
		return argOptions
	default:
		return argUnknown
	}
}

// resolveArgs maps the positional forms of Execute onto their roles:
//
//	(sql | values | callback | options)
//	(sql, callback | values | options)
//	(sql, values | options, callback)
//	(sql, values, options)
//	(sql, values, callback, options)
func resolveArgs(args []any) (executeArgs, error) {
	var resolved executeArgs

	kinds := make([]argKind, len(args))
	for i, arg := range args {
		kinds[i] = classify(arg)
		if kinds[i] == argUnknown {
			return resolved, fmt.Errorf("%w: argument %d of execute has unsupported type %T", core.ErrBuilder, i+1, arg)
		}
	}

	valid := false
	switch len(args) {
	case 0:
		valid = true
	case 1:
		valid = true
	case 2:
		valid = kinds[0] == argSQL && kinds[1] != argSQL
	case 3:
		valid = kinds[0] == argSQL &&
			((kinds[1] == argValues || kinds[1] == argOptions) && kinds[2] == argCallback ||
				kinds[1] == argValues && kinds[2] == argOptions)
	case 4:
		valid = kinds[0] == argSQL && kinds[1] == argValues && kinds[2] == argCallback && kinds[3] == argOptions
	}
	if !valid {
		return resolved, fmt.Errorf("%w: invalid arguments for execute", core.ErrBuilder)
	}

	for _, arg := range args {
		switch a := arg.(type) {
		case string:
			resolved.sql = &a
		case []any:
			resolved.values = sql.ValuesOf(a)
			resolved.hasValues = true
		case []sql.Value:
			resolved.values = a
			resolved.hasValues = true
		case SuccessFunc:
			resolved.callback = a
		case func([]Row, []core.Column):
			resolved.callback = a
		case Options:
			resolved.options = &a
		case *Options:
			resolved.options = a
		}
	}
	return resolved, nil
}

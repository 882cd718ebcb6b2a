package db

import (
	"context"
	"fmt"
	"time"

	"github.com/nickyhof/CommitQuery/core"
)

// request carries one execution from dispatch to delivery. Worker code
// only touches the driver side fields.
type request struct {
	query   *Query
	sql     string
	started time.Time

	columns  []core.Column
	rows     []core.RawRow
	insertID int64
	err      error
	elapsed  time.Duration

	result *Result
}

func (req *request) fail(err error) {
	req.err = fmt.Errorf("%w: %w", core.ErrDriver, err)
}

// execute runs the statement and drains the cursor. It blocks and runs on
// a worker for asynchronous executions. A nil cursor without an error is
// taken as a statement that returned nothing and completes as a success
// with no rows rather than as an unknown error.
func (req *request) execute(ctx context.Context) {
	defer func() { req.elapsed = time.Since(req.started) }()

	cursor, err := req.query.connection.Execute(ctx, req.sql)
	if err != nil {
		req.fail(err)
		return
	}
	if cursor == nil {
		return
	}
	defer cursor.Close()

	req.columns = make([]core.Column, cursor.ColumnCount())
	for i := range req.columns {
		req.columns[i] = cursor.Column(i)
	}

	for cursor.HasNext() {
		row, err := cursor.Next()
		if err != nil {
			req.fail(err)
			return
		}
		req.rows = append(req.rows, row)
	}
	req.insertID = cursor.InsertID()

	if err := cursor.Close(); err != nil {
		req.fail(err)
	}
}

// Execute binds the accumulated statement and runs it. Arguments follow
// the positional forms
//
//	Execute(ctx)
//	Execute(ctx, sql | values | callback | options)
//	Execute(ctx, sql, callback | values | options)
//	Execute(ctx, sql, values | options, callback)
//	Execute(ctx, sql, values, options)
//	Execute(ctx, sql, values, callback, options)
//
// where sql replaces the statement text, values ([]any or []sql.Value)
// replace the bound values, callback is a SuccessFunc and options are
// merged into the query settings.
//
// Builder and binding errors are returned and nothing is notified. Driver
// errors are only delivered through the error notification. Asynchronous
// executions are delivered by the query's Coordinator.
func (query *Query) Execute(ctx context.Context, args ...any) error {
	_, err := query.run(ctx, args, false)
	return err
}

// Run executes synchronously regardless of the Async setting and returns
// the collected result. Notifications fire as for Execute. A driver error
// is returned as well as notified. A cancelled start hook yields a nil
// Result and a nil error.
func (query *Query) Run(ctx context.Context, args ...any) (*Result, error) {
	req, err := query.run(ctx, args, true)
	if err != nil || req == nil {
		return nil, err
	}
	return req.result, req.err
}

func (query *Query) run(ctx context.Context, args []any, collect bool) (*request, error) {
	if query.err != nil {
		return nil, query.err
	}

	resolved, err := resolveArgs(args)
	if err != nil {
		return nil, err
	}

	if !query.refs.CompareAndSwap(0, 1) {
		return nil, fmt.Errorf("%w: query already has an outstanding execution", core.ErrBusy)
	}

	if resolved.sql != nil {
		query.replace(*resolved.sql, false)
	}
	if resolved.hasValues {
		query.values = resolved.values
	}
	if resolved.callback != nil {
		query.settings.onSuccess = resolved.callback
	}
	if resolved.options != nil {
		query.settings.apply(*resolved.options)
	}

	text, err := query.binder.BindSegments(query.segments, query.values)
	if err != nil {
		query.refs.Add(-1)
		return nil, err
	}

	if query.settings.onStart != nil {
		replacement, proceed := query.settings.onStart(text)
		if !proceed {
			query.notifyFinish()
			query.refs.Add(-1)
			return nil, nil
		}
		if replacement != "" {
			text = replacement
		}
	}

	query.replace(text, true)
	query.values = nil

	for _, listener := range query.listeners {
		listener.OnStart(text)
	}

	req := &request{query: query, sql: text, started: time.Now()}
	if collect {
		req.result = &Result{SQL: text}
	}

	if query.settings.async && !collect && query.coordinator != nil {
		query.coordinator.dispatch(ctx, req)
		return req, nil
	}

	req.execute(ctx)
	query.finish(req)
	return req, nil
}

// finish casts the drained rows and emits the notifications of req. It
// runs on the coordinating goroutine.
func (query *Query) finish(req *request) {
	defer query.refs.Add(-1)

	var rows []Row
	if req.err == nil {
		rows = make([]Row, 0, len(req.rows))
		for _, raw := range req.rows {
			row, err := CastRow(raw, req.columns, query.settings.cast, query.settings.bufferText)
			if err != nil {
				req.err = err
				rows = nil
				break
			}
			rows = append(rows, row)
		}
	}

	if req.err == nil {
		for index, row := range rows {
			last := index == len(rows)-1
			for _, listener := range query.listeners {
				listener.OnRow(row, index, last)
			}
			if query.settings.onRow != nil {
				query.settings.onRow(row, index, last)
			}
		}
		for _, listener := range query.listeners {
			listener.OnSuccess(rows, req.columns)
		}
		if query.settings.onSuccess != nil {
			query.settings.onSuccess(rows, req.columns)
		}
	} else {
		for _, listener := range query.listeners {
			listener.OnError(req.err)
		}
		if query.settings.onError != nil {
			query.settings.onError(req.err)
		}
	}

	query.notifyFinish()

	if req.result != nil {
		req.result.Columns = req.columns
		req.result.Rows = rows
		req.result.InsertID = req.insertID
		req.result.ExecutionTimeSec = req.elapsed.Seconds()
	}

	if query.coordinator != nil {
		query.coordinator.record(Execution{
			SQL:      req.sql,
			Columns:  req.columns,
			Rows:     len(rows),
			InsertID: req.insertID,
			Err:      req.err,
			Started:  req.started,
			Duration: req.elapsed,
		})
	}
}

func (query *Query) notifyFinish() {
	for _, listener := range query.listeners {
		listener.OnFinish()
	}
	if query.settings.onFinish != nil {
		query.settings.onFinish()
	}
}

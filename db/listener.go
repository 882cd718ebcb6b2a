package db

import (
	"time"

	"github.com/nickyhof/CommitQuery/core"
)

// Listener receives the lifecycle notifications of every execution of a
// Query it is registered on.
type Listener interface {
	OnStart(sql string)
	OnRow(row Row, index int, last bool)
	OnSuccess(rows []Row, columns []core.Column)
	OnError(err error)
	OnFinish()
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Start   func(sql string)
	Row     func(row Row, index int, last bool)
	Success func(rows []Row, columns []core.Column)
	Error   func(err error)
	Finish  func()
}

func (l ListenerFuncs) OnStart(sql string) {
	if l.Start != nil {
		l.Start(sql)
	}
}

func (l ListenerFuncs) OnRow(row Row, index int, last bool) {
	if l.Row != nil {
		l.Row(row, index, last)
	}
}

func (l ListenerFuncs) OnSuccess(rows []Row, columns []core.Column) {
	if l.Success != nil {
		l.Success(rows, columns)
	}
}

func (l ListenerFuncs) OnError(err error) {
	if l.Error != nil {
		l.Error(err)
	}
}

func (l ListenerFuncs) OnFinish() {
	if l.Finish != nil {
		l.Finish()
	}
}

// On registers a listener for all following executions.
func (query *Query) On(listener Listener) *Query {
	query.listeners = append(query.listeners, listener)
	return query
}

// Execution summarizes one finished execution for recorders.
type Execution struct {
	SQL      string
	Columns  []core.Column
	Rows     int
	InsertID int64
	Err      error
	Started  time.Time
	Duration time.Duration
}

// Recorder is told about every execution that reached the connection,
// after its finish notification.
type Recorder interface {
	Record(execution Execution) error
}

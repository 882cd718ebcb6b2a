package CommitQuery

import (
	"context"
	"log"

	"github.com/nickyhof/CommitQuery/core"
	"github.com/nickyhof/CommitQuery/db"
	"github.com/nickyhof/CommitQuery/ps"
)

// Options configures an Instance.
type Options struct {
	// Workers bounds concurrent driver calls. Defaults to GOMAXPROCS.
	Workers int
	Logger  *log.Logger
	// Journal, when set, records every finished execution.
	Journal *ps.Journal
}

// Instance pairs one Connection with the Coordinator delivering its
// executions.
type Instance struct {
	Connection  core.Connection
	Coordinator *db.Coordinator
	Journal     *ps.Journal
}

// Open opens connection and prepares a coordinator for it.
func Open(ctx context.Context, connection core.Connection, options Options) (*Instance, error) {
	if err := connection.Open(ctx); err != nil {
		return nil, err
	}

	coordinatorOptions := db.CoordinatorOptions{
		Workers: options.Workers,
		Logger:  options.Logger,
	}
	if options.Journal != nil {
		coordinatorOptions.Recorders = append(coordinatorOptions.Recorders, options.Journal)
	}

	return &Instance{
		Connection:  connection,
		Coordinator: db.NewCoordinator(coordinatorOptions),
		Journal:     options.Journal,
	}, nil
}

// Query starts a new statement on the instance connection.
func (instance *Instance) Query() *db.Query {
	return db.NewQuery(instance.Connection, instance.Coordinator)
}

// Wait delivers the notifications of every outstanding execution on the
// calling goroutine.
func (instance *Instance) Wait(ctx context.Context) error {
	return instance.Coordinator.Wait(ctx)
}

func (instance *Instance) Close() error {
	return instance.Connection.Close()
}

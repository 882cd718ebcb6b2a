package db

import (
	"context"
	"log"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// CoordinatorOptions configures a Coordinator.
type CoordinatorOptions struct {
	// Workers bounds concurrent driver calls. Defaults to GOMAXPROCS.
	Workers int
	// Logger reports recorder failures. Nil discards them.
	Logger *log.Logger
	// Recorders are told about every finished execution.
	Recorders []Recorder
}

// Coordinator runs asynchronous executions on a bounded worker pool and
// hands their completions back to a single coordinating goroutine, the
// one calling Wait, Poll or Run. All casting and notifications happen
// there.
type Coordinator struct {
	workers     *semaphore.Weighted
	completed   chan *request
	outstanding atomic.Int64
	logger      *log.Logger

	mu        sync.RWMutex
	recorders []Recorder
}

func NewCoordinator(options CoordinatorOptions) *Coordinator {
	workers := options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Coordinator{
		workers:   semaphore.NewWeighted(int64(workers)),
		completed: make(chan *request),
		logger:    options.Logger,
		recorders: append([]Recorder(nil), options.Recorders...),
	}
}

// AddRecorder registers a recorder for executions finishing from now on.
func (c *Coordinator) AddRecorder(recorder Recorder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recorders = append(c.recorders, recorder)
}

// Pending returns the number of dispatched executions whose notifications
// have not been delivered yet.
func (c *Coordinator) Pending() int {
	return int(c.outstanding.Load())
}

func (c *Coordinator) dispatch(ctx context.Context, req *request) {
	c.outstanding.Add(1)
	go func() {
		if err := c.workers.Acquire(ctx, 1); err != nil {
			req.fail(err)
		} else {
			req.execute(ctx)
			c.workers.Release(1)
		}
		c.completed <- req
	}()
}

func (c *Coordinator) deliver(req *request) {
	defer c.outstanding.Add(-1)
	req.query.finish(req)
}

// Poll delivers every execution that has already completed without
// blocking and returns how many were delivered.
func (c *Coordinator) Poll() int {
	delivered := 0
	for {
		select {
		case req := <-c.completed:
			c.deliver(req)
			delivered++
		default:
			return delivered
		}
	}
}

// Wait delivers completions until no execution is outstanding, including
// executions started from within notifications. It returns early with the
// context error when ctx is done.
func (c *Coordinator) Wait(ctx context.Context) error {
	for c.outstanding.Load() > 0 {
		select {
		case req := <-c.completed:
			c.deliver(req)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Run delivers completions until ctx is done. It suits long lived hosts
// that submit executions from the coordinating goroutine's own callbacks
// or hand work to it through other channels.
func (c *Coordinator) Run(ctx context.Context) error {
	for {
		select {
		case req := <-c.completed:
			c.deliver(req)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Coordinator) record(execution Execution) {
	c.mu.RLock()
	recorders := c.recorders
	c.mu.RUnlock()

	for _, recorder := range recorders {
		if err := recorder.Record(execution); err != nil && c.logger != nil {
			c.logger.Printf("recorder failed for %q: %v", execution.SQL, err)
		}
	}
}

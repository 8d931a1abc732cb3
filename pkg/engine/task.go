// pkg/engine/task.go
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loggrid/corrector/pkg/dataset"
	"github.com/loggrid/corrector/pkg/model"
)

// TaskState represents the current state of a correction task
type TaskState string

const (
	TaskStatePending   TaskState = "pending"
	TaskStateRunning   TaskState = "running"
	TaskStateStopping  TaskState = "stopping"
	TaskStateCompleted TaskState = "completed"
	TaskStateFailed    TaskState = "failed"
)

// EventKind identifies the type of a task event
type EventKind string

const (
	EventProgress  EventKind = "progress"
	EventCompleted EventKind = "completed"
	EventFailed    EventKind = "failed"
)

// Event is a single notification emitted by a running task. A task
// emits zero or more progress events followed by exactly one terminal
// event, then closes its event channel.
type Event struct {
	Kind     EventKind
	Progress int
	Stats    *model.CorrectionStats
	Err      error
}

// Task executes one correction run off the caller's goroutine and
// reports its lifecycle through an event channel.
type Task struct {
	ID     uuid.UUID
	runner *Runner
	opts   RunOptions
	logger *zap.Logger

	stateLock sync.RWMutex
	state     TaskState

	// Sized for the worst case of one progress event per pass plus
	// the final progress and terminal events, so a slow consumer
	// never blocks the run.
	events chan Event
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTask creates a task for one correction run. The task does not
// execute until Start is called.
func NewTask(runner *Runner, opts RunOptions, logger *zap.Logger) (*Task, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	id := uuid.New()
	return &Task{
		ID:     id,
		runner: runner,
		opts:   opts,
		logger: logger.Named("task").With(zap.String("taskID", id.String())),
		state:  TaskStatePending,
		events: make(chan Event, MaxIterations+4),
		done:   make(chan struct{}),
	}, nil
}

// State returns the current task state
func (t *Task) State() TaskState {
	t.stateLock.RLock()
	defer t.stateLock.RUnlock()
	return t.state
}

// setState updates the task state
func (t *Task) setState(state TaskState) {
	t.stateLock.Lock()
	defer t.stateLock.Unlock()

	prevState := t.state
	t.state = state

	if prevState != state {
		t.logger.Info("Task state changed",
			zap.String("from", string(prevState)),
			zap.String("to", string(state)))
	}
}

// Events returns the channel of task events. The channel is closed
// after the terminal event is delivered.
func (t *Task) Events() <-chan Event {
	return t.events
}

// Done returns a channel that closes when the task finishes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Table returns the dataset the task operates on.
func (t *Task) Table() *dataset.Table {
	return t.runner.Table()
}

// Start launches the run on its own goroutine. A task can be started
// at most once.
func (t *Task) Start(ctx context.Context) error {
	t.stateLock.Lock()
	if t.state != TaskStatePending {
		state := t.state
		t.stateLock.Unlock()
		return fmt.Errorf("task already started (state %s)", state)
	}
	t.state = TaskStateRunning

	// Assigned under the state lock so a concurrent Stop never
	// observes a running task without its cancel.
	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.stateLock.Unlock()

	go t.run(runCtx)
	return nil
}

// Stop requests cancellation and waits for the task to finish. The
// run stops at the next pass boundary, so completed corrections stay
// applied and the terminal event still arrives.
func (t *Task) Stop() {
	t.stateLock.Lock()
	if t.state == TaskStatePending {
		t.state = TaskStateFailed
		close(t.events)
		close(t.done)
		t.stateLock.Unlock()
		return
	}
	if t.state == TaskStateRunning {
		t.state = TaskStateStopping
	}
	cancel := t.cancel
	t.stateLock.Unlock()

	if cancel != nil {
		cancel()
	}
	<-t.done
}

func (t *Task) run(ctx context.Context) {
	defer close(t.done)
	defer close(t.events)

	progress := func(percent int) {
		t.events <- Event{Kind: EventProgress, Progress: percent}
	}

	stats, err := t.runner.Run(ctx, t.opts, progress)
	t.runner.Metrics().Complete()

	if err != nil {
		t.setState(TaskStateFailed)
		t.logger.Error("Task failed", zap.Error(err))
		t.events <- Event{Kind: EventFailed, Err: err}
		return
	}

	t.setState(TaskStateCompleted)
	t.events <- Event{Kind: EventCompleted, Progress: 100, Stats: stats}
}

// Coordinator enforces at most one active correction task per
// dataset. Starting a run against a dataset tears down any task still
// running on it first.
type Coordinator struct {
	mu     sync.Mutex
	active map[*dataset.Table]*Task
	logger *zap.Logger
}

// NewCoordinator creates a coordinator
func NewCoordinator(logger *zap.Logger) *Coordinator {
	return &Coordinator{
		active: make(map[*dataset.Table]*Task),
		logger: logger.Named("coordinator"),
	}
}

// Start begins a new task for the runner's dataset, stopping any
// previous task on the same dataset.
func (c *Coordinator) Start(ctx context.Context, runner *Runner, opts RunOptions) (*Task, error) {
	task, err := NewTask(runner, opts, c.logger)
	if err != nil {
		return nil, err
	}

	table := runner.Table()

	// The lookup, teardown and registration happen under one lock so
	// concurrent Start calls for the same dataset cannot both observe
	// no previous task and leave two runs active. Stopping the
	// previous task while holding the lock is safe: its run goroutine
	// finishes without touching the coordinator.
	c.mu.Lock()
	defer c.mu.Unlock()

	if previous := c.active[table]; previous != nil {
		c.logger.Info("Stopping previous task for dataset",
			zap.String("taskID", previous.ID.String()))
		previous.Stop()
	}

	if err := task.Start(ctx); err != nil {
		return nil, err
	}
	c.active[table] = task

	go func() {
		<-task.Done()
		c.mu.Lock()
		if c.active[table] == task {
			delete(c.active, table)
		}
		c.mu.Unlock()
	}()

	return task, nil
}

// ActiveTask returns the task currently running on the dataset, if any.
func (c *Coordinator) ActiveTask(table *dataset.Table) (*Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	task, ok := c.active[table]
	return task, ok
}

// StopAll stops every active task and waits for each to finish.
func (c *Coordinator) StopAll() {
	c.mu.Lock()
	tasks := make([]*Task, 0, len(c.active))
	for _, task := range c.active {
		tasks = append(tasks, task)
	}
	c.mu.Unlock()

	for _, task := range tasks {
		task.Stop()
	}
}

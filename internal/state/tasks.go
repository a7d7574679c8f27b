package state

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"imgmeta/internal/log"
)

// Runner executes background work keyed by file identity. Starting a task
// for a key cancels the task already running for it.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	tasks    map[string]*task
	wg       sync.WaitGroup
	notifyMu sync.Mutex
	onChange func(running int)
}

type task struct {
	id     string
	cancel context.CancelFunc
}

// NewRunner returns a runner whose tasks are children of parent. onChange,
// when set, is called with the number of running tasks whenever it changes.
func NewRunner(parent context.Context, onChange func(running int)) *Runner {
	ctx, cancel := context.WithCancel(parent)
	return &Runner{
		ctx:      ctx,
		cancel:   cancel,
		tasks:    map[string]*task{},
		onChange: onChange,
	}
}

// Go runs fn in a new goroutine under key and returns the task id. A task
// already running under key is cancelled first; it is still awaited by
// Wait but its context reports cancellation.
func (r *Runner) Go(key string, fn func(ctx context.Context)) string {
	ctx, cancel := context.WithCancel(r.ctx)
	t := &task{id: uuid.NewString(), cancel: cancel}

	r.mu.Lock()
	if prev, ok := r.tasks[key]; ok {
		prev.cancel()
		log.LogWithFields(log.F("key", key), log.F("task", prev.id)).Debug("Superseded task")
	}
	r.tasks[key] = t
	r.wg.Add(1)
	r.mu.Unlock()
	r.notify()

	go func() {
		defer r.wg.Done()
		defer cancel()
		defer r.finish(key, t)

		log.LogWithFields(log.F("key", key), log.F("task", t.id)).Debug("Task started")
		fn(ctx)
	}()
	return t.id
}

func (r *Runner) finish(key string, t *task) {
	r.mu.Lock()
	if r.tasks[key] == t {
		delete(r.tasks, key)
	}
	r.mu.Unlock()
	r.notify()
}

// notify reads the count under notifyMu so the last delivered value is
// always the current one.
func (r *Runner) notify() {
	if r.onChange == nil {
		return
	}
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()
	r.onChange(r.Running())
}

// Cancel cancels the task running under key, if any.
func (r *Runner) Cancel(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[key]; ok {
		t.cancel()
	}
}

// Running returns the number of keys with a live task.
func (r *Runner) Running() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// Wait blocks until every started task has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Close cancels all tasks and waits for them.
func (r *Runner) Close() {
	r.cancel()
	r.wg.Wait()
}

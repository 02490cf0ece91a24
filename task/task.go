// Package task provides a single-shot result that a callback can complete
// and a caller can wait on.
package task

import (
	"context"
	"sync"
)

type Task[T any] struct {
	result T
	err    error

	once sync.Once
	ch   chan struct{}
}

func New[T any]() *Task[T] {
	return &Task[T]{ch: make(chan struct{})}
}

// Finish completes the task. Only the first call has any effect; it
// reports whether this call was the one that completed the task.
func (task *Task[T]) Finish(result T, err error) bool {
	finished := false
	task.once.Do(func() {
		task.result = result
		task.err = err
		close(task.ch)
		finished = true
	})
	return finished
}

// Wait blocks until the task finishes or ctx is done.
func (task *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-task.ch:
		return task.result, task.err
	case <-ctx.Done():
		var none T
		return none, ctx.Err()
	}
}

package task

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFinishOnce(t *testing.T) {
	task := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	if _, err := task.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("new task must not be done, got %v", err)
	}

	if !task.Finish(1, nil) {
		t.Error("first finish must complete the task")
	}
	if task.Finish(2, errors.New("late")) {
		t.Error("second finish must be ignored")
	}

	val, err := task.Wait(context.Background())
	if val != 1 || err != nil {
		t.Errorf("expected=1, got=%v (%v)", val, err)
	}
}

func TestWaitFromCallback(t *testing.T) {
	task := New[string]()
	go func() {
		time.Sleep(5 * time.Millisecond)
		task.Finish("frame", nil)
	}()

	val, err := task.Wait(context.Background())
	if err != nil || val != "frame" {
		t.Errorf("unexpected result %q %v", val, err)
	}
}

func TestWaitCancelled(t *testing.T) {
	task := New[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := task.Wait(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	if !task.Finish(1, nil) {
		t.Error("cancelled wait must not finish the task")
	}
}

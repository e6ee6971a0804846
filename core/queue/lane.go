package queue

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// lane owns a slice of the batch. Only its goroutine writes to it; the
// reporter reads it under mu.
type lane[T, R any] struct {
	id    int
	items []T

	mu        sync.Mutex
	processed int
	last      time.Duration
	elapsed   time.Duration
	average   time.Duration
	remaining time.Duration
	percent   int
	done      bool
	results   []R
	errors    []ItemError[T]
	logs      []string
}

func newLane[T, R any](id int, items []T) *lane[T, R] {
	return &lane[T, R]{id: id, items: items, done: len(items) == 0}
}

func (l *lane[T, R]) run(ctx context.Context, worker Worker[T, R], delay time.Duration, rep *reporter) error {
	defer rep.finished(l.id)

	for i, item := range l.items {
		if err := ctx.Err(); err != nil {
			l.finish()
			return err
		}
		if i > 0 && delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				l.finish()
				return ctx.Err()
			case <-t.C:
			}
		}

		start := time.Now()
		res, fx, err := call(ctx, worker, item)
		stop := l.record(item, res, fx, err, time.Since(start))
		if stop {
			break
		}
		rep.tick(l.id)
	}
	l.finish()
	return nil
}

// call runs the worker and turns a panic into an item error.
func call[T, R any](ctx context.Context, worker Worker[T, R], item T) (res R, fx Effects, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker panic: %v", r)
		}
	}()
	return worker(ctx, item)
}

func (l *lane[T, R]) record(item T, res R, fx Effects, err error, took time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		l.errors = append(l.errors, ItemError[T]{Item: item, Message: err.Error(), Err: err})
	} else {
		l.results = append(l.results, res)
	}
	l.logs = append(l.logs, fx.Logs...)

	l.processed++
	l.last = took
	l.elapsed += took
	l.average += (took - l.average) / time.Duration(l.processed)
	l.remaining = l.average * time.Duration(len(l.items)-l.processed)
	l.percent = l.processed * 100 / len(l.items)
	return fx.Stop
}

func (l *lane[T, R]) finish() {
	l.mu.Lock()
	l.done = true
	l.remaining = 0
	l.mu.Unlock()
}

// snapshot implements laneView.
func (l *lane[T, R]) snapshot() laneStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return laneStatus{
		id:        l.id,
		total:     len(l.items),
		processed: l.processed,
		elapsed:   l.elapsed,
		average:   l.average,
		remaining: l.remaining,
		percent:   l.percent,
		done:      l.done,
		errors:    len(l.errors),
	}
}

// Package queue runs a batch of items through a worker with bounded
// concurrency.
//
// Items are split up front into Concurrency lanes. Each lane is a goroutine
// that processes its items one at a time, in order, optionally pausing
// between items. Lanes track their own timing (elapsed, running average,
// projected remaining time) and a reporter prints one line per lane,
// redrawing in place on a terminal.
//
// When an attempt ends with item errors, the errors (and any worker logs)
// are written as artifacts and only the failed items are run again, up to
// Retry more times. Results and logs accumulate across attempts; Errors
// holds what was still failing after the last one.
//
// # Usage
//
//	out, err := queue.Run(ctx, "upload target", keys, func(ctx context.Context, key string) (int64, queue.Effects, error) {
//	    n, err := copyObject(ctx, key)
//	    return n, queue.Effects{}, err
//	}, queue.Options{Concurrency: 15, Retry: 2, Logger: log})
package queue

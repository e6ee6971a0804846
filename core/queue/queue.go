package queue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/carboneio/sclone/core/artifact"
	"github.com/carboneio/sclone/core/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Effects lets a worker steer its lane beyond returning a result.
type Effects struct {
	// Stop ends the lane after this item; its remaining items are skipped.
	Stop bool
	// Logs are appended to the lane's log accumulator.
	Logs []string
}

// Worker processes one item.
type Worker[T, R any] func(ctx context.Context, item T) (R, Effects, error)

// ItemError records an item whose worker call failed.
type ItemError[T any] struct {
	Item    T      `json:"element"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e ItemError[T]) Error() string { return e.Message }
func (e ItemError[T]) Unwrap() error { return e.Err }

// Status is the final state of a run.
type Status string

const (
	StatusCompleted  Status = "completed"
	StatusUnresolved Status = "completed_with_unresolved_errors"
)

// Options tunes a run. The zero value runs a single lane with no retry and
// no progress output.
type Options struct {
	Concurrency int
	Delay       time.Duration
	Retry       int
	// Progress prints per-lane status lines to Output (stdout by default).
	Progress bool
	Output   io.Writer
	// ArtifactDir receives the errors and logs artifacts. Empty disables them.
	ArtifactDir string
	Logger      *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if o.Retry < 0 {
		o.Retry = 0
	}
	if o.Output == nil {
		o.Output = os.Stdout
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Outcome aggregates every attempt of a run.
type Outcome[T, R any] struct {
	Name     string
	Results  []R
	Errors   []ItemError[T]
	Logs     []string
	Attempts int
	// Duration is the busiest lane's elapsed time summed over attempts.
	Duration time.Duration
}

func (o *Outcome[T, R]) Status() Status {
	if len(o.Errors) > 0 {
		return StatusUnresolved
	}
	return StatusCompleted
}

// FailedItems returns the items still failing after the last attempt.
func (o *Outcome[T, R]) FailedItems() []T {
	items := make([]T, len(o.Errors))
	for i, e := range o.Errors {
		items[i] = e.Item
	}
	return items
}

// Chunk splits items into n lanes. Lane i takes the ceiling of the remaining
// items divided by the remaining lanes, so concatenating the lanes in order
// gives back items. n below 1 is treated as 1.
func Chunk[T any](items []T, n int) [][]T {
	if n < 1 {
		n = 1
	}
	lanes := make([][]T, 0, n)
	rest := items
	for i := n; i > 0; i-- {
		size := (len(rest) + i - 1) / i
		lanes = append(lanes, rest[:size:size])
		rest = rest[size:]
	}
	return lanes
}

// Run processes items with worker and retries failed items. Item errors do
// not fail the run: they are reported in Outcome.Errors. The returned error
// is reserved for context cancellation and faults of the runner itself.
func Run[T, R any](ctx context.Context, name string, items []T, worker Worker[T, R], opts Options) (*Outcome[T, R], error) {
	if worker == nil {
		return nil, errors.New("queue: nil worker")
	}
	opts = opts.withDefaults()
	log := opts.Logger.With(zap.String("queue", name))
	out := &Outcome[T, R]{Name: name}

	pending := items
	for attempt := 0; ; attempt++ {
		out.Attempts = attempt + 1
		log.Info("queue started",
			zap.Int("items", len(pending)),
			zap.Int("lanes", opts.Concurrency),
			zap.Duration("delay", opts.Delay),
			zap.String("attempt", fmt.Sprintf("%d/%d", attempt, opts.Retry)),
		)

		res, err := runAttempt(ctx, pending, worker, opts)
		if res != nil {
			out.Results = append(out.Results, res.results...)
			out.Logs = append(out.Logs, res.logs...)
			out.Errors = res.errors
			out.Duration += res.duration
		}
		if err != nil {
			return out, fmt.Errorf("queue %s: %w", name, err)
		}

		if len(res.logs) > 0 {
			writeArtifact(log, opts.ArtifactDir, name, attemptKind(artifact.KindLogs, attempt), res.logs)
		}
		if len(res.errors) == 0 {
			log.Info("queue finished",
				zap.String("duration", utils.FormatDuration(res.duration)),
				zap.String("avg", utils.FormatDuration(res.average)),
				zap.Int("errors", 0),
				zap.Int("results", len(out.Results)),
				zap.Int("logs", len(out.Logs)),
			)
			return out, nil
		}

		log.Warn("queue attempt has errors", zap.Int("errors", len(res.errors)))
		writeArtifact(log, opts.ArtifactDir, name, attemptKind(artifact.KindErrors, attempt), res.errors)
		if attempt >= opts.Retry {
			log.Warn("queue stopped retrying, check the errors artifact",
				zap.Int("errors", len(res.errors)),
				zap.Int("results", len(out.Results)),
			)
			return out, nil
		}
		log.Info("retrying failed items", zap.Int("items", len(res.errors)))
		pending = out.FailedItems()
	}
}

// attemptKind keeps the artifacts of each retry apart.
func attemptKind(kind string, attempt int) string {
	if attempt == 0 {
		return kind
	}
	return fmt.Sprintf("%s-retry-%d", kind, attempt)
}

func writeArtifact(log *zap.Logger, dir, name, kind string, v any) {
	if dir == "" {
		return
	}
	path, err := artifact.Write(dir, name, kind, v)
	if err != nil {
		log.Error("failed to write artifact", zap.String("kind", kind), zap.Error(err))
		return
	}
	log.Info("artifact written", zap.String("kind", kind), zap.String("path", path))
}

type attemptResult[T, R any] struct {
	results  []R
	errors   []ItemError[T]
	logs     []string
	duration time.Duration
	average  time.Duration
}

func runAttempt[T, R any](ctx context.Context, items []T, worker Worker[T, R], opts Options) (*attemptResult[T, R], error) {
	chunks := Chunk(items, opts.Concurrency)
	lanes := make([]*lane[T, R], len(chunks))
	views := make([]laneView, len(chunks))
	for i, c := range chunks {
		lanes[i] = newLane[T, R](i, c)
		views[i] = lanes[i]
	}
	rep := newReporter(views, opts.Output, opts.Progress)
	rep.print()

	g, gctx := errgroup.WithContext(ctx)
	for _, l := range lanes {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("lane %d panic: %v", l.id, r)
				}
			}()
			return l.run(gctx, worker, opts.Delay, rep)
		})
	}
	err := g.Wait()

	res := &attemptResult[T, R]{}
	for _, l := range lanes {
		l.mu.Lock()
		res.results = append(res.results, l.results...)
		res.errors = append(res.errors, l.errors...)
		res.logs = append(res.logs, l.logs...)
		if l.elapsed >= res.duration {
			res.duration = l.elapsed
			res.average = l.average
		}
		l.mu.Unlock()
	}
	return res, err
}

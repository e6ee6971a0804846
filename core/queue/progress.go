package queue

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/carboneio/sclone/core/utils"

	"github.com/mattn/go-isatty"
)

type laneStatus struct {
	id        int
	total     int
	processed int
	elapsed   time.Duration
	average   time.Duration
	remaining time.Duration
	percent   int
	done      bool
	errors    int
}

type laneView interface {
	snapshot() laneStatus
}

// reporter prints one status line per lane. Lines are printed when the lane
// with the most projected work left (the trigger) advances, and when any
// lane finishes. Off a terminal only lane completions are printed.
type reporter struct {
	mu      sync.Mutex
	lanes   []laneView
	out     io.Writer
	enabled bool
	tty     bool
	printed bool
	trigger int
}

func newReporter(lanes []laneView, out io.Writer, enabled bool) *reporter {
	return &reporter{lanes: lanes, out: out, enabled: enabled && len(lanes) > 0, tty: isTerminal(out)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *reporter) tick(id int) {
	if !r.enabled || !r.tty {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == r.trigger {
		r.printLocked()
	}
}

func (r *reporter) finished(int) {
	if !r.enabled {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.printLocked()
}

func (r *reporter) print() {
	if !r.enabled {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.printLocked()
}

func (r *reporter) printLocked() {
	statuses := make([]laneStatus, len(r.lanes))
	for i, l := range r.lanes {
		statuses[i] = l.snapshot()
	}

	slowest := statuses[0]
	for _, s := range statuses[1:] {
		if s.remaining > slowest.remaining {
			slowest = s
		}
	}
	r.trigger = slowest.id

	var b strings.Builder
	if r.tty && r.printed {
		fmt.Fprintf(&b, "\033[%dA", len(statuses))
	}
	for _, s := range statuses {
		if r.tty {
			b.WriteString("\r\033[K")
		}
		b.WriteString(formatLane(s))
		b.WriteByte('\n')
	}
	_, _ = io.WriteString(r.out, b.String())
	r.printed = true
}

func formatLane(s laneStatus) string {
	line := fmt.Sprintf("[%d] %d%% - %d/%d - Passed time: %s | Left Time: %s | Avg time/exec: %s",
		s.id, s.percent, s.processed, s.total,
		utils.FormatDuration(s.elapsed),
		utils.FormatDuration(s.remaining),
		utils.FormatDuration(s.average),
	)
	if s.done {
		line += " | done"
	}
	if s.errors > 0 {
		line += fmt.Sprintf(" | %d errors", s.errors)
	}
	return line
}

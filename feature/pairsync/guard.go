package pairsync

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"
)

// runGuard allows a single cycle per process and, with a lock file, per host.
type runGuard struct {
	running atomic.Bool
	lock    *flock.Flock
}

func newRunGuard(lockFile string) *runGuard {
	g := &runGuard{}
	if lockFile != "" {
		g.lock = flock.New(lockFile)
	}
	return g
}

func (g *runGuard) acquire() error {
	if !g.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	if g.lock == nil {
		return nil
	}

	if dir := filepath.Dir(g.lock.Path()); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			g.running.Store(false)
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	locked, err := g.lock.TryLock()
	if err != nil {
		g.running.Store(false)
		return fmt.Errorf("failed to lock %s: %w", g.lock.Path(), err)
	}
	if !locked {
		g.running.Store(false)
		return ErrAlreadyRunning
	}
	return nil
}

func (g *runGuard) release() {
	if g.lock != nil && g.lock.Locked() {
		_ = g.lock.Unlock()
	}
	g.running.Store(false)
}

func (g *runGuard) busy() bool {
	return g.running.Load()
}

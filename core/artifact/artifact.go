package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Kinds of artifacts written during a cycle.
const (
	KindErrors = "errors"
	KindLogs   = "logs"
	KindPlan   = "plan"
)

const timeLayout = "2006-01-02T15-04-05.000"

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// now is swapped in tests.
var now = time.Now

// Slug lower-cases name and collapses every run of other characters into a dash.
func Slug(name string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "run"
	}
	return s
}

// Filename returns the artifact file name for name and kind at t.
func Filename(t time.Time, name, kind string) string {
	return fmt.Sprintf("%s-%s-%s.json", t.UTC().Format(timeLayout), Slug(name), kind)
}

// Write encodes v as JSON into dir and returns the file path. An existing
// artifact with the same name is never replaced: a counter is appended.
func Write(dir, name, kind string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s artifact: %w", kind, err)
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	path := freePath(filepath.Join(dir, Filename(now(), name, kind)))
	if err := WriteFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// writeMu serializes name selection so concurrent writers in this process
// cannot pick the same free path.
var writeMu sync.Mutex

func freePath(path string) string {
	base := strings.TrimSuffix(path, ".json")
	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = fmt.Sprintf("%s-%d.json", base, i)
	}
}

// WriteFileAtomic writes data next to path and renames it into place, so
// readers never observe a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}

	success = true
	return nil
}

// Prune removes artifacts in dir last modified more than olderThan ago and
// returns how many were removed. A missing directory is not an error.
func Prune(dir string, olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", dir, err)
	}

	cutoff := now().Add(-olderThan)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
				return removed, fmt.Errorf("remove %s: %w", e.Name(), err)
			}
			removed++
		}
	}
	return removed, nil
}

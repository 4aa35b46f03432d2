package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// NewJobDir allocates a unique working directory for one job under root.
func NewJobDir(root, prefix string) (string, error) {
	if root == "" {
		root = os.TempDir()
	}
	dir, err := os.MkdirTemp(root, prefix)
	if err != nil {
		return "", fmt.Errorf("create job dir: %w", err)
	}
	return dir, nil
}

// KeepAlive refreshes dir's modification time every interval until the returned
// stop func is called, so CleanStale in other workers never treats a job that
// outlives the stale threshold as abandoned. stop is safe to call more than once.
func KeepAlive(dir string, interval time.Duration) (stop func()) {
	if interval <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	var once sync.Once
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				now := time.Now()
				_ = os.Chtimes(dir, now, now)
			}
		}
	}()
	return func() { once.Do(func() { close(done) }) }
}

// CleanStale removes entries directly under root whose name starts with prefix and
// whose modification time is older than olderThan. Entries of concurrently running
// jobs are younger than the threshold and are left alone. It returns how many
// entries were removed; individual removal failures are joined into the error.
func CleanStale(root, prefix string, olderThan time.Duration, now time.Time) (int, error) {
	if prefix == "" {
		return 0, errors.New("refusing to clean temp dir without a prefix")
	}
	if root == "" {
		root = os.TempDir()
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, fmt.Errorf("read temp dir: %w", err)
	}

	cutoff := now.Add(-olderThan)
	removed := 0
	var errs []error
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if olderThan > 0 && info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

package file

import (
	"fmt"
	"os"
	"path/filepath"
)

// ArchiveCache moves the run state (checkpoint, name lists, extracted
// variants) into cache/cache_backup without touching results, so the next
// run starts from scratch while keeping everything for inspection.
func ArchiveCache(layout Layout) error {
	backupDir := filepath.Join(layout.CacheDir(), "cache_backup")
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup dir: %w", err)
	}

	entries, err := os.ReadDir(layout.CacheDir())
	if err != nil {
		return fmt.Errorf("failed to read cache dir: %w", err)
	}
	for _, e := range entries {
		if e.Name() == "cache_backup" {
			continue
		}
		src := filepath.Join(layout.CacheDir(), e.Name())
		dst := collisionFreePath(filepath.Join(backupDir, e.Name()))
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("failed to archive %s: %w", src, err)
		}
	}
	return nil
}

// ClearEverything destructively removes cache and results, then recreates
// the empty directories.
func ClearEverything(layout Layout) error {
	for _, d := range []string{layout.CacheDir(), layout.ResultsDir()} {
		if err := os.RemoveAll(d); err != nil {
			return fmt.Errorf("failed to remove %s: %w", d, err)
		}
	}
	return layout.Ensure()
}

package file

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dockflow/internal/store"
)

// Checkpoint key names. The file keeps the historical KEY=VALUE format, one
// key per line; unknown keys (older files carried comparison-phase indices)
// are ignored on load.
const (
	keyLigandIndex  = "LIGAND_INDEX"
	keyModelIndex   = "MODEL_INDEX"
	keyProteinIndex = "PROTEIN_INDEX"
)

// CheckpointStore persists the scoring cursor to a single text file.
type CheckpointStore struct {
	path string
	log  *slog.Logger
}

// NewCheckpointStore returns a checkpoint store writing to path.
func NewCheckpointStore(path string, log *slog.Logger) *CheckpointStore {
	return &CheckpointStore{path: path, log: log}
}

// Load reads the persisted checkpoint. A missing file yields the zero
// checkpoint. An unreadable or malformed file also yields the zero
// checkpoint with a warning: restarting from scratch redoes work but never
// fabricates progress.
func (s *CheckpointStore) Load() (store.Checkpoint, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return store.Checkpoint{}, nil
	}
	if err != nil {
		return store.Checkpoint{}, fmt.Errorf("failed to open checkpoint %s: %w", s.path, err)
	}
	defer f.Close()

	var cp store.Checkpoint
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			s.log.Warn("checkpoint corrupt, restarting from zero", "path", s.path, "line", line)
			return store.Checkpoint{}, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			s.log.Warn("checkpoint corrupt, restarting from zero", "path", s.path, "line", line)
			return store.Checkpoint{}, nil
		}
		switch strings.TrimSpace(key) {
		case keyLigandIndex:
			cp.Candidate = n
		case keyModelIndex:
			cp.Variant = n
		case keyProteinIndex:
			cp.Target = n
		}
	}
	if err := scanner.Err(); err != nil {
		return store.Checkpoint{}, fmt.Errorf("failed to read checkpoint %s: %w", s.path, err)
	}
	return cp, nil
}

// Save writes the checkpoint to a temp file in the same directory and renames
// it into place, so a crash mid-write leaves the previous value intact.
func (s *CheckpointStore) Save(cp store.Checkpoint) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".progress_cache-*")
	if err != nil {
		return fmt.Errorf("failed to create checkpoint temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	content := fmt.Sprintf("%s=%d\n%s=%d\n%s=%d\n",
		keyLigandIndex, cp.Candidate,
		keyModelIndex, cp.Variant,
		keyProteinIndex, cp.Target,
	)
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close checkpoint temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace checkpoint %s: %w", s.path, err)
	}
	return nil
}

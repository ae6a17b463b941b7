package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dockflow/internal/logger"
	"dockflow/internal/store"
)

func newTestCheckpointStore(t *testing.T) (*CheckpointStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "progress_cache.txt")
	return NewCheckpointStore(path, logger.New(false)), path
}

func TestCheckpoint_LoadMissingReturnsZero(t *testing.T) {
	s, _ := newTestCheckpointStore(t)

	cp, err := s.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cp != (store.Checkpoint{}) {
		t.Errorf("expected zero checkpoint, got %+v", cp)
	}
}

func TestCheckpoint_SaveLoadRoundTrip(t *testing.T) {
	s, _ := newTestCheckpointStore(t)

	want := store.Checkpoint{Candidate: 3, Variant: 1, Target: 7}
	if err := s.Save(want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestCheckpoint_SaveOverwrites(t *testing.T) {
	s, _ := newTestCheckpointStore(t)

	if err := s.Save(store.Checkpoint{Candidate: 1}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.Save(store.Checkpoint{Candidate: 2, Target: 5}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Candidate != 2 || got.Target != 5 {
		t.Errorf("expected latest save, got %+v", got)
	}
}

func TestCheckpoint_SaveLeavesNoTempFiles(t *testing.T) {
	s, path := newTestCheckpointStore(t)

	if err := s.Save(store.Checkpoint{Candidate: 1}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir failed: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".progress_cache-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestCheckpoint_CorruptFileRestartsFromZero(t *testing.T) {
	s, path := newTestCheckpointStore(t)

	corrupted := []string{
		"LIGAND_INDEX=not-a-number\n",
		"garbage with no separator\n",
		"LIGAND_INDEX=-1\n",
	}
	for _, content := range corrupted {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		cp, err := s.Load()
		if err != nil {
			t.Errorf("corrupt checkpoint should not error, got %v", err)
		}
		if cp != (store.Checkpoint{}) {
			t.Errorf("corrupt checkpoint %q should load as zero, got %+v", content, cp)
		}
	}
}

func TestCheckpoint_LegacyKeysIgnored(t *testing.T) {
	s, path := newTestCheckpointStore(t)

	// Older files also carried comparison-phase indices.
	content := "COMPARISON_LIGAND_INDEX=4\nCOMPARISON_PROTEIN_INDEX=2\nLIGAND_INDEX=1\nMODEL_INDEX=0\nPROTEIN_INDEX=3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cp, err := s.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	want := store.Checkpoint{Candidate: 1, Variant: 0, Target: 3}
	if cp != want {
		t.Errorf("expected %+v, got %+v", want, cp)
	}
}

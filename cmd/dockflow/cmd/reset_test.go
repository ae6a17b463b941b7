package cmd

import (
	"os"
	"testing"
)

func TestResetCommand_ArchivesCache(t *testing.T) {
	layout := seedWorkspace(t)
	if err := os.WriteFile(layout.ProgressFile(), []byte("LIGAND_INDEX=1\nMODEL_INDEX=0\nPROTEIN_INDEX=0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "reset", "--workdir", layout.WorkDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(layout.ProgressFile()); !os.IsNotExist(err) {
		t.Error("expected checkpoint to be archived away")
	}
	if _, err := os.Stat(layout.ScoresFile("t1")); err != nil {
		t.Errorf("expected results to survive a plain reset: %v", err)
	}
}

func TestResetCommand_Everything(t *testing.T) {
	layout := seedWorkspace(t)

	_, err := execute(t, "reset", "--workdir", layout.WorkDir, "--everything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(layout.ScoresFile("t1")); !os.IsNotExist(err) {
		t.Error("expected results to be removed with --everything")
	}
	if _, err := os.Stat(layout.CacheDir()); err != nil {
		t.Errorf("expected empty cache dir to be recreated: %v", err)
	}
}

// Package file implements the store interfaces on the local filesystem, using
// the plain-text formats the docking workspace has always used.
package file

import (
	"fmt"
	"os"
	"path/filepath"
)

// Layout maps the docking workspace directory structure.
type Layout struct {
	WorkDir string
}

// NewLayout returns the layout rooted at workDir.
func NewLayout(workDir string) Layout {
	return Layout{WorkDir: workDir}
}

func (l Layout) ProteinDir() string   { return filepath.Join(l.WorkDir, "proteins") }
func (l Layout) LigandDir() string    { return filepath.Join(l.WorkDir, "ligands") }
func (l Layout) ReferenceDir() string { return filepath.Join(l.WorkDir, "comparison_ligands") }
func (l Layout) CacheDir() string     { return filepath.Join(l.WorkDir, "cache") }
func (l Layout) ResultsDir() string   { return filepath.Join(l.WorkDir, "results") }
func (l Layout) TempDir() string      { return filepath.Join(l.ResultsDir(), "temp") }

// ProgressFile is the checkpoint record.
func (l Layout) ProgressFile() string {
	return filepath.Join(l.CacheDir(), "progress_cache.txt")
}

// ModelDir holds the extracted conformer variants for one candidate.
func (l Layout) ModelDir(candidate string) string {
	return filepath.Join(l.CacheDir(), "models_"+candidate)
}

// ScoresFile is the per-target append-only ledger.
func (l Layout) ScoresFile(target string) string {
	return filepath.Join(l.ResultsDir(), "scores_"+target+".txt")
}

// TopDockersFile is the per-target sorted view of the ledger.
func (l Layout) TopDockersFile(target string) string {
	return filepath.Join(l.ResultsDir(), "top_dockers_"+target+".txt")
}

// BestLigandsFile holds the unsorted aggregate entries.
func (l Layout) BestLigandsFile() string {
	return filepath.Join(l.ResultsDir(), "best_ligands.txt")
}

// RankedBestLigandsFile holds the final ascending ranking.
func (l Layout) RankedBestLigandsFile() string {
	return filepath.Join(l.ResultsDir(), "ranked_best_ligands.txt")
}

// PoseFile names the docked output for one job, and LogFile its engine log.
// model is the conformer's 1-based number, matching the extracted variant
// file it was docked from.
func (l Layout) PoseFile(ligand string, model int, target string) string {
	return filepath.Join(l.TempDir(), fmt.Sprintf("%s_model%d_vs_%s.pdbqt", ligand, model, target))
}

func (l Layout) LogFile(ligand string, model int, target string) string {
	return filepath.Join(l.TempDir(), fmt.Sprintf("%s_model%d_vs_%s.log", ligand, model, target))
}

// Ensure creates every directory the run writes into.
func (l Layout) Ensure() error {
	dirs := []string{
		l.ProteinDir(), l.LigandDir(), l.ReferenceDir(),
		l.CacheDir(), l.ResultsDir(), l.TempDir(),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", d, err)
		}
	}
	return nil
}

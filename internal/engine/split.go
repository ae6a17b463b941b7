package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Expander materializes a candidate's conformer variants. Files containing
// MODEL records are split with vina_split into one file per conformer, a
// single-pose file becomes its own only variant. Extraction is memoized by
// directory content, so a repeat call is a cheap existence check.
type Expander struct {
	cacheDir string
	splitBin string
	log      *slog.Logger
}

// NewExpander returns an expander writing under cacheDir.
func NewExpander(cacheDir, splitBin string, log *slog.Logger) *Expander {
	return &Expander{cacheDir: cacheDir, splitBin: splitBin, log: log}
}

// Expand returns the ordered variant files for the candidate, extracting
// them on first use.
func (e *Expander) Expand(ctx context.Context, name, path string) ([]string, error) {
	dir := filepath.Join(e.cacheDir, "models_"+name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create model dir: %w", err)
	}

	pattern := filepath.Join(dir, name+"_model_*.pdbqt")
	if matches, err := filepath.Glob(pattern); err == nil && len(matches) > 0 {
		e.log.Debug("variants already extracted", "candidate", name, "count", len(matches))
		return sortModelFiles(matches), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read candidate %s: %w", path, err)
	}

	if bytes.Contains(data, []byte("MODEL")) {
		prefix := filepath.Join(dir, name+"_model_")
		cmd := exec.CommandContext(ctx, e.splitBin, "--input", path, "--ligand", prefix)
		out, err := cmd.CombinedOutput()
		if err != nil {
			return nil, fmt.Errorf("failed to split %s: %w: %s", path, err, strings.TrimSpace(string(out)))
		}
	} else {
		if err := copyFile(path, filepath.Join(dir, name+"_model_1.pdbqt")); err != nil {
			return nil, err
		}
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan model dir: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no variants produced for %s", name)
	}
	return sortModelFiles(matches), nil
}

// sortModelFiles orders variant files by their numeric suffix so the
// enumeration order is stable regardless of digit width.
func sortModelFiles(files []string) []string {
	sort.Slice(files, func(i, j int) bool {
		ni, oki := modelNumber(files[i])
		nj, okj := modelNumber(files[j])
		if oki && okj && ni != nj {
			return ni < nj
		}
		return files[i] < files[j]
	})
	return files
}

func modelNumber(path string) (int, bool) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	idx := strings.LastIndex(stem, "_")
	if idx < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(stem[idx+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return nil
}

// Package library loads the three input collections for a docking run:
// subject candidates, reference candidates and target receptors. Identity is
// the filename stem and every collection is ordered lexicographically, which
// fixes the enumeration order that checkpointing depends on.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrEmptyCollection indicates that an input directory holds no structures.
// The driver treats this as fatal before any work starts.
var ErrEmptyCollection = errors.New("no structure files found")

// Molecule is one candidate structure file.
type Molecule struct {
	Name string // filename stem, unique within its collection
	Path string
}

// Target is one receptor structure file.
type Target struct {
	Name string
	Path string
}

// Library holds the loaded input collections. Roles are fixed at load time:
// Candidates are ranked, References are the comparison baseline.
type Library struct {
	Candidates []Molecule
	References []Molecule
	Targets    []Target
}

// Load reads the three collections from their directories under workDir and
// writes the name lists into cacheDir for inspection.
func Load(proteinDir, ligandDir, referenceDir, cacheDir string) (*Library, error) {
	targets, err := listStructures(proteinDir)
	if err != nil {
		return nil, err
	}
	ligands, err := listStructures(ligandDir)
	if err != nil {
		return nil, err
	}
	references, err := listStructures(referenceDir)
	if err != nil {
		return nil, err
	}

	lib := &Library{}
	for _, p := range ligands {
		lib.Candidates = append(lib.Candidates, Molecule{Name: Stem(p), Path: p})
	}
	for _, p := range references {
		lib.References = append(lib.References, Molecule{Name: Stem(p), Path: p})
	}
	for _, p := range targets {
		lib.Targets = append(lib.Targets, Target{Name: Stem(p), Path: p})
	}

	if cacheDir != "" {
		if err := writeNameList(filepath.Join(cacheDir, "proteinNames.txt"), targets); err != nil {
			return nil, err
		}
		if err := writeNameList(filepath.Join(cacheDir, "ligandNames.txt"), ligands); err != nil {
			return nil, err
		}
		if err := writeNameList(filepath.Join(cacheDir, "comparisonLigandNames.txt"), references); err != nil {
			return nil, err
		}
	}

	return lib, nil
}

// Stem returns the filename without its directory or extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// listStructures returns the sorted .pdbqt files in dir.
func listStructures(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.pdbqt"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrEmptyCollection, dir)
	}
	sort.Strings(matches)
	return matches, nil
}

func writeNameList(path string, entries []string) error {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write name list %s: %w", path, err)
	}
	return nil
}

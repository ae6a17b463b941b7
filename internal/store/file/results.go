package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"dockflow/internal/store"
)

// WriteTopDockers writes the sorted (ascending, best first) view of one
// target's ledger.
func WriteTopDockers(ledger store.Ledger, layout Layout, target string) error {
	records, err := ledger.ReadAll(target)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score < records[j].Score
		}
		return records[i].Candidate < records[j].Candidate
	})

	var b strings.Builder
	for _, r := range records {
		b.WriteString(strconv.FormatFloat(r.Score, 'f', -1, 64))
		b.WriteByte(' ')
		b.WriteString(r.Candidate)
		b.WriteByte('\n')
	}
	path := layout.TopDockersFile(target)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteRanking writes the aggregate entries twice: best_ligands.txt in the
// order given, ranked_best_ligands.txt ascending by score.
func WriteRanking(layout Layout, entries []store.RankingEntry) error {
	if err := writeEntries(layout.BestLigandsFile(), entries); err != nil {
		return err
	}
	ranked := make([]store.RankingEntry, len(entries))
	copy(ranked, entries)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score < ranked[j].Score
		}
		return ranked[i].Candidate < ranked[j].Candidate
	})
	return writeEntries(layout.RankedBestLigandsFile(), ranked)
}

func writeEntries(path string, entries []store.RankingEntry) error {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%.8f %s\n", e.Score, e.Candidate)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadRanking loads a ranking file written by WriteRanking.
func ReadRanking(path string) ([]store.RankingEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ranking %s: %w", path, err)
	}
	var entries []store.RankingEntry
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		score, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}
		entries = append(entries, store.RankingEntry{Score: score, Candidate: fields[1]})
	}
	return entries, nil
}

// MoveTempFiles moves every finished pose and log out of results/temp into
// the results directory, renaming collisions with a _copyN suffix instead of
// overwriting earlier runs.
func MoveTempFiles(layout Layout) error {
	entries, err := os.ReadDir(layout.TempDir())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read temp dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		src := filepath.Join(layout.TempDir(), e.Name())
		dst := collisionFreePath(filepath.Join(layout.ResultsDir(), e.Name()))
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("failed to move %s: %w", src, err)
		}
	}
	return nil
}

// collisionFreePath returns path, or path with a _copyN suffix if it exists.
func collisionFreePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_copy%d%s", stem, n, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

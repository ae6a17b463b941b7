package file

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"dockflow/internal/store"
)

// Ledger stores scores as per-target text files of "score candidate" lines.
// Appends go through O_APPEND under a mutex, so concurrent scoring workers
// in one process never interleave partial lines.
type Ledger struct {
	layout Layout
	mu     sync.Mutex
}

// NewLedger returns a ledger rooted at the layout's results directory.
func NewLedger(layout Layout) *Ledger {
	return &Ledger{layout: layout}
}

// Append records one score. The ledger is append-only by design: reruns after
// a crash may produce duplicate records for the same pair, and readers take
// the minimum.
func (l *Ledger) Append(target, candidate string, score float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	path := l.layout.ScoresFile(target)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open ledger %s: %w", path, err)
	}
	defer f.Close()

	line := strconv.FormatFloat(score, 'f', -1, 64) + " " + candidate + "\n"
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to append to ledger %s: %w", path, err)
	}
	return nil
}

// ReadAll returns every record for the target. Malformed lines are skipped,
// not failed on: the ledger outlives engine versions and hand edits.
func (l *Ledger) ReadAll(target string) ([]store.ScoreRecord, error) {
	path := l.layout.ScoresFile(target)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %s: %w", path, err)
	}
	defer f.Close()

	var records []store.ScoreRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		score, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}
		records = append(records, store.ScoreRecord{
			Target:    target,
			Candidate: fields[1],
			Score:     score,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger %s: %w", path, err)
	}
	return records, nil
}

// BestScore returns the minimum score recorded for the pair.
func (l *Ledger) BestScore(candidate, target string) (float64, bool, error) {
	records, err := l.ReadAll(target)
	if err != nil {
		return 0, false, err
	}
	best := 0.0
	found := false
	for _, r := range records {
		if r.Candidate != candidate {
			continue
		}
		if !found || r.Score < best {
			best = r.Score
			found = true
		}
	}
	return best, found, nil
}

// Has reports whether the pair has at least one record.
func (l *Ledger) Has(target, candidate string) (bool, error) {
	records, err := l.ReadAll(target)
	if err != nil {
		return false, err
	}
	for _, r := range records {
		if r.Candidate == candidate {
			return true, nil
		}
	}
	return false, nil
}

// Targets lists every target with a ledger file.
func (l *Ledger) Targets() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(l.layout.ResultsDir(), "scores_*.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledgers: %w", err)
	}
	var targets []string
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), ".txt")
		targets = append(targets, strings.TrimPrefix(base, "scores_"))
	}
	sort.Strings(targets)
	return targets, nil
}

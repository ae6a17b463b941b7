// Package ranking turns raw per-pair docking scores into a cross-target
// aggregate ranking. Every subject candidate is measured by how closely its
// best score at each target tracks the reference candidates' scores there,
// then the per-target deviations are combined into one number per candidate.
package ranking

import (
	"math"
	"sort"

	"dockflow/internal/store"
)

// BestScoreFunc returns the best (minimum) recorded score for a
// (candidate, target) pair, or false when the pair has no records. Ranking
// is a pure function of this view: write order in the ledger never matters.
type BestScoreFunc func(candidate, target string) (float64, bool)

// BestScores snapshots the ledger's minimum score per (candidate, target)
// pair into a BestScoreFunc. Taking the snapshot first keeps the ranking a
// pure function of the ledger's content rather than its write order.
func BestScores(ledger store.Ledger, targets []string) (BestScoreFunc, error) {
	byTarget := make(map[string]map[string]float64, len(targets))
	for _, target := range targets {
		records, err := ledger.ReadAll(target)
		if err != nil {
			return nil, err
		}
		m := make(map[string]float64, len(records))
		for _, r := range records {
			if existing, ok := m[r.Candidate]; !ok || r.Score < existing {
				m[r.Candidate] = r.Score
			}
		}
		byTarget[target] = m
	}
	return func(candidate, target string) (float64, bool) {
		score, ok := byTarget[target][candidate]
		return score, ok
	}, nil
}

// Rank computes the aggregate ranking for the subject candidates,
// most favorable first.
//
// Per candidate and target, the deviation is the root mean square of the
// score differences to every reference with a score at that target. Targets
// without a candidate score or without reference scores contribute nothing.
// The per-target deviations combine as sqrt(N / sum(1/dev^2)): a harmonic
// style mean that rewards consistently low deviation across all targets
// rather than one lucky outlier. A deviation of exactly zero anywhere is an
// immediate strongly-favorable signal and short-circuits the candidate to
// the minimal aggregate instead of dividing by zero.
//
// Candidates with no contributing target are excluded entirely. Ties break
// by candidate name for determinism.
func Rank(subjects, references []string, targets []string, best BestScoreFunc) []store.RankingEntry {
	var entries []store.RankingEntry
	for _, candidate := range subjects {
		entry, ok := aggregate(candidate, references, targets, best)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score < entries[j].Score
		}
		return entries[i].Candidate < entries[j].Candidate
	})
	return entries
}

func aggregate(candidate string, references, targets []string, best BestScoreFunc) (store.RankingEntry, bool) {
	contributing := 0
	invSquareSum := 0.0
	exact := false

	for _, target := range targets {
		dev, ok := deviation(candidate, target, references, best)
		if !ok {
			continue
		}
		contributing++
		if dev == 0 {
			exact = true
			continue
		}
		invSquareSum += 1 / (dev * dev)
	}

	if contributing == 0 {
		return store.RankingEntry{}, false
	}
	entry := store.RankingEntry{Candidate: candidate, Targets: contributing}
	if exact {
		// Matching a reference exactly at any target dominates everything
		// else the candidate did.
		entry.Score = 0
		return entry, true
	}
	entry.Score = math.Sqrt(float64(contributing) / invSquareSum)
	return entry, true
}

// deviation is the RMS score-space distance from the candidate's best score
// at the target to all reference scores there.
func deviation(candidate, target string, references []string, best BestScoreFunc) (float64, bool) {
	s, ok := best(candidate, target)
	if !ok {
		return 0, false
	}
	sumSquares := 0.0
	n := 0
	for _, ref := range references {
		r, ok := best(ref, target)
		if !ok {
			continue
		}
		d := s - r
		sumSquares += d * d
		n++
	}
	if n == 0 {
		return 0, false
	}
	return math.Sqrt(sumSquares / float64(n)), true
}

package ranking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dockflow/internal/store/file"
)

// scoreTable adapts a map keyed by "candidate/target" to a BestScoreFunc.
type scoreTable map[string]float64

func (s scoreTable) best(candidate, target string) (float64, bool) {
	v, ok := s[candidate+"/"+target]
	return v, ok
}

func TestRank_ReferenceScenario(t *testing.T) {
	// 2 subjects A, B; 1 reference R; 2 targets. B matches the reference
	// exactly at both targets and must rank first.
	scores := scoreTable{
		"A/T1": -5, "A/T2": -7,
		"B/T1": -6, "B/T2": -6,
		"R/T1": -6, "R/T2": -6,
	}

	entries := Rank([]string{"A", "B"}, []string{"R"}, []string{"T1", "T2"}, scores.best)
	require.Len(t, entries, 2)

	assert.Equal(t, "B", entries[0].Candidate)
	assert.Equal(t, 0.0, entries[0].Score)
	assert.Equal(t, 2, entries[0].Targets)

	assert.Equal(t, "A", entries[1].Candidate)
	// Deviation 1 at both targets: sqrt(2 / (1 + 1)) = 1.
	assert.InDelta(t, 1.0, entries[1].Score, 1e-9)
	assert.Equal(t, 2, entries[1].Targets)
}

func TestRank_ZeroDeviationShortCircuits(t *testing.T) {
	// C matches the reference at T1 but is far off at T2; the exact match
	// still wins over D's uniformly small deviations.
	scores := scoreTable{
		"C/T1": -6, "C/T2": -1,
		"D/T1": -5.9, "D/T2": -5.9,
		"R/T1": -6, "R/T2": -6,
	}

	entries := Rank([]string{"C", "D"}, []string{"R"}, []string{"T1", "T2"}, scores.best)
	require.Len(t, entries, 2)
	assert.Equal(t, "C", entries[0].Candidate)
	assert.Equal(t, 0.0, entries[0].Score)
}

func TestRank_CandidateWithNoScoresExcluded(t *testing.T) {
	scores := scoreTable{
		"A/T1": -5,
		"R/T1": -6,
	}

	entries := Rank([]string{"A", "ghost"}, []string{"R"}, []string{"T1"}, scores.best)
	require.Len(t, entries, 1)
	assert.Equal(t, "A", entries[0].Candidate)
}

func TestRank_TargetWithoutReferenceScoresSkipped(t *testing.T) {
	scores := scoreTable{
		"A/T1": -5, "A/T2": -9,
		"R/T1": -6, // reference never docked against T2
	}

	entries := Rank([]string{"A"}, []string{"R"}, []string{"T1", "T2"}, scores.best)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Targets)
	assert.InDelta(t, 1.0, entries[0].Score, 1e-9)
}

func TestRank_MultipleReferencesCombined(t *testing.T) {
	// Deviation is RMS over all references: sqrt((1^2 + 3^2)/2).
	scores := scoreTable{
		"A/T1":  -5,
		"R1/T1": -6,
		"R2/T1": -8,
	}

	entries := Rank([]string{"A"}, []string{"R1", "R2"}, []string{"T1"}, scores.best)
	require.Len(t, entries, 1)
	assert.InDelta(t, math.Sqrt(5), entries[0].Score, 1e-9)
}

func TestRank_HarmonicAggregateFavorsConsistency(t *testing.T) {
	// E is consistently close (dev 1 at both targets); F is very close at
	// one target and far at the other. Both must be beaten by consistency
	// unless the close deviation corroborates.
	scores := scoreTable{
		"E/T1": -5, "E/T2": -5,
		"F/T1": -5.9, "F/T2": -1,
		"R/T1": -6, "R/T2": -6,
	}

	entries := Rank([]string{"E", "F"}, []string{"R"}, []string{"T1", "T2"}, scores.best)
	require.Len(t, entries, 2)

	// E: dev 1,1 -> sqrt(2/2) = 1.
	// F: dev 0.1, 5 -> sqrt(2/(100 + 0.04)) ~= 0.1414.
	// The near-zero deviation dominates the denominator, so F ranks first,
	// but its aggregate is far from 0.1: the weak target drags it up.
	assert.Equal(t, "F", entries[0].Candidate)
	assert.Greater(t, entries[0].Score, 0.1)
	assert.Equal(t, "E", entries[1].Candidate)
	assert.InDelta(t, 1.0, entries[1].Score, 1e-9)
}

func TestRank_OrderIndependentOfInputOrder(t *testing.T) {
	scores := scoreTable{
		"A/T1": -5, "B/T1": -7,
		"R1/T1": -6, "R2/T1": -6.5,
	}

	forward := Rank([]string{"A", "B"}, []string{"R1", "R2"}, []string{"T1"}, scores.best)
	reversed := Rank([]string{"B", "A"}, []string{"R2", "R1"}, []string{"T1"}, scores.best)
	assert.Equal(t, forward, reversed)
}

func TestRank_TiesBreakByName(t *testing.T) {
	scores := scoreTable{
		"zeta/T1": -5, "alpha/T1": -7,
		"R/T1": -6,
	}

	// Both deviate by exactly 1.
	entries := Rank([]string{"zeta", "alpha"}, []string{"R"}, []string{"T1"}, scores.best)
	require.Len(t, entries, 2)
	assert.Equal(t, "alpha", entries[0].Candidate)
	assert.Equal(t, "zeta", entries[1].Candidate)
}

func TestRank_EmptySubjects(t *testing.T) {
	entries := Rank(nil, []string{"R"}, []string{"T1"}, scoreTable{}.best)
	assert.Empty(t, entries)
}

func TestBestScores_SnapshotsLedgerMinimum(t *testing.T) {
	layout := file.NewLayout(t.TempDir())
	require.NoError(t, layout.Ensure())
	ledger := file.NewLedger(layout)

	// Duplicate records for the same pair: only the minimum survives.
	require.NoError(t, ledger.Append("T1", "A", -5.0))
	require.NoError(t, ledger.Append("T1", "A", -6.5))
	require.NoError(t, ledger.Append("T1", "A", -4.0))
	require.NoError(t, ledger.Append("T2", "B", -7.0))

	best, err := BestScores(ledger, []string{"T1", "T2"})
	require.NoError(t, err)

	score, ok := best("A", "T1")
	require.True(t, ok)
	assert.Equal(t, -6.5, score)

	_, ok = best("A", "T2")
	assert.False(t, ok, "pair without records must report absent")
	_, ok = best("B", "T1")
	assert.False(t, ok)

	score, ok = best("B", "T2")
	require.True(t, ok)
	assert.Equal(t, -7.0, score)
}

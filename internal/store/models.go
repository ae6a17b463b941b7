// Package store contains the persistence layer for docking runs.
package store

import "dockflow/internal/jobspace"

// Checkpoint is the persisted "next job to attempt" pointer. It advances
// monotonically in the canonical job order over the life of a run.
type Checkpoint = jobspace.Cursor

// ScoreRecord is one completed docking result. Records are append-only and
// duplicate-tolerant: a crash between the ledger write and the checkpoint
// advance makes the replayed job re-emit its record.
type ScoreRecord struct {
	Target    string
	Candidate string
	Score     float64
}

// RankingEntry is one candidate's cross-target aggregate. Smaller is better.
type RankingEntry struct {
	Candidate string
	Score     float64
	Targets   int // number of targets that contributed a deviation
}

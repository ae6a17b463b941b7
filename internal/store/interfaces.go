package store

// CheckpointStore is the durable record of scoring progress. Save is called
// after every completed job, never batched, so at most one job is redone
// after an interruption.
type CheckpointStore interface {
	// Load returns the persisted checkpoint, or the zero checkpoint when
	// none exists or the persisted one is unreadable.
	Load() (Checkpoint, error)

	// Save atomically replaces the persisted checkpoint. A crash during
	// Save must leave either the previous or the new value on disk.
	Save(cp Checkpoint) error
}

// Ledger is the append-only per-target score store. Append must be safe
// under concurrent writers; record order within a target carries no meaning.
type Ledger interface {
	// Append records one completed job's score.
	Append(target, candidate string, score float64) error

	// ReadAll returns every record for the target, skipping malformed lines.
	ReadAll(target string) ([]ScoreRecord, error)

	// BestScore returns the minimum (most favorable) score recorded for the
	// pair, and false when the pair has no records.
	BestScore(candidate, target string) (float64, bool, error)

	// Has reports whether any record exists for the pair.
	Has(target, candidate string) (bool, error)

	// Targets returns the targets that have at least one record.
	Targets() ([]string, error)
}

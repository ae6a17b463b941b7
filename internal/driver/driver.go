// Package driver composes the docking pipeline: it enumerates the job space
// in canonical order, skips work the checkpoint already covers, invokes the
// scoring engine, records results in the ledger and finally triggers ranking.
//
// The run moves through the phases Initializing, Comparison, Scoring,
// Ranking, Done. An interrupt during Comparison or Scoring saves the
// checkpoint synchronously before Run returns.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"dockflow/internal/engine"
	"dockflow/internal/library"
	"dockflow/internal/observability"
	"dockflow/internal/ranking"
	"dockflow/internal/store"
	"dockflow/internal/store/file"
)

// Phase is the driver's state machine position.
type Phase string

const (
	PhaseInitializing Phase = "initializing"
	PhaseComparison   Phase = "comparison"
	PhaseScoring      Phase = "scoring"
	PhaseRanking      Phase = "ranking"
	PhaseDone         Phase = "done"
)

// Engine scores one (variant, target) pair. Implemented by engine.Vina and
// by test fakes.
type Engine interface {
	Score(ctx context.Context, req engine.Request) (float64, error)
}

// Expander materializes a candidate's variant files on first use.
type Expander interface {
	Expand(ctx context.Context, name, path string) ([]string, error)
}

// Config holds the driver's runtime knobs.
type Config struct {
	// Parallel is the number of concurrent scoring workers; 1 runs the
	// strictly sequential pipeline.
	Parallel int
}

// Driver owns one run of the pipeline. It holds the only mutable reference
// to the scoring cursor.
type Driver struct {
	lib         *library.Library
	layout      file.Layout
	checkpoints store.CheckpointStore
	ledger      store.Ledger
	engine      Engine
	expander    Expander
	metrics     *observability.JobMetrics
	cfg         Config
	log         *slog.Logger

	phase Phase
	eta   *etaTracker
}

// New assembles a driver. metrics may be nil.
func New(
	lib *library.Library,
	layout file.Layout,
	checkpoints store.CheckpointStore,
	ledger store.Ledger,
	eng Engine,
	expander Expander,
	metrics *observability.JobMetrics,
	cfg Config,
	log *slog.Logger,
) *Driver {
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	return &Driver{
		lib:         lib,
		layout:      layout,
		checkpoints: checkpoints,
		ledger:      ledger,
		engine:      eng,
		expander:    expander,
		metrics:     metrics,
		cfg:         cfg,
		log:         log,
		phase:       PhaseInitializing,
		eta:         &etaTracker{},
	}
}

// Phase returns the driver's current phase.
func (d *Driver) Phase() Phase { return d.phase }

// Run executes the pipeline to completion and returns the final ranking,
// most favorable candidate first. On interruption it saves the checkpoint
// and returns the context's error; a rerun resumes where this one stopped.
func (d *Driver) Run(ctx context.Context) ([]store.RankingEntry, error) {
	if len(d.lib.Candidates) == 0 || len(d.lib.References) == 0 || len(d.lib.Targets) == 0 {
		return nil, fmt.Errorf("%w: all three input collections must be non-empty", library.ErrEmptyCollection)
	}

	cp, err := d.checkpoints.Load()
	if err != nil {
		return nil, err
	}
	if cp != (store.Checkpoint{}) {
		d.log.Info("resuming from checkpoint",
			"candidate_index", cp.Candidate, "variant_index", cp.Variant, "target_index", cp.Target)
	}

	d.phase = PhaseComparison
	if err := d.runComparison(ctx, cp); err != nil {
		return nil, err
	}

	d.phase = PhaseScoring
	if d.cfg.Parallel > 1 {
		cp, err = d.runScoringParallel(ctx, cp)
	} else {
		cp, err = d.runScoringSequential(ctx, cp)
	}
	if err != nil {
		return nil, err
	}
	if !cp.Done(len(d.lib.Candidates)) {
		return nil, fmt.Errorf("scoring ended with incomplete checkpoint %+v", cp)
	}

	d.phase = PhaseRanking
	entries, err := d.runRanking()
	if err != nil {
		return nil, err
	}

	d.phase = PhaseDone
	return entries, nil
}

// runComparison docks every reference against every target. This phase is
// never checkpointed: it reruns on every invocation, skipping pairs that
// already have a ledger record. An interrupt saves the scoring cursor so
// the next run keeps its place in the scoring phase.
func (d *Driver) runComparison(ctx context.Context, cp store.Checkpoint) error {
	for _, ref := range d.lib.References {
		for _, tgt := range d.lib.Targets {
			if err := ctx.Err(); err != nil {
				if saveErr := d.checkpoints.Save(cp); saveErr != nil {
					d.log.Error("failed to save checkpoint on interrupt", "error", saveErr)
				}
				return err
			}
			done, err := d.ledger.Has(tgt.Name, ref.Name)
			if err != nil {
				return err
			}
			if done {
				d.log.Debug("reference already docked", "reference", ref.Name, "target", tgt.Name)
				continue
			}
			d.runJob(ctx, ref, ref.Path, 0, tgt)
		}
	}
	return nil
}

// runScoringSequential iterates the job space from the checkpoint, one job
// at a time: score, append to ledger, then advance and save the checkpoint.
// That write order is the crash-safety invariant: dying between the two
// redoes at most one job and at worst duplicates one ledger record.
func (d *Driver) runScoringSequential(ctx context.Context, cur store.Checkpoint) (store.Checkpoint, error) {
	nTargets := len(d.lib.Targets)
	for !cur.Done(len(d.lib.Candidates)) {
		cand := d.lib.Candidates[cur.Candidate]
		variants, err := d.expander.Expand(ctx, cand.Name, cand.Path)
		if err != nil {
			return cur, fmt.Errorf("failed to expand candidate %s: %w", cand.Name, err)
		}

		// A shrunken input set can leave the loaded checkpoint pointing
		// past a level's end; the level is treated as complete.
		next, clamped := cur.ClampVariant(len(variants))
		if !clamped {
			next, clamped = cur.ClampTarget(len(variants), nTargets)
		}
		if clamped {
			d.log.Warn("checkpoint out of range, treating level as complete",
				"candidate", cand.Name, "from", cur, "to", next)
			cur = next
			if err := d.checkpoints.Save(cur); err != nil {
				return cur, err
			}
			continue
		}

		if err := ctx.Err(); err != nil {
			if saveErr := d.checkpoints.Save(cur); saveErr != nil {
				d.log.Error("failed to save checkpoint on interrupt", "error", saveErr)
			}
			return cur, err
		}

		ok := d.runJob(ctx, cand, variants[cur.Variant], cur.Variant, d.lib.Targets[cur.Target])
		if !ok {
			if err := ctx.Err(); err != nil {
				// Cancellation killed the engine mid-call. The job has no
				// ledger record, so the cursor must stay on it for replay.
				if saveErr := d.checkpoints.Save(cur); saveErr != nil {
					d.log.Error("failed to save checkpoint on interrupt", "error", saveErr)
				}
				return cur, err
			}
		}

		cur = cur.Next(len(variants), nTargets)
		if err := d.checkpoints.Save(cur); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

// runJob performs one docking call and records its outcome, reporting
// whether a ledger record was written. Per-job failures are logged and
// counted, never fatal: the batch continues. Callers distinguish a genuine
// engine failure from one caused by cancellation, because only the former
// may advance the checkpoint.
func (d *Driver) runJob(ctx context.Context, mol library.Molecule, variantPath string, variantIdx int, tgt library.Target) bool {
	tracer := otel.Tracer("dockflow-driver")
	jobCtx, span := tracer.Start(ctx, "dock_job",
		trace.WithAttributes(
			attribute.String("candidate", mol.Name),
			attribute.Int("variant", variantIdx),
			attribute.String("target", tgt.Name),
		),
	)
	defer span.End()

	// Output names carry the conformer's own 1-based number, matching the
	// extracted variant files.
	model := variantIdx + 1
	req := engine.Request{
		Receptor: tgt.Path,
		Ligand:   variantPath,
		PoseFile: d.layout.PoseFile(mol.Name, model, tgt.Name),
		LogFile:  d.layout.LogFile(mol.Name, model, tgt.Name),
	}

	started := time.Now()
	score, err := d.engine.Score(jobCtx, req)
	elapsed := time.Since(started)
	d.eta.Observe(elapsed)

	if err != nil {
		span.RecordError(err)
		d.metrics.Record(jobCtx, "failed", elapsed.Seconds())
		d.log.Error("docking job failed",
			"candidate", mol.Name, "variant", variantIdx, "target", tgt.Name,
			"duration", elapsed, "error", err)
		return false
	}

	if appendErr := d.ledger.Append(tgt.Name, mol.Name, score); appendErr != nil {
		span.RecordError(appendErr)
		d.metrics.Record(jobCtx, "failed", elapsed.Seconds())
		d.log.Error("failed to record score", "candidate", mol.Name, "target", tgt.Name, "error", appendErr)
		return false
	}

	d.metrics.Record(jobCtx, "succeeded", elapsed.Seconds())
	d.log.Info("docking job complete",
		"candidate", mol.Name, "variant", variantIdx, "target", tgt.Name,
		"score", score, "duration", elapsed, "avg_job_duration", d.eta.Average())
	return true
}

// runRanking recomputes the ranking wholly from the ledger, writes the
// result files and the per-target sorted views, and tidies the temp dir.
func (d *Driver) runRanking() ([]store.RankingEntry, error) {
	subjects := make([]string, len(d.lib.Candidates))
	for i, c := range d.lib.Candidates {
		subjects[i] = c.Name
	}
	references := make([]string, len(d.lib.References))
	for i, r := range d.lib.References {
		references[i] = r.Name
	}
	targets := make([]string, len(d.lib.Targets))
	for i, t := range d.lib.Targets {
		targets[i] = t.Name
	}

	best, err := ranking.BestScores(d.ledger, targets)
	if err != nil {
		return nil, err
	}
	entries := ranking.Rank(subjects, references, targets, best)

	if err := file.MoveTempFiles(d.layout); err != nil {
		return nil, err
	}
	for _, tgt := range d.lib.Targets {
		if err := file.WriteTopDockers(d.ledger, d.layout, tgt.Name); err != nil {
			return nil, err
		}
	}
	if err := file.WriteRanking(d.layout, entries); err != nil {
		return nil, err
	}

	d.log.Info("ranking complete", "ranked", len(entries), "excluded", len(subjects)-len(entries))
	return entries, nil
}

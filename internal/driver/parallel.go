package driver

import (
	"context"
	"sync"

	"dockflow/internal/jobspace"
	"dockflow/internal/library"
	"dockflow/internal/store"
)

// scheduledJob is one unit handed to a scoring worker. next is the cursor
// following this job in canonical order, used for watermark advancement.
type scheduledJob struct {
	seq         int
	cursor      jobspace.Cursor
	next        jobspace.Cursor
	candidate   library.Molecule
	variantPath string
	target      library.Target
}

// runScoringParallel runs the scoring phase with cfg.Parallel workers.
// Jobs are produced lazily in canonical order; workers complete them in any
// order and the checkpoint only ever advances along the contiguous
// completed prefix.
func (d *Driver) runScoringParallel(ctx context.Context, start store.Checkpoint) (store.Checkpoint, error) {
	jobs := make(chan scheduledJob)
	wm := newWatermark()
	last := start

	var saveMu sync.Mutex
	var saveErr error
	save := func(cur jobspace.Cursor) {
		saveMu.Lock()
		defer saveMu.Unlock()
		last = cur
		if err := d.checkpoints.Save(cur); err != nil && saveErr == nil {
			saveErr = err
			d.log.Error("failed to save checkpoint", "error", err)
		}
	}

	prodErr := make(chan error, 1)
	go func() {
		defer close(jobs)
		prodErr <- d.produceJobs(ctx, start, jobs)
	}()

	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Parallel; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					return
				}
				ok := d.runJob(ctx, job.candidate, job.variantPath, job.cursor.Variant, job.target)
				if !ok && ctx.Err() != nil {
					// Cancellation killed the engine mid-call. Leaving the
					// watermark short of this job forces its replay on
					// resume.
					return
				}
				wm.complete(job.seq, job.next, save)
			}
		}()
	}
	wg.Wait()

	if err := <-prodErr; err != nil && err != context.Canceled && ctx.Err() == nil {
		return last, err
	}
	if err := ctx.Err(); err != nil {
		// Workers stopped mid-space; the watermark already persisted the
		// resume point of the contiguous prefix.
		return last, err
	}
	saveMu.Lock()
	defer saveMu.Unlock()
	return last, saveErr
}

// produceJobs walks the job space from start, expanding each candidate once
// and applying the same stale-checkpoint clamping as the sequential path.
// Clamp skips persist immediately so a crash before any job completes still
// lands on a valid cursor.
func (d *Driver) produceJobs(ctx context.Context, start store.Checkpoint, out chan<- scheduledJob) error {
	cur := start
	nTargets := len(d.lib.Targets)
	seq := 0
	for !cur.Done(len(d.lib.Candidates)) {
		cand := d.lib.Candidates[cur.Candidate]
		variants, err := d.expander.Expand(ctx, cand.Name, cand.Path)
		if err != nil {
			return err
		}

		next, clamped := cur.ClampVariant(len(variants))
		if !clamped {
			next, clamped = cur.ClampTarget(len(variants), nTargets)
		}
		if clamped {
			d.log.Warn("checkpoint out of range, treating level as complete",
				"candidate", cand.Name, "from", cur, "to", next)
			cur = next
			if seq == 0 {
				if err := d.checkpoints.Save(cur); err != nil {
					return err
				}
			}
			continue
		}

		job := scheduledJob{
			seq:         seq,
			cursor:      cur,
			next:        cur.Next(len(variants), nTargets),
			candidate:   cand,
			variantPath: variants[cur.Variant],
			target:      d.lib.Targets[cur.Target],
		}
		select {
		case out <- job:
		case <-ctx.Done():
			return ctx.Err()
		}
		seq++
		cur = job.next
	}
	return nil
}

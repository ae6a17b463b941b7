// Package jobspace defines the three-dimensional docking job space and its
// canonical visiting order: candidate, then conformer variant, then target.
// The order is a pure function of the input collection order, so two runs over
// the same collections always enumerate jobs identically. That contract is
// what checkpoint resumption relies on.
package jobspace

// Cursor identifies the next job to attempt as a triple of collection
// indices. The zero value is the start of the job space.
type Cursor struct {
	Candidate int
	Variant   int
	Target    int
}

// Before reports whether c orders strictly before o in the canonical order.
func (c Cursor) Before(o Cursor) bool {
	if c.Candidate != o.Candidate {
		return c.Candidate < o.Candidate
	}
	if c.Variant != o.Variant {
		return c.Variant < o.Variant
	}
	return c.Target < o.Target
}

// Next returns the cursor after c given the current candidate's variant count
// and the target count. Rolling past the last target advances the variant,
// rolling past the last variant advances the candidate and resets the inner
// levels to zero.
func (c Cursor) Next(variantCount, targetCount int) Cursor {
	c.Target++
	if c.Target < targetCount {
		return c
	}
	c.Target = 0
	c.Variant++
	if c.Variant < variantCount {
		return c
	}
	c.Variant = 0
	c.Candidate++
	return c
}

// Done reports whether the cursor is past the end of the outer collection.
func (c Cursor) Done(candidateCount int) bool {
	return c.Candidate >= candidateCount
}

// ClampVariant resets the variant and target levels when a stale checkpoint
// points past the current candidate's variant list. A shrunken input set makes
// resumption best-effort: an out-of-range level is treated as complete and the
// next level up advances.
func (c Cursor) ClampVariant(variantCount int) (Cursor, bool) {
	if c.Variant < variantCount {
		return c, false
	}
	c.Variant = 0
	c.Target = 0
	c.Candidate++
	return c, true
}

// ClampTarget is the target-level analogue of ClampVariant.
func (c Cursor) ClampTarget(variantCount, targetCount int) (Cursor, bool) {
	if c.Target < targetCount {
		return c, false
	}
	c.Target = 0
	c.Variant++
	if c.Variant >= variantCount {
		c.Variant = 0
		c.Candidate++
	}
	return c, true
}

// Job is one scheduled (candidate, variant, target) triple together with its
// position in the canonical order.
type Job struct {
	Cursor Cursor
	Seq    int
}

// Enumerate materializes the full ordered job sequence for the given variant
// counts (one entry per candidate) and target count. The driver iterates
// lazily instead, but tests and the parallel scheduler use this to reason
// about the canonical order.
func Enumerate(variantCounts []int, targetCount int) []Job {
	var jobs []Job
	seq := 0
	for ci, vc := range variantCounts {
		for vi := 0; vi < vc; vi++ {
			for ti := 0; ti < targetCount; ti++ {
				jobs = append(jobs, Job{
					Cursor: Cursor{Candidate: ci, Variant: vi, Target: ti},
					Seq:    seq,
				})
				seq++
			}
		}
	}
	return jobs
}

// Total returns the size of the job space for the given variant counts.
func Total(variantCounts []int, targetCount int) int {
	total := 0
	for _, vc := range variantCounts {
		total += vc * targetCount
	}
	return total
}

package driver

import (
	"sync"

	"dockflow/internal/jobspace"
)

// watermark tracks out-of-order job completions and yields the cursor after
// the highest contiguous completed prefix. Persisting only that watermark
// keeps the superset guarantee under parallel workers: a resumed run may
// redo jobs that finished ahead of a gap, never skip unfinished ones.
type watermark struct {
	mu      sync.Mutex
	nextSeq int
	pending map[int]jobspace.Cursor
}

func newWatermark() *watermark {
	return &watermark{pending: map[int]jobspace.Cursor{}}
}

// complete records that the job at seq finished, with next being the cursor
// that follows it in canonical order. It returns the advanced watermark
// cursor and whether it moved. fn, when non-nil, runs inside the critical
// section so concurrent checkpoint saves cannot regress.
func (w *watermark) complete(seq int, next jobspace.Cursor, fn func(jobspace.Cursor)) (jobspace.Cursor, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[seq] = next
	var last jobspace.Cursor
	advanced := false
	for {
		cur, ok := w.pending[w.nextSeq]
		if !ok {
			break
		}
		delete(w.pending, w.nextSeq)
		w.nextSeq++
		last = cur
		advanced = true
	}
	if advanced && fn != nil {
		fn(last)
	}
	return last, advanced
}

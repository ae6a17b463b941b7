package driver

import (
	"sync"
	"time"
)

const etaWindow = 10

// etaTracker keeps a rolling window of recent job durations for the
// avg_job_duration field in progress logs.
type etaTracker struct {
	mu   sync.Mutex
	durs [etaWindow]time.Duration
	n    int
	idx  int
}

func (t *etaTracker) Observe(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.durs[t.idx] = d
	t.idx = (t.idx + 1) % etaWindow
	if t.n < etaWindow {
		t.n++
	}
}

// Average returns the mean of the window, zero before any observation.
func (t *etaTracker) Average() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.n == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < t.n; i++ {
		sum += t.durs[i]
	}
	return sum / time.Duration(t.n)
}

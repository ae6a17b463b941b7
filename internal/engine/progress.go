package engine

import (
	"bytes"
	"context"
	"os"
	"time"
)

// WatchProgress polls the live engine log and reports percent complete.
// The engine prints one '*' per two percent of its search; counting them is
// the same heuristic the log viewer always used. Reports fire only when the
// percentage changes, at most once per interval, and stop when ctx ends.
func WatchProgress(ctx context.Context, logPath string, interval time.Duration, report func(pct int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := -1
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			data, err := os.ReadFile(logPath)
			if err != nil {
				continue
			}
			pct := bytes.Count(data, []byte("*")) * 2
			if pct > 100 {
				pct = 100
			}
			if pct != last {
				last = pct
				report(pct)
			}
			if pct >= 100 {
				return
			}
		}
	}
}

// Package engine wraps the external docking engine behind a single scoring
// contract: two structure files and a search box in, one scalar score or a
// typed failure out.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"dockflow/internal/engine/runtime"
)

// ErrNoScore indicates the engine finished but its output contained no
// parseable first-pose score line.
var ErrNoScore = errors.New("no first-pose score in engine output")

// EngineError indicates the engine process itself failed, carrying its
// diagnostic output.
type EngineError struct {
	ExitCode int
	Output   string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine failed with exit code %d: %s", e.ExitCode, e.Output)
}

// Request identifies one scoring invocation.
type Request struct {
	Receptor string
	Ligand   string
	PoseFile string
	LogFile  string
}

// Vina invokes an AutoDock-Vina-compatible engine through a Runtime and
// normalizes its output into a scalar score.
type Vina struct {
	rt             runtime.Runtime
	bin            string
	boxes          *BoxSource
	exhaustiveness int
	cpu            int
	progressEvery  time.Duration
	log            *slog.Logger
}

// VinaConfig configures the adapter.
type VinaConfig struct {
	Bin            string
	Exhaustiveness int // passed through when > 0
	CPU            int // engine worker-thread hint per job, not per process
	ProgressEvery  time.Duration
}

// NewVina returns an adapter running cfg.Bin through rt. Boxes are derived
// per receptor via boxes and cached there.
func NewVina(rt runtime.Runtime, boxes *BoxSource, cfg VinaConfig, log *slog.Logger) *Vina {
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 5 * time.Second
	}
	return &Vina{
		rt:             rt,
		bin:            cfg.Bin,
		boxes:          boxes,
		exhaustiveness: cfg.Exhaustiveness,
		cpu:            cfg.CPU,
		progressEvery:  cfg.ProgressEvery,
		log:            log,
	}
}

// Score runs one docking call to completion and returns the first reported
// pose's score. The engine call blocks and has no timeout; a hung engine
// blocks its worker until the run is interrupted.
func (v *Vina) Score(ctx context.Context, req Request) (float64, error) {
	box, err := v.boxes.Get(req.Receptor)
	if err != nil {
		return 0, err
	}

	args := []string{
		v.bin,
		"--receptor", req.Receptor,
		"--ligand", req.Ligand,
		"--center_x", formatCoord(box.CenterX),
		"--center_y", formatCoord(box.CenterY),
		"--center_z", formatCoord(box.CenterZ),
		"--size_x", formatCoord(box.SizeX),
		"--size_y", formatCoord(box.SizeY),
		"--size_z", formatCoord(box.SizeZ),
		"--out", req.PoseFile,
	}
	if v.cpu > 0 {
		args = append(args, "--cpu", strconv.Itoa(v.cpu))
	}
	if v.exhaustiveness > 0 {
		args = append(args, "--exhaustiveness", strconv.Itoa(v.exhaustiveness))
	}

	handle, err := v.rt.Start(ctx, runtime.StartOptions{
		Command: args,
		LogPath: req.LogFile,
	})
	if err != nil {
		return 0, &EngineError{ExitCode: -1, Output: err.Error()}
	}

	// Best-effort progress side channel; correctness never depends on it.
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	go WatchProgress(watchCtx, req.LogFile, v.progressEvery, func(pct int) {
		v.log.Debug("docking progress", "ligand", req.Ligand, "percent", pct)
	})

	result, err := handle.Wait(ctx)
	cancelWatch()
	if err != nil {
		return 0, &EngineError{ExitCode: result.ExitCode, Output: err.Error()}
	}
	if result.ExitCode != 0 {
		return 0, &EngineError{ExitCode: result.ExitCode, Output: readLogTail(req.LogFile)}
	}

	f, err := os.Open(req.LogFile)
	if err != nil {
		return 0, &EngineError{ExitCode: result.ExitCode, Output: "engine produced no output log"}
	}
	defer f.Close()
	return ParseScore(f)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// readLogTail returns up to the last 2 KiB of the engine log for diagnostics.
func readLogTail(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	const tail = 2048
	if len(data) > tail {
		data = data[len(data)-tail:]
	}
	return string(data)
}

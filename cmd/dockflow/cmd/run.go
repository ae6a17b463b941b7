package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dockflow/internal/config"
	"dockflow/internal/driver"
	"dockflow/internal/engine"
	"dockflow/internal/engine/runtime"
	"dockflow/internal/library"
	"dockflow/internal/logger"
	"dockflow/internal/observability"
	"dockflow/internal/store/file"
)

var runParallel int

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run or resume a docking campaign",
	Long: `Run executes the full campaign: references against every target first,
then every candidate conformer against every target, then the ranking.
Progress is checkpointed after each job; rerunning the same command resumes
from the last completed job.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("parallel") {
			cfg.Parallel = runParallel
		}

		log := logger.New(debug)
		runID := uuid.NewString()
		ctx := logger.WithRunID(cmd.Context(), runID)
		log = logger.FromContext(ctx, log)

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		layout := file.NewLayout(cfg.WorkDir)
		if err := layout.Ensure(); err != nil {
			return err
		}

		if cfg.OTELEndpoint != "" {
			shutdownTracer, err := observability.InitTracer(ctx, "dockflow", cfg.OTELEndpoint)
			if err != nil {
				return fmt.Errorf("failed to init tracing: %w", err)
			}
			defer func() {
				if err := shutdownTracer(context.Background()); err != nil {
					log.Warn("failed to shut down tracer", "error", err)
				}
			}()
		}

		metrics, err := startMetrics(cfg, log)
		if err != nil {
			return err
		}
		defer metrics.shutdown(log)

		lib, err := library.Load(layout.ProteinDir(), layout.LigandDir(), layout.ReferenceDir(), layout.CacheDir())
		if err != nil {
			return err
		}
		log.Info("library loaded", "targets", len(lib.Targets), "candidates", len(lib.Candidates), "references", len(lib.References))

		rt, err := selectRuntime(cfg, layout, log)
		if err != nil {
			return err
		}

		boxes := engine.NewBoxSource(engine.BoxConfig{
			Mode:   cfg.BoxMode,
			Size:   cfg.BoxSize,
			Buffer: cfg.BoxBuffer,
		})
		eng := engine.NewVina(rt, boxes, engine.VinaConfig{
			Bin:            cfg.VinaPath,
			Exhaustiveness: cfg.Exhaustiveness,
			CPU:            cfg.CPUPerJob,
			ProgressEvery:  cfg.ProgressInterval,
		}, log)
		expander := engine.NewExpander(layout.CacheDir(), cfg.VinaSplitPath, log)

		drv := driver.New(
			lib,
			layout,
			file.NewCheckpointStore(layout.ProgressFile(), log),
			file.NewLedger(layout),
			eng,
			expander,
			metrics.jobs,
			driver.Config{Parallel: cfg.Parallel},
			log,
		)

		entries, err := drv.Run(ctx)
		if errors.Is(err, context.Canceled) {
			cmd.Println("Run interrupted. Progress saved; rerun to resume.")
			return nil
		}
		if err != nil {
			return err
		}

		cmd.Println("Campaign complete. Best candidates:")
		printTop(cmd, entries, cfg.TopN)
		return nil
	},
}

// selectRuntime picks how the engine binary is executed.
func selectRuntime(cfg *config.Config, layout file.Layout, log *slog.Logger) (runtime.Runtime, error) {
	switch cfg.Runtime {
	case "docker":
		rt, err := runtime.NewDockerRuntime(cfg.DockerImage)
		if err != nil {
			return nil, fmt.Errorf("failed to create docker runtime: %w", err)
		}
		log.Info("using docker runtime", "image", cfg.DockerImage)
		return rt, nil
	default:
		log.Info("using exec runtime", "workdir", layout.TempDir())
		return runtime.NewExecRuntime(layout.TempDir()), nil
	}
}

// metricsServer bundles the optional Prometheus endpoint with the job
// instruments the driver records into.
type metricsServer struct {
	jobs         *observability.JobMetrics
	shutdownFunc func(context.Context) error
}

func startMetrics(cfg *config.Config, log *slog.Logger) (*metricsServer, error) {
	if cfg.MetricsPort <= 0 {
		return &metricsServer{}, nil
	}
	handler, shutdown, err := observability.InitMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}
	jobs, err := observability.NewJobMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to create job metrics: %w", err)
	}
	addr := fmt.Sprintf(":%d", cfg.MetricsPort)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", handler)
		log.Info("metrics listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Warn("metrics server stopped", "error", err)
		}
	}()
	return &metricsServer{jobs: jobs, shutdownFunc: shutdown}, nil
}

func (m *metricsServer) shutdown(log *slog.Logger) {
	if m.shutdownFunc == nil {
		return
	}
	if err := m.shutdownFunc(context.Background()); err != nil {
		log.Warn("failed to shut down metrics", "error", err)
	}
}

func init() {
	runCmd.Flags().IntVarP(&runParallel, "parallel", "p", 0, "concurrent docking jobs (default from config)")
	rootCmd.AddCommand(runCmd)
}

package cmd

import (
	"github.com/spf13/cobra"

	"dockflow/internal/config"
)

var (
	cfgFile string
	workDir string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "dockflow",
	Short: "Dockflow runs resumable batch molecular docking campaigns",
	Long: `dockflow automates large AutoDock-Vina-compatible docking campaigns.

A campaign docks every candidate ligand conformer against every target
receptor, records each score in an append-only ledger, and checkpoints after
every job so an interrupted run resumes exactly where it stopped. Reference
ligands are docked first and the final ranking orders candidates by how
closely their binding profile matches the references across all targets.

Workspace layout (under --workdir):

  proteins/             target receptors (.pdbqt)
  ligands/              candidate ligands (.pdbqt)
  comparison_ligands/   reference ligands (.pdbqt)
  cache/                checkpoint and extracted conformers
  results/              score ledgers, poses, rankings

Common workflows:

  Run (or resume) a campaign:
    dockflow run --workdir ./campaign

  Recompute the ranking without docking:
    dockflow rank --workdir ./campaign

  Show the best candidates:
    dockflow top --workdir ./campaign -n 10

  Copy the best poses into one directory:
    dockflow collect --workdir ./campaign --out ./hits

  Start over, keeping a backup of the old checkpoint state:
    dockflow reset --workdir ./campaign

Configuration:
  Every flag can also come from a YAML config file (--config) or from
  DOCKFLOW_* environment variables, e.g. DOCKFLOW_VINA_PATH, DOCKFLOW_PARALLEL.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves configuration from file, environment and the flags
// that override both.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if workDir != "" {
		cfg.WorkDir = workDir
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringVarP(&workDir, "workdir", "w", "", "docking workspace directory (default ./dock)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

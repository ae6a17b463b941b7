package cmd

import (
	"github.com/spf13/cobra"

	"dockflow/internal/library"
	"dockflow/internal/logger"
	"dockflow/internal/ranking"
	"dockflow/internal/store"
	"dockflow/internal/store/file"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Recompute the ranking from recorded scores without docking",
	Long: `Rank rebuilds the comparative ranking purely from the score ledgers in
results/. No docking jobs run. Use it after editing the reference set or to
regenerate the ranking files from an old campaign's ledgers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.New(debug)

		layout := file.NewLayout(cfg.WorkDir)
		lib, err := library.Load(layout.ProteinDir(), layout.LigandDir(), layout.ReferenceDir(), "")
		if err != nil {
			return err
		}
		ledger := file.NewLedger(layout)

		subjects := make([]string, len(lib.Candidates))
		for i, c := range lib.Candidates {
			subjects[i] = c.Name
		}
		references := make([]string, len(lib.References))
		for i, r := range lib.References {
			references[i] = r.Name
		}
		targets := make([]string, len(lib.Targets))
		for i, t := range lib.Targets {
			targets[i] = t.Name
		}

		best, err := ranking.BestScores(ledger, targets)
		if err != nil {
			return err
		}
		entries := ranking.Rank(subjects, references, targets, best)
		if err := file.WriteRanking(layout, entries); err != nil {
			return err
		}
		for _, tgt := range lib.Targets {
			if err := file.WriteTopDockers(ledger, layout, tgt.Name); err != nil {
				return err
			}
		}

		log.Info("ranking rebuilt", "ranked", len(entries), "candidates", len(subjects))
		printTop(cmd, entries, cfg.TopN)
		return nil
	},
}

// printTop prints the n best entries of an already sorted ranking.
func printTop(cmd *cobra.Command, entries []store.RankingEntry, n int) {
	if n > len(entries) {
		n = len(entries)
	}
	for i := 0; i < n; i++ {
		cmd.Printf("%2d. %-30s %.8f\n", i+1, entries[i].Candidate, entries[i].Score)
	}
}

func init() {
	rootCmd.AddCommand(rankCmd)
}

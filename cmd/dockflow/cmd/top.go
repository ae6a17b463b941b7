package cmd

import (
	"github.com/spf13/cobra"

	"dockflow/internal/store/file"
)

var topN int

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Print the best candidates from the last ranking",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		layout := file.NewLayout(cfg.WorkDir)

		entries, err := file.ReadRanking(layout.RankedBestLigandsFile())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			cmd.Println("No ranking found. Run a campaign first: dockflow run")
			return nil
		}

		n := topN
		if n <= 0 {
			n = cfg.TopN
		}
		printTop(cmd, entries, n)
		return nil
	},
}

func init() {
	topCmd.Flags().IntVarP(&topN, "count", "n", 0, "number of candidates to show (default from config top_n)")
	rootCmd.AddCommand(topCmd)
}

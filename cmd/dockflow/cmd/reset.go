package cmd

import (
	"github.com/spf13/cobra"

	"dockflow/internal/store/file"
)

var resetEverything bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear campaign progress so the next run starts from scratch",
	Long: `Reset archives the cache directory (checkpoint and extracted conformers)
to cache_backup, so the next run re-docks everything while old results stay
untouched. With --everything the results directory is deleted too and nothing
is kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		layout := file.NewLayout(cfg.WorkDir)

		if resetEverything {
			if err := file.ClearEverything(layout); err != nil {
				return err
			}
			cmd.Println("Cleared cache and results.")
			return nil
		}

		if err := file.ArchiveCache(layout); err != nil {
			return err
		}
		cmd.Println("Cache archived. Results kept; the next run starts from scratch.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetEverything, "everything", false, "also delete all results")
	rootCmd.AddCommand(resetCmd)
}

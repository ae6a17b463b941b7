package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dockflow/internal/store/file"
)

var (
	collectOut      string
	collectCount    int
	collectMaxScore float64
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Copy the best candidates' docked poses into one directory",
	Long: `Collect gathers the pose files of the top-ranked candidates from results/
into a separate directory for inspection. Selection is by rank count (-n) or,
when --max-score is set, by aggregate score threshold; threshold wins when
both are given.`,
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
			return fmt.Errorf("no ranking found in %s, run a campaign first", layout.ResultsDir())
		}

		selected := map[string]bool{}
		if cmd.Flags().Changed("max-score") {
			for _, e := range entries {
				if e.Score <= collectMaxScore {
					selected[e.Candidate] = true
				}
			}
		} else {
			n := collectCount
			if n <= 0 {
				n = cfg.TopN
			}
			if n > len(entries) {
				n = len(entries)
			}
			for _, e := range entries[:n] {
				selected[e.Candidate] = true
			}
		}

		if err := os.MkdirAll(collectOut, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", collectOut, err)
		}

		copied := 0
		dirEntries, err := os.ReadDir(layout.ResultsDir())
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", layout.ResultsDir(), err)
		}
		for _, de := range dirEntries {
			if de.IsDir() || !strings.HasSuffix(de.Name(), ".pdbqt") {
				continue
			}
			candidate, ok := poseCandidate(de.Name())
			if !ok || !selected[candidate] {
				continue
			}
			src := filepath.Join(layout.ResultsDir(), de.Name())
			dst := filepath.Join(collectOut, de.Name())
			if err := copyPose(src, dst); err != nil {
				return err
			}
			copied++
		}

		cmd.Printf("Collected %d pose files for %d candidates into %s\n", copied, len(selected), collectOut)
		return nil
	},
}

// poseCandidate extracts the candidate name from a pose filename of the form
// <candidate>_model<i>_vs_<target>.pdbqt.
func poseCandidate(name string) (string, bool) {
	idx := strings.LastIndex(name, "_model")
	if idx <= 0 || !strings.Contains(name[idx:], "_vs_") {
		return "", false
	}
	return name[:idx], true
}

func copyPose(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

func init() {
	collectCmd.Flags().StringVarP(&collectOut, "out", "o", "./hits", "destination directory")
	collectCmd.Flags().IntVarP(&collectCount, "count", "n", 0, "how many top candidates to collect (default from config top_n)")
	collectCmd.Flags().Float64Var(&collectMaxScore, "max-score", 0, "collect every candidate with aggregate score at or below this value")
	rootCmd.AddCommand(collectCmd)
}

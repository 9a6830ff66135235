package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/authdefense-sim/authdefense-sim/sim/scenario"
)

var analyzeDuration float64 // Overrides the recorded sweep duration when positive

// analyzeCmd computes per-trial metrics for a sweep and aggregates them across seeds
var analyzeCmd = &cobra.Command{
	Use:   "analyze [results-dir]",
	Short: "Analyze sweep results and aggregate metrics across seeds",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "results"
		if len(args) > 0 {
			dir = args[0]
		}
		summaries, rows, err := scenario.AnalyzeSweep(dir, analyzeDuration)
		if err != nil {
			logrus.Fatalf("Analyze failed: %v", err)
		}
		if len(summaries) == 0 {
			logrus.Warnf("No trials found in %s", dir)
			return
		}

		fmt.Println("=== Aggregated Results ===")
		for _, row := range rows {
			row.Print()
		}
		logrus.Infof("Per-trial results saved to %s", filepath.Join(dir, scenario.SummaryFile))
		logrus.Infof("Aggregated results saved to %s", filepath.Join(dir, scenario.AggregatedSummaryFile))
	},
}

func init() {
	analyzeCmd.Flags().Float64Var(&analyzeDuration, "duration", 0, "Override the per-trial duration recorded in sweep_metadata.csv (virtual seconds; 0 uses the recorded value)")
	rootCmd.AddCommand(analyzeCmd)
}

package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/authdefense-sim/authdefense-sim/sim/scenario"
)

var (
	// CLI flags for sweep
	sweepOutput     string          // Results root directory
	sweepSeeds      int             // Trials per grid entry
	sweepGrid       string          // Optional YAML grid replacing the default grid
	sweepPopulation populationFlags // Population and store flags for sweep
)

// sweepCmd runs every defense configuration in the grid for several seeds
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a parameter sweep across defense configurations",
	Long: "Run a parameter sweep across defense configurations. Each trial writes its logs to " +
		"<output>/trial_<id>/ and the sweep index to <output>/sweep_metadata.csv. " +
		"When the CI environment variable is set the sweep shrinks to a single short lockout trial.",
	Run: func(cmd *cobra.Command, args []string) {
		grid := scenario.DefaultGrid()
		if sweepGrid != "" {
			loaded, err := scenario.LoadSweepGrid(sweepGrid)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			grid = loaded
		}

		base := scenario.DefaultTrialConfig()
		base.NumUsers = sweepPopulation.numUsers
		base.SharedIP = sweepPopulation.sharedIP
		base.Store = sweepPopulation.storeKind

		cfg := scenario.SweepConfig{
			OutputDir:     sweepOutput,
			Seeds:         sweepSeeds,
			Duration:      sweepPopulation.duration,
			AttackerModel: scenario.AttackerModel(sweepPopulation.attackerModel),
			Grid:          grid,
			Base:          base,
		}
		if os.Getenv("CI") != "" {
			logrus.Warn("CI mode detected - running minimal sweep")
			cfg.ApplyCI()
		}

		metas, err := scenario.RunSweep(cfg)
		if err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
		logrus.Infof("Sweep complete: %d trials; next: authdefense-sim analyze %s", len(metas), sweepOutput)
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepOutput, "output", "results", "Results root directory")
	sweepCmd.Flags().IntVar(&sweepSeeds, "seeds", 3, "Trials per grid entry")
	sweepCmd.Flags().StringVar(&sweepGrid, "grid", "", "YAML sweep grid (entries: [{param_name, param_value, defense}])")
	sweepPopulation.register(sweepCmd, 7200)

	rootCmd.AddCommand(sweepCmd)
}

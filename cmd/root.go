package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/authdefense-sim/authdefense-sim/sim/scenario"
)

var (
	logLevel string // Log verbosity level

	// CLI flags for run
	seed          int64           // Seed for user behavior and leaked credential generation
	outputDir     string          // Directory for detail/auth CSV logs (optional)
	runPopulation populationFlags // Population and store flags for run
)

// populationFlags holds the flags shared by run and sweep. Each command gets
// its own instance so their defaults do not overwrite each other.
type populationFlags struct {
	duration      float64 // Simulated time span (virtual seconds)
	attackerModel string  // Attacker population: baseline or cred_stuffing
	numUsers      int     // Number of normal users
	sharedIP      bool    // First 15 users share one source IP
	storeKind     string  // Account store backend: memory or bolt
}

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "authdefense-sim",
	Short: "Discrete-event simulator for brute-force login defenses",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runCmd executes one trial using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulated trial against a defense policy",
	Run: func(cmd *cobra.Command, args []string) {
		defenseCfg, err := resolveDefenseConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		cfg := scenario.DefaultTrialConfig()
		cfg.Defense = defenseCfg
		cfg.Seed = seed
		cfg.Duration = runPopulation.duration
		cfg.AttackerModel = scenario.AttackerModel(runPopulation.attackerModel)
		cfg.NumUsers = runPopulation.numUsers
		cfg.SharedIP = runPopulation.sharedIP
		cfg.Store = runPopulation.storeKind
		cfg.OutputDir = outputDir

		startTime := time.Now()
		res, err := scenario.RunTrial(cfg)
		if err != nil {
			logrus.Fatalf("Trial failed: %v", err)
		}
		res.Metrics.Print(res.Trace.Outcomes)
		logrus.Infof("Trial complete: %d events in %s wall time", res.Run.EventsProcessed, time.Since(startTime))
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// register adds the population flags to cmd.
func (p *populationFlags) register(cmd *cobra.Command, defaultDuration float64) {
	cmd.Flags().Float64Var(&p.duration, "duration", defaultDuration, "Simulated time span (virtual seconds)")
	cmd.Flags().StringVar(&p.attackerModel, "attacker-model", string(scenario.AttackerBaseline), "Attacker population (baseline, cred_stuffing)")
	cmd.Flags().IntVar(&p.numUsers, "num-users", 50, "Number of normal users")
	cmd.Flags().BoolVar(&p.sharedIP, "shared-ip", true, "First 15 users share one source IP")
	cmd.Flags().StringVar(&p.storeKind, "store", scenario.StoreMemory, "Account store backend (memory, bolt); bolt requires an output directory")
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for user behavior and leaked credential generation")
	runCmd.Flags().StringVar(&outputDir, "output-dir", "", "Write detail_log.csv and auth_log.csv to this directory")
	runPopulation.register(runCmd, 3600)
	registerDefenseFlags(runCmd)

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}

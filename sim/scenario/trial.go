// Package scenario assembles complete trials (accounts, defense, actors, logs)
// and runs parameter sweeps over them.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/authdefense-sim/authdefense-sim/sim"
	"github.com/authdefense-sim/authdefense-sim/sim/actor"
	_ "github.com/authdefense-sim/authdefense-sim/sim/defense"
	"github.com/authdefense-sim/authdefense-sim/sim/store"
	"github.com/authdefense-sim/authdefense-sim/sim/trace"
)

// AttackerModel selects the attacker population.
type AttackerModel string

const (
	AttackerBaseline     AttackerModel = "baseline"
	AttackerCredStuffing AttackerModel = "cred_stuffing"
)

// ValidAttackerModels is the set of recognized attacker model names.
var ValidAttackerModels = map[AttackerModel]bool{AttackerBaseline: true, AttackerCredStuffing: true}

// Store backends.
const (
	StoreMemory = "memory"
	StoreBolt   = "bolt"
)

// Output file names inside a trial directory.
const (
	DetailLogFile = "detail_log.csv"
	AuthLogFile   = "auth_log.csv"
	AccountsFile  = "accounts.db"
)

// TrialConfig fully determines one trial.
type TrialConfig struct {
	Defense       sim.DefenseConfig
	Seed          int64
	Duration      float64 // virtual seconds
	AttackerModel AttackerModel
	NumUsers      int
	SharedIP      bool
	UserBehavior  actor.UserBehavior
	Store         string // StoreMemory (default) or StoreBolt
	OutputDir     string // when set, CSV logs (and the bolt file) are written here
}

// DefaultTrialConfig returns the standard population: 50 users, shared IPs,
// baseline attackers, one hour.
func DefaultTrialConfig() TrialConfig {
	return TrialConfig{
		Defense:       sim.DefenseConfig{Name: "lockout"},
		Seed:          42,
		Duration:      3600,
		AttackerModel: AttackerBaseline,
		NumUsers:      50,
		SharedIP:      true,
		UserBehavior:  actor.DefaultUserBehavior(),
		Store:         StoreMemory,
	}
}

// Validate checks the trial configuration before anything is built.
func (c *TrialConfig) Validate() error {
	if err := c.Defense.Validate(); err != nil {
		return err
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration must be non-negative, got %f", c.Duration)
	}
	if !ValidAttackerModels[c.AttackerModel] {
		return fmt.Errorf("unknown attacker model %q", c.AttackerModel)
	}
	if c.NumUsers < 0 {
		return fmt.Errorf("num users must be non-negative, got %d", c.NumUsers)
	}
	if c.NumUsers > 0 {
		if err := c.UserBehavior.Validate(); err != nil {
			return fmt.Errorf("user behavior: %w", err)
		}
	}
	switch c.Store {
	case "", StoreMemory:
	case StoreBolt:
		if c.OutputDir == "" {
			return errors.New("bolt store requires an output directory")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	return nil
}

// TrialResult is everything a trial produced.
type TrialResult struct {
	Trace   *trace.SimulationTrace
	Run     sim.RunSummary
	Metrics trace.TrialMetrics
	Actors  []sim.Actor
	Users   []*actor.NormalUser
	Policy  sim.DefensePolicy
}

// RunTrial builds fresh accounts, policy, and actors from cfg and runs the
// simulation to completion. Identical configs produce identical traces.
func RunTrial(cfg TrialConfig) (res *TrialResult, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("trial config: %w", err)
	}

	clock := sim.NewClock()
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))

	accounts, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil && err == nil {
			err = fmt.Errorf("closing account store: %w", cerr)
		}
	}()

	users := actor.NormalUsers(rng, cfg.NumUsers, cfg.SharedIP, cfg.UserBehavior)
	if err := accounts.CreateAccount(actor.VictimUsername, actor.VictimPassword, clock.Now()); err != nil {
		return nil, err
	}
	for _, u := range users {
		if err := accounts.CreateAccount(u.Username(), u.Password(), clock.Now()); err != nil {
			return nil, err
		}
	}

	policy, err := sim.NewDefensePolicy(cfg.Defense, clock, accounts)
	if err != nil {
		return nil, err
	}

	var attackers []sim.Actor
	switch cfg.AttackerModel {
	case AttackerCredStuffing:
		attackers = actor.CredentialStuffingAttackers(rng)
	default:
		attackers = actor.BaselineAttackers()
	}
	actors := make([]sim.Actor, 0, len(attackers)+len(users))
	actors = append(actors, attackers...)
	for _, u := range users {
		actors = append(actors, u)
	}

	st := trace.NewSimulationTrace()
	outcomes := trace.TeeOutcomes{st}
	auths := trace.TeeAuths{st}
	if cfg.OutputDir != "" {
		closeLogs, err := attachCSVLogs(cfg.OutputDir, &outcomes, &auths)
		if err != nil {
			return nil, err
		}
		defer func() {
			if cerr := closeLogs(); cerr != nil && err == nil {
				err = fmt.Errorf("closing trial logs: %w", cerr)
			}
		}()
	}

	logrus.Infof("trial: defense=%q attackers=%s users=%d seed=%d duration=%.0fs",
		cfg.Defense.Name, cfg.AttackerModel, len(users), cfg.Seed, cfg.Duration)

	auth := sim.NewAuthService(clock, accounts, policy, auths)
	simulator := sim.NewSimulator(clock, auth, actors, cfg.Duration, outcomes)
	summary, err := simulator.Run()
	if err != nil {
		return nil, err
	}

	return &TrialResult{
		Trace:   st,
		Run:     summary,
		Metrics: trace.Analyze(st.Outcomes, cfg.Duration, actor.VictimUsername),
		Actors:  actors,
		Users:   users,
		Policy:  policy,
	}, nil
}

func openStore(cfg TrialConfig) (store.AccountStore, func() error, error) {
	if cfg.Store != StoreBolt {
		return store.NewMemoryStore(), func() error { return nil }, nil
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(cfg.OutputDir, AccountsFile)
	// Every trial starts from fresh account state.
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("resetting account store: %w", err)
	}
	bs, err := store.OpenBoltStore(path)
	if err != nil {
		return nil, nil, err
	}
	return bs, bs.Close, nil
}

// attachCSVLogs adds detail and auth CSV sinks under dir. The returned func
// closes both files and reports every close error.
func attachCSVLogs(dir string, outcomes *trace.TeeOutcomes, auths *trace.TeeAuths) (func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	detailFile, err := os.Create(filepath.Join(dir, DetailLogFile))
	if err != nil {
		return nil, fmt.Errorf("creating detail log: %w", err)
	}
	authFile, err := os.Create(filepath.Join(dir, AuthLogFile))
	if err != nil {
		_ = detailFile.Close()
		return nil, fmt.Errorf("creating auth log: %w", err)
	}
	closeAll := func() error {
		return errors.Join(detailFile.Close(), authFile.Close())
	}

	detail, err := trace.NewCSVWriter(detailFile, trace.DetailLogHeader)
	if err != nil {
		_ = closeAll()
		return nil, err
	}
	authLog, err := trace.NewCSVWriter(authFile, trace.AuthLogHeader)
	if err != nil {
		_ = closeAll()
		return nil, err
	}
	*outcomes = append(*outcomes, detail)
	*auths = append(*auths, authLog)
	return closeAll, nil
}

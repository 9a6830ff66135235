package scenario

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/authdefense-sim/authdefense-sim/sim"
)

// MetadataFile is the sweep index written at the root of the results directory.
const MetadataFile = "sweep_metadata.csv"

var metadataHeader = []string{"trial_id", "defense", "param_name", "param_value", "seed", "attacker_model", "duration", "config", "sweep_id"}

// GridEntry is one defense configuration in a sweep.
type GridEntry struct {
	ParamName  string            `yaml:"param_name"`
	ParamValue string            `yaml:"param_value"`
	Defense    sim.DefenseConfig `yaml:"defense"`
}

// SweepGrid is the YAML layout accepted by --grid.
type SweepGrid struct {
	Entries []GridEntry `yaml:"entries"`
}

// SweepConfig controls a parameter sweep.
type SweepConfig struct {
	OutputDir     string
	Seeds         int // trials per grid entry
	Duration      float64
	AttackerModel AttackerModel
	Grid          []GridEntry
	Base          TrialConfig // population and store settings shared by every trial
}

// TrialMeta indexes one trial of a sweep.
type TrialMeta struct {
	TrialID       int
	Defense       string
	ParamName     string
	ParamValue    string
	Seed          int
	AttackerModel AttackerModel
	Duration      float64 // virtual seconds the trial ran for
	Config        string
	SweepID       string
}

func intPtr(v int) *int             { return &v }
func float64Ptr(v float64) *float64 { return &v }

// DefaultGrid returns the standard sweep over lockout thresholds, backoff base
// delays, and account/IP token bucket sizes.
func DefaultGrid() []GridEntry {
	var grid []GridEntry
	for _, n := range []int{3, 5, 10} {
		grid = append(grid, GridEntry{
			ParamName: "max_failures", ParamValue: strconv.Itoa(n),
			Defense: sim.DefenseConfig{Name: "lockout", MaxFailures: intPtr(n), LockoutTime: float64Ptr(300)},
		})
	}
	for _, d := range []float64{0.25, 0.5, 1.0, 2.0} {
		grid = append(grid, GridEntry{
			ParamName: "base_delay", ParamValue: strconv.FormatFloat(d, 'f', -1, 64),
			Defense: sim.DefenseConfig{Name: "backoff", BaseDelay: float64Ptr(d), MaxDelay: float64Ptr(60)},
		})
	}
	buckets := []struct {
		name   string
		tokens float64
		rate   float64
	}{
		{"rate_limit", 2, 0.3},
		{"rate_limit", 3, 0.5},
		{"rate_limit", 5, 0.5},
		{"rate_limit", 5, 1.0},
		{"rate_limit_ip", 3, 0.5},
		{"rate_limit_ip", 5, 1.0},
		{"rate_limit_ip", 10, 2.0},
	}
	for _, b := range buckets {
		grid = append(grid, GridEntry{
			ParamName:  "tokens",
			ParamValue: fmt.Sprintf("%g_%g", b.tokens, b.rate),
			Defense:    sim.DefenseConfig{Name: b.name, MaxTokens: float64Ptr(b.tokens), RefillRate: float64Ptr(b.rate)},
		})
	}
	return grid
}

// LoadSweepGrid reads a YAML sweep grid with strict field checking.
func LoadSweepGrid(path string) ([]GridEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sweep grid: %w", err)
	}
	var grid SweepGrid
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&grid); err != nil {
		return nil, fmt.Errorf("parsing sweep grid: %w", err)
	}
	for i := range grid.Entries {
		if err := grid.Entries[i].Defense.Validate(); err != nil {
			return nil, fmt.Errorf("sweep grid entry %d: %w", i, err)
		}
	}
	return grid.Entries, nil
}

// ApplyCI shrinks the sweep to a smoke test: one seed, one minute, and only
// the first lockout entry.
func (c *SweepConfig) ApplyCI() {
	c.Seeds = 1
	c.Duration = 60
	for _, e := range c.Grid {
		if e.Defense.Name == "lockout" {
			c.Grid = []GridEntry{e}
			return
		}
	}
	if len(c.Grid) > 1 {
		c.Grid = c.Grid[:1]
	}
}

// RunSweep runs Seeds trials per grid entry, each in its own trial_<id>
// directory, and writes the sweep metadata index. Trial IDs double as seeds.
func RunSweep(cfg SweepConfig) ([]TrialMeta, error) {
	if cfg.Seeds < 1 {
		return nil, fmt.Errorf("seeds must be at least 1, got %d", cfg.Seeds)
	}
	for i := range cfg.Grid {
		if err := cfg.Grid[i].Defense.Validate(); err != nil {
			return nil, fmt.Errorf("sweep grid entry %d: %w", i, err)
		}
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating sweep output dir: %w", err)
	}

	sweepID := uuid.NewString()
	metas := make([]TrialMeta, 0, len(cfg.Grid)*cfg.Seeds)
	trialID := 0
	for _, entry := range cfg.Grid {
		logrus.Infof("sweep: defense=%s %s=%s", entry.Defense.Name, entry.ParamName, entry.ParamValue)
		for seed := 0; seed < cfg.Seeds; seed++ {
			trial := cfg.Base
			trial.Defense = entry.Defense
			trial.Seed = int64(trialID)
			trial.Duration = cfg.Duration
			trial.AttackerModel = cfg.AttackerModel
			trial.OutputDir = TrialDir(cfg.OutputDir, trialID)

			if _, err := RunTrial(trial); err != nil {
				return metas, fmt.Errorf("trial %d: %w", trialID, err)
			}
			metas = append(metas, TrialMeta{
				TrialID:       trialID,
				Defense:       entry.Defense.Name,
				ParamName:     entry.ParamName,
				ParamValue:    entry.ParamValue,
				Seed:          seed,
				AttackerModel: cfg.AttackerModel,
				Duration:      cfg.Duration,
				Config:        DescribeDefense(entry.Defense),
				SweepID:       sweepID,
			})
			trialID++
		}
	}

	if err := writeMetadata(filepath.Join(cfg.OutputDir, MetadataFile), metas); err != nil {
		return metas, err
	}
	logrus.Infof("sweep %s complete: %d trials in %s", sweepID, len(metas), cfg.OutputDir)
	return metas, nil
}

// TrialDir returns the directory holding trial id's logs.
func TrialDir(root string, id int) string {
	return filepath.Join(root, fmt.Sprintf("trial_%d", id))
}

// DescribeDefense renders the parameters set on cfg as "key=value" pairs.
func DescribeDefense(cfg sim.DefenseConfig) string {
	var parts []string
	addInt := func(k string, v *int) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%s=%d", k, *v))
		}
	}
	addFloat := func(k string, v *float64) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%s=%g", k, *v))
		}
	}
	addInt("max_failures", cfg.MaxFailures)
	addFloat("lockout_time", cfg.LockoutTime)
	addFloat("base_delay", cfg.BaseDelay)
	addFloat("max_delay", cfg.MaxDelay)
	addFloat("refill_rate", cfg.RefillRate)
	addFloat("max_tokens", cfg.MaxTokens)
	addFloat("ip_refill_rate", cfg.IPRefillRate)
	addFloat("ip_max_tokens", cfg.IPMaxTokens)
	addFloat("account_refill_rate", cfg.AccountRefillRate)
	addFloat("account_max_tokens", cfg.AccountMaxTokens)
	return strings.Join(parts, " ")
}

func writeMetadata(path string, metas []TrialMeta) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating sweep metadata: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(metadataHeader); err != nil {
		return fmt.Errorf("writing sweep metadata: %w", err)
	}
	for _, m := range metas {
		row := []string{
			strconv.Itoa(m.TrialID), m.Defense, m.ParamName, m.ParamValue,
			strconv.Itoa(m.Seed), string(m.AttackerModel), formatFloat(m.Duration), m.Config, m.SweepID,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing sweep metadata: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadMetadata parses a sweep_metadata.csv file.
func ReadMetadata(path string) ([]TrialMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sweep metadata: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading sweep metadata: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sweep metadata %s: missing header", path)
	}
	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}
	get := func(row []string, name string) string {
		if i, ok := col[name]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	metas := make([]TrialMeta, 0, len(rows)-1)
	for i, row := range rows[1:] {
		id, err := strconv.Atoi(get(row, "trial_id"))
		if err != nil {
			return nil, fmt.Errorf("sweep metadata row %d: bad trial_id: %w", i+2, err)
		}
		seed, err := strconv.Atoi(get(row, "seed"))
		if err != nil {
			return nil, fmt.Errorf("sweep metadata row %d: bad seed: %w", i+2, err)
		}
		// Metadata written before the duration column existed reads as 0.
		var duration float64
		if v := get(row, "duration"); v != "" {
			duration, err = strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("sweep metadata row %d: bad duration: %w", i+2, err)
			}
		}
		model := AttackerModel(get(row, "attacker_model"))
		if model == "" {
			model = AttackerBaseline
		}
		metas = append(metas, TrialMeta{
			TrialID:       id,
			Defense:       get(row, "defense"),
			ParamName:     get(row, "param_name"),
			ParamValue:    get(row, "param_value"),
			Seed:          seed,
			AttackerModel: model,
			Duration:      duration,
			Config:        get(row, "config"),
			SweepID:       get(row, "sweep_id"),
		})
	}
	return metas, nil
}

package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authdefense-sim/authdefense-sim/sim"
)

func TestDefaultGrid_Entries(t *testing.T) {
	grid := DefaultGrid()
	require.Len(t, grid, 14)

	counts := make(map[string]int)
	for _, e := range grid {
		require.NoError(t, e.Defense.Validate(), "%s=%s", e.ParamName, e.ParamValue)
		counts[e.Defense.Name]++
	}
	assert.Equal(t, map[string]int{"lockout": 3, "backoff": 4, "rate_limit": 4, "rate_limit_ip": 3}, counts)

	assert.Equal(t, "3", grid[0].ParamValue)
	assert.Equal(t, "0.25", grid[3].ParamValue)
	assert.Equal(t, "2_0.3", grid[7].ParamValue)
}

func TestSweepConfig_ApplyCI(t *testing.T) {
	cfg := SweepConfig{Seeds: 3, Duration: 7200, Grid: DefaultGrid()}
	cfg.ApplyCI()

	assert.Equal(t, 1, cfg.Seeds)
	assert.Equal(t, 60.0, cfg.Duration)
	require.Len(t, cfg.Grid, 1)
	assert.Equal(t, "lockout", cfg.Grid[0].Defense.Name)

	noLockout := SweepConfig{Grid: DefaultGrid()[3:]}
	noLockout.ApplyCI()
	require.Len(t, noLockout.Grid, 1)
	assert.Equal(t, "backoff", noLockout.Grid[0].Defense.Name)
}

func TestLoadSweepGrid(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "grid.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
entries:
  - param_name: max_failures
    param_value: "4"
    defense:
      name: lockout
      max_failures: 4
  - param_name: base_delay
    param_value: "3"
    defense:
      name: backoff
      base_delay: 3
`), 0o644))

	grid, err := LoadSweepGrid(good)
	require.NoError(t, err)
	require.Len(t, grid, 2)
	assert.Equal(t, 4, *grid[0].Defense.MaxFailures)
	assert.Equal(t, "backoff", grid[1].Defense.Name)

	typo := filepath.Join(dir, "typo.yaml")
	require.NoError(t, os.WriteFile(typo, []byte("entries:\n  - param_nam: x\n"), 0o644))
	_, err = LoadSweepGrid(typo)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("entries:\n  - defense:\n      name: lockout\n      max_failures: 0\n"), 0o644))
	_, err = LoadSweepGrid(invalid)
	assert.Error(t, err)
}

func TestDescribeDefense(t *testing.T) {
	assert.Equal(t, "max_failures=3 lockout_time=300", DescribeDefense(DefaultGrid()[0].Defense))
	assert.Equal(t, "", DescribeDefense(sim.DefenseConfig{Name: "none"}))
}

func TestRunSweep_ThenAnalyze(t *testing.T) {
	// GIVEN a two-entry grid with two seeds each
	dir := t.TempDir()
	base := DefaultTrialConfig()
	base.NumUsers = 5
	cfg := SweepConfig{
		OutputDir:     dir,
		Seeds:         2,
		Duration:      60,
		AttackerModel: AttackerBaseline,
		Grid: []GridEntry{
			{ParamName: "max_failures", ParamValue: "3", Defense: sim.DefenseConfig{Name: "lockout", MaxFailures: intPtr(3)}},
			{ParamName: "none", ParamValue: "-", Defense: sim.DefenseConfig{Name: "none"}},
		},
		Base: base,
	}

	// WHEN the sweep runs
	metas, err := RunSweep(cfg)
	require.NoError(t, err)

	// THEN trials are numbered sequentially with per-entry seed indices
	require.Len(t, metas, 4)
	for i, m := range metas {
		assert.Equal(t, i, m.TrialID)
		assert.Equal(t, i%2, m.Seed)
		assert.Equal(t, metas[0].SweepID, m.SweepID)
		_, err := os.Stat(filepath.Join(TrialDir(dir, i), DetailLogFile))
		assert.NoError(t, err)
	}

	// AND the metadata round-trips
	read, err := ReadMetadata(filepath.Join(dir, MetadataFile))
	require.NoError(t, err)
	assert.Equal(t, metas, read)

	// WHEN analyzed
	summaries, rows, err := AnalyzeSweep(dir, 60)
	require.NoError(t, err)

	// THEN every trial is summarized and grouped per grid entry
	assert.Len(t, summaries, 4)
	require.Len(t, rows, 2)
	assert.Equal(t, "lockout", rows[0].Defense)
	assert.Equal(t, 2, rows[0].NTrials)
	assert.Equal(t, "none", rows[1].Defense)
	assert.Greater(t, rows[1].MeanCompromise, 0.0)
	assert.Equal(t, 10.5, rows[1].MeanTimeToCompromise, "undefended victim falls on the 21st guess")
	for _, name := range []string{SummaryFile, AggregatedSummaryFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestRunSweep_RejectsBadConfig(t *testing.T) {
	_, err := RunSweep(SweepConfig{OutputDir: t.TempDir(), Seeds: 0})
	assert.Error(t, err)

	_, err = RunSweep(SweepConfig{
		OutputDir: t.TempDir(),
		Seeds:     1,
		Grid:      []GridEntry{{Defense: sim.DefenseConfig{Name: "bogus"}}},
	})
	assert.Error(t, err)
}

func TestAnalyzeSweep_SkipsMissingTrials(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeMetadata(filepath.Join(dir, MetadataFile), []TrialMeta{
		{TrialID: 0, Defense: "lockout", AttackerModel: AttackerBaseline},
	}))

	summaries, rows, err := AnalyzeSweep(dir, 60)

	require.NoError(t, err)
	assert.Empty(t, summaries)
	assert.Empty(t, rows)
}

func TestAnalyzeSweep_UsesRecordedDuration(t *testing.T) {
	// GIVEN a short lockout sweep, where the victim is never compromised
	dir := t.TempDir()
	base := DefaultTrialConfig()
	base.NumUsers = 3
	_, err := RunSweep(SweepConfig{
		OutputDir:     dir,
		Seeds:         1,
		Duration:      60,
		AttackerModel: AttackerBaseline,
		Grid:          DefaultGrid()[:1],
		Base:          base,
	})
	require.NoError(t, err)

	// WHEN analyzed without a duration
	summaries, _, err := AnalyzeSweep(dir, 0)
	require.NoError(t, err)

	// THEN metrics use the 60s the sweep actually ran
	require.Len(t, summaries, 1)
	assert.Equal(t, 60.0, summaries[0].Meta.Duration)
	assert.Equal(t, 60.0, summaries[0].Metrics.TimeToCompromise)
	assert.InDelta(t, float64(summaries[0].Metrics.TotalEvents)/60, summaries[0].Metrics.Throughput, 1e-12)

	// AND an explicit duration still overrides it
	summaries, _, err = AnalyzeSweep(dir, 7200)
	require.NoError(t, err)
	assert.Equal(t, 7200.0, summaries[0].Metrics.TimeToCompromise)
}

func TestReadMetadata_WithoutDurationColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), MetadataFile)
	require.NoError(t, os.WriteFile(path, []byte("trial_id,defense,param_name,param_value,seed\n0,lockout,max_failures,3,0\n"), 0o644))

	metas, err := ReadMetadata(path)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, 0.0, metas[0].Duration)
	assert.Equal(t, AttackerBaseline, metas[0].AttackerModel)
}

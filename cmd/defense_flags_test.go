package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newDefenseTestCmd rebinds the defense flags to a fresh command, resetting
// every flag variable to its default.
func newDefenseTestCmd(t *testing.T, args map[string]string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	registerDefenseFlags(c)
	for name, value := range args {
		require.NoError(t, c.Flags().Set(name, value), name)
	}
	return c
}

func TestResolveDefenseConfig_UnchangedFlagsStayUnset(t *testing.T) {
	// GIVEN only --defense backoff
	c := newDefenseTestCmd(t, map[string]string{"defense": "backoff"})

	// WHEN resolved
	cfg, err := resolveDefenseConfig(c)
	require.NoError(t, err)

	// THEN no parameters are forced, so the policy applies its own defaults
	assert.Equal(t, "backoff", cfg.Name)
	assert.Nil(t, cfg.BaseDelay)
	assert.Nil(t, cfg.MaxTokens, "the rate_limit flag default must not leak into other policies")
}

func TestResolveDefenseConfig_DefaultName(t *testing.T) {
	cfg, err := resolveDefenseConfig(newDefenseTestCmd(t, nil))
	require.NoError(t, err)
	assert.Equal(t, "lockout", cfg.Name)
}

func TestResolveDefenseConfig_ChangedFlagsApplied(t *testing.T) {
	c := newDefenseTestCmd(t, map[string]string{
		"defense":      "rate_limit_ip",
		"max-tokens":   "10",
		"refill-rate":  "2",
		"max-failures": "7",
	})

	cfg, err := resolveDefenseConfig(c)
	require.NoError(t, err)

	assert.Equal(t, "rate_limit_ip", cfg.Name)
	require.NotNil(t, cfg.MaxTokens)
	assert.Equal(t, 10.0, *cfg.MaxTokens)
	require.NotNil(t, cfg.RefillRate)
	assert.Equal(t, 2.0, *cfg.RefillRate)
	require.NotNil(t, cfg.MaxFailures)
	assert.Equal(t, 7, *cfg.MaxFailures)
}

func TestResolveDefenseConfig_YAMLLayeredUnderFlags(t *testing.T) {
	// GIVEN a YAML file selecting lockout with two parameters
	path := filepath.Join(t.TempDir(), "defense.yaml")
	require.NoError(t, os.WriteFile(path, []byte("defense:\n  name: lockout\n  max_failures: 3\n  lockout_time: 60\n"), 0o644))

	// WHEN one of them is also set on the command line
	c := newDefenseTestCmd(t, map[string]string{
		"defense-config": path,
		"lockout-time":   "900",
	})
	cfg, err := resolveDefenseConfig(c)
	require.NoError(t, err)

	// THEN the flag wins and the rest comes from the file
	assert.Equal(t, "lockout", cfg.Name)
	assert.Equal(t, 3, *cfg.MaxFailures)
	assert.Equal(t, 900.0, *cfg.LockoutTime)
}

func TestResolveDefenseConfig_YAMLNameKeptWithoutDefenseFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defense.yaml")
	require.NoError(t, os.WriteFile(path, []byte("defense:\n  name: hybrid\n"), 0o644))

	cfg, err := resolveDefenseConfig(newDefenseTestCmd(t, map[string]string{"defense-config": path}))
	require.NoError(t, err)
	assert.Equal(t, "hybrid", cfg.Name, "the --defense default must not override the file")
}

func TestResolveDefenseConfig_Invalid(t *testing.T) {
	_, err := resolveDefenseConfig(newDefenseTestCmd(t, map[string]string{"defense": "captcha"}))
	assert.Error(t, err)

	_, err = resolveDefenseConfig(newDefenseTestCmd(t, map[string]string{"max-failures": "0"}))
	assert.Error(t, err)

	_, err = resolveDefenseConfig(newDefenseTestCmd(t, map[string]string{"defense-config": "/nonexistent/defense.yaml"}))
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) *Config {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse(args))
	c := &Config{}
	require.NoError(t, c.Load(fs))
	return c
}

func TestDefaults(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, 2, c.GetInt(ConfigPromoted))
	assert.Equal(t, 2, c.GetInt(ConfigRelegated))
	assert.Equal(t, 1000, c.GetInt(ConfigSamplesPerBand))
	assert.Equal(t, "text", c.GetString(ConfigFormat))
	assert.Equal(t, "brassgrade.simulate", c.GetString(ConfigNatsSubject))
	_, ok := c.Seed()
	assert.False(t, ok)
	absent, err := c.AbsentBands()
	require.NoError(t, err)
	assert.Empty(t, absent)
}

func TestFlagsOverrideDefaults(t *testing.T) {
	c := load(t, "--promoted", "1", "--samples-per-band=50", "--seed", "17",
		"--absent", `"Black Dyke" Cory 'Foden'"'"'s' Cory`)
	assert.Equal(t, 1, c.GetInt(ConfigPromoted))
	assert.Equal(t, 50, c.GetInt(ConfigSamplesPerBand))
	seed, ok := c.Seed()
	assert.True(t, ok)
	assert.Equal(t, uint64(17), seed)

	absent, err := c.AbsentBands()
	require.NoError(t, err)
	assert.Equal(t, []string{"Black Dyke", "Cory", "Foden's"}, absent)
}

func TestEnvironment(t *testing.T) {
	t.Setenv("BRASSGRADE_RELEGATED", "3")
	t.Setenv("BRASSGRADE_LOG_LEVEL", "debug")
	c := load(t)
	assert.Equal(t, 3, c.GetInt(ConfigRelegated))
	assert.Equal(t, "debug", c.GetString(ConfigLogLevel))

	// Flags still win over the environment.
	c = load(t, "--relegated", "1")
	assert.Equal(t, 1, c.GetInt(ConfigRelegated))
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brassgrade.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"promoted: 3\nseed: 5\nabsent:\n  - Black Dyke\n  - Leyland\n"), 0o644))

	c := load(t, "--config", path)
	assert.Equal(t, 3, c.GetInt(ConfigPromoted))
	seed, ok := c.Seed()
	assert.True(t, ok)
	assert.Equal(t, uint64(5), seed)
	absent, err := c.AbsentBands()
	require.NoError(t, err)
	assert.Equal(t, []string{"Black Dyke", "Leyland"}, absent)
}

func TestBadAbsentQuoting(t *testing.T) {
	c := load(t, "--absent", `"Black Dyke`)
	_, err := c.AbsentBands()
	assert.Error(t, err)
}

func TestMissingConfigFile(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}))
	assert.Error(t, (&Config{}).Load(fs))
}

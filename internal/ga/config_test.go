package ga

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nqueens/internal/nqueens"
)

func TestDefaultConfig_Valid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfig_ValidateLimits(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"board too small", func(c *Config) { c.N = 3 }},
		{"board too large", func(c *Config) { c.N = MaxN + 1 }},
		{"population too small", func(c *Config) { c.Population = 1 }},
		{"population too large", func(c *Config) { c.Population = MaxPopulation + 1 }},
		{"negative patience", func(c *Config) { c.Patience = -1 }},
		{"negative restarts", func(c *Config) { c.MaxRestarts = -1 }},
		{"generations too large", func(c *Config) { c.HardMaxGenerations = MaxGenerations + 1 }},
		{"percentage out of range", func(c *Config) { c.ElitePct, c.CrossoverPct, c.MutationPct = -10, 90, 20 }},
		{"percent sum", func(c *Config) { c.MutationPct = 25 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrConfig)
		})
	}
}

func TestConfig_ValidateInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Population = 4
	cfg.ElitePct, cfg.CrossoverPct, cfg.MutationPct = 25, 50, 25

	cfg.ManualPopulation = []nqueens.Chromosome{{1, 2, 3, 4, 5, 6, 7, 8}}
	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrInput)

	cfg.ManualPopulation = []nqueens.Chromosome{
		{1, 2, 3, 4, 5, 6, 7, 8},
		{1, 2, 3, 4, 5, 6, 7, 8},
		{1, 2, 3, 4, 5, 6, 7, 7},
		{1, 2, 3, 4, 5, 6, 7, 8},
	}
	err = cfg.Validate()
	assert.ErrorIs(t, err, ErrInput)
	assert.ErrorIs(t, err, nqueens.ErrInvalidPermutation)
	assert.Contains(t, err.Error(), "строка 3")

	cfg.ManualPopulation = nil
	cfg.Target = nqueens.Chromosome{1, 2, 3}
	assert.ErrorIs(t, cfg.Validate(), ErrInput)

	cfg.Target = nqueens.Chromosome{2, 4, 6, 8, 3, 1, 7, 5}
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ga.yaml")
	data := `
n: 8
population: 4
elite_pct: 25
crossover_pct: 50
mutation_pct: 25
random_init: false
target: [2, 4, 6, 8, 3, 1, 7, 5]
manual_population:
  - [1, 2, 3, 4, 5, 6, 7, 8]
  - [8, 7, 6, 5, 4, 3, 2, 1]
  - [2, 4, 6, 8, 3, 1, 5, 7]
  - [1, 3, 5, 7, 2, 4, 6, 8]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 4, cfg.Population)
	assert.False(t, cfg.RandomInit)
	assert.True(t, cfg.EliteEnabled, "unset keys keep their defaults")
	assert.Equal(t, DefaultConfig().HardMaxGenerations, cfg.HardMaxGenerations)
	assert.Equal(t, nqueens.Chromosome{2, 4, 6, 8, 3, 1, 7, 5}, cfg.Target)
	require.Len(t, cfg.ManualPopulation, 4)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("popsize: 4\n"), 0o644))
	_, err = LoadConfig(bad)
	assert.ErrorIs(t, err, ErrConfig)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	cfg, err = LoadConfig(empty)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

package neat

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 0.26, cfg.SpeciesSet.CompatibilityThreshold)
	assert.Equal(t, 0, cfg.SpeciesSet.MaxNumberOfSpecies)
	assert.Equal(t, 15, cfg.Stagnation.NumGensAllowedNoImprovement)
	assert.Equal(t, 0.7, cfg.Reproduction.CrossoverRate)
	assert.Equal(t, 100, cfg.Genome.MaxPermittedNeurons)
	assert.Equal(t, 0.04, cfg.Genome.ChanceAddNode)
	assert.Equal(t, 0.07, cfg.Genome.ChanceAddLink)
	assert.Equal(t, 0.05, cfg.Genome.ChanceAddRecurrentLink)
	assert.Equal(t, 0.2, cfg.Genome.MutationRate)
	assert.Equal(t, 0.1, cfg.Genome.ProbabilityWeightReplaced)
	assert.Equal(t, 0.5, cfg.Genome.MaxWeightPerturbation)
	assert.Equal(t, 0.1, cfg.Genome.ActivationMutationRate)
	assert.Equal(t, 0.1, cfg.Genome.MaxActivationPerturbation)
	assert.Equal(t, 10, cfg.Stagnation.YoungBonusAgeThreshold)
	assert.Equal(t, 0.3, cfg.Stagnation.YoungFitnessBonus)
	assert.Equal(t, 50, cfg.Stagnation.OldAgeThreshold)
	assert.Equal(t, 0.3, cfg.Stagnation.OldAgePenalty)
	assert.Equal(t, 0.2, cfg.Reproduction.SurvivalRate)
	assert.Equal(t, 4, cfg.Reproduction.NumBestGenomesTracked)
	assert.Equal(t, Coefficients{Excess: 1, Disjoint: 1, Matched: 0.4}, cfg.SpeciesSet.Coefficients())

	// Input and output counts have no sensible default.
	assert.ErrorIs(t, cfg.Validate(), ErrConfig)
}

func TestParseConfigOverlaysDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
[NEAT]
pop_size = 60
input_count = 3
output_count = 2
seed = 99
workers = 4
activation_function = Tanh

[DefaultSpeciesSet]
max_number_of_species = 8

[DefaultReproduction]
crossover_rate = 0.5
`))
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Neat.PopSize)
	assert.Equal(t, 3, cfg.Neat.InputCount)
	assert.Equal(t, 2, cfg.Neat.OutputCount)
	assert.Equal(t, int64(99), cfg.Neat.Seed)
	assert.Equal(t, 4, cfg.Neat.Workers)
	assert.Equal(t, "tanh", cfg.Neat.ActivationFunction)
	assert.True(t, cfg.Neat.Snapshot)
	assert.Equal(t, 8, cfg.SpeciesSet.MaxNumberOfSpecies)
	assert.Equal(t, 0.5, cfg.Reproduction.CrossoverRate)
	assert.Equal(t, 0.26, cfg.SpeciesSet.CompatibilityThreshold)
	assert.Equal(t, 5, cfg.Genome.TriesAddLink)
}

func TestParseConfigRejectsInvalidValues(t *testing.T) {
	const neat = "[NEAT]\npop_size = 10\ninput_count = 2\noutput_count = 1\n"
	cases := map[string]struct {
		doc   string
		field string
	}{
		"probability":   {neat + "[DefaultReproduction]\ncrossover_rate = 1.5\n", "crossover_rate"},
		"activation":    {neat + "activation_function = softplus\n", "activation_function"},
		"max neurons":   {neat + "[DefaultGenome]\nmax_permitted_neurons = 0\n", "max_permitted_neurons"},
		"species limit": {neat + "[DefaultSpeciesSet]\nmax_number_of_species = -1\n", "max_number_of_species"},
		"pop size":      {"[NEAT]\npop_size = 0\ninput_count = 2\noutput_count = 1\n", "pop_size"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xor.ini")
	require.NoError(t, os.WriteFile(path, []byte("[NEAT]\npop_size = 20\ninput_count = 2\noutput_count = 1\nsnapshot = false\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Neat.PopSize)
	assert.False(t, cfg.Neat.Snapshot)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)
}

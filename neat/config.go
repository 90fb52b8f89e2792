package neat

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/baldhumanity/encog-neat/neat/nn"
)

// Config stores the configuration parameters for the NEAT algorithm.
type Config struct {
	Neat         NeatConfig
	Genome       GenomeConfig
	Reproduction ReproductionConfig
	SpeciesSet   SpeciesSetConfig
	Stagnation   StagnationConfig
}

// NeatConfig holds the run-level parameters.
type NeatConfig struct {
	PopSize     int   `ini:"pop_size"`
	InputCount  int   `ini:"input_count"`
	OutputCount int   `ini:"output_count"`
	Seed        int64 `ini:"seed"`
	// Workers > 1 evaluates fitness concurrently.
	Workers            int    `ini:"workers"`
	Snapshot           bool   `ini:"snapshot"`
	ActivationFunction string `ini:"activation_function"`
}

// GenomeConfig holds the mutation parameters applied to offspring.
type GenomeConfig struct {
	ChanceAddNode             float64 `ini:"chance_add_node"`
	ChanceAddLink             float64 `ini:"chance_add_link"`
	ChanceAddRecurrentLink    float64 `ini:"chance_add_recurrent_link"`
	MutationRate              float64 `ini:"mutation_rate"`
	ProbabilityWeightReplaced float64 `ini:"probability_weight_replaced"`
	MaxWeightPerturbation     float64 `ini:"max_weight_perturbation"`
	ActivationMutationRate    float64 `ini:"activation_mutation_rate"`
	MaxActivationPerturbation float64 `ini:"max_activation_perturbation"`
	MaxPermittedNeurons       int     `ini:"max_permitted_neurons"`
	TriesFindLoop             int     `ini:"tries_find_loop"`
	TriesAddLink              int     `ini:"tries_add_link"`
	TriesFindOldLink          int     `ini:"tries_find_old_link"`
}

// ReproductionConfig holds parameters related to reproduction.
type ReproductionConfig struct {
	CrossoverRate         float64 `ini:"crossover_rate"`
	SurvivalRate          float64 `ini:"survival_rate"`
	NumBestGenomesTracked int     `ini:"num_best_genomes_tracked"`
}

// SpeciesSetConfig holds parameters related to speciation.
type SpeciesSetConfig struct {
	CompatibilityThreshold float64 `ini:"compatibility_threshold"`
	// MaxNumberOfSpecies of 0 leaves the threshold fixed.
	MaxNumberOfSpecies  int     `ini:"max_number_of_species"`
	ExcessCoefficient   float64 `ini:"excess_coefficient"`
	DisjointCoefficient float64 `ini:"disjoint_coefficient"`
	MatchedCoefficient  float64 `ini:"matched_coefficient"`
}

// StagnationConfig holds the species age and stagnation parameters.
type StagnationConfig struct {
	NumGensAllowedNoImprovement int     `ini:"num_gens_allowed_no_improvement"`
	YoungBonusAgeThreshold      int     `ini:"young_bonus_age_threshold"`
	YoungFitnessBonus           float64 `ini:"young_fitness_bonus"`
	OldAgeThreshold             int     `ini:"old_age_threshold"`
	OldAgePenalty               float64 `ini:"old_age_penalty"`
}

// Coefficients returns the compatibility distance weights.
func (c SpeciesSetConfig) Coefficients() Coefficients {
	return Coefficients{Excess: c.ExcessCoefficient, Disjoint: c.DisjointCoefficient, Matched: c.MatchedCoefficient}
}

// DefaultConfig returns the standard parameter set. Input and output counts
// are left at zero and must be set by the caller.
func DefaultConfig() *Config {
	return &Config{
		Neat: NeatConfig{
			PopSize:            150,
			Seed:               1,
			Workers:            1,
			Snapshot:           true,
			ActivationFunction: "sigmoid",
		},
		Genome: GenomeConfig{
			ChanceAddNode:             0.04,
			ChanceAddLink:             0.07,
			ChanceAddRecurrentLink:    0.05,
			MutationRate:              0.2,
			ProbabilityWeightReplaced: 0.1,
			MaxWeightPerturbation:     0.5,
			ActivationMutationRate:    0.1,
			MaxActivationPerturbation: 0.1,
			MaxPermittedNeurons:       100,
			TriesFindLoop:             5,
			TriesAddLink:              5,
			TriesFindOldLink:          5,
		},
		Reproduction: ReproductionConfig{
			CrossoverRate:         0.7,
			SurvivalRate:          0.2,
			NumBestGenomesTracked: 4,
		},
		SpeciesSet: SpeciesSetConfig{
			CompatibilityThreshold: 0.26,
			MaxNumberOfSpecies:     0,
			ExcessCoefficient:      1.0,
			DisjointCoefficient:    1.0,
			MatchedCoefficient:     0.4,
		},
		Stagnation: StagnationConfig{
			NumGensAllowedNoImprovement: 15,
			YoungBonusAgeThreshold:      10,
			YoungFitnessBonus:           0.3,
			OldAgeThreshold:             50,
			OldAgePenalty:               0.3,
		},
	}
}

// LoadConfig loads configuration parameters from an INI file. Keys missing
// from the file keep their DefaultConfig values.
func LoadConfig(filePath string) (*Config, error) {
	config, err := loadConfig(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}
	return config, nil
}

// ParseConfig reads an INI document held in memory.
func ParseConfig(data []byte) (*Config, error) {
	return loadConfig(data)
}

func loadConfig(source any) (*Config, error) {
	cfg, err := ini.Load(source)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	sections := []struct {
		name   string
		target any
	}{
		{"NEAT", &config.Neat},
		{"DefaultGenome", &config.Genome},
		{"DefaultReproduction", &config.Reproduction},
		{"DefaultSpeciesSet", &config.SpeciesSet},
		{"DefaultStagnation", &config.Stagnation},
	}
	for _, s := range sections {
		if err := cfg.Section(s.name).MapTo(s.target); err != nil {
			return nil, fmt.Errorf("failed to map [%s] section: %w", s.name, err)
		}
	}
	config.Neat.ActivationFunction = strings.ToLower(strings.TrimSpace(config.Neat.ActivationFunction))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate reports the first invalid setting as a *ConfigError.
func (c *Config) Validate() error {
	if c.Neat.PopSize <= 0 {
		return configErrorf("pop_size", "must be positive")
	}
	if c.Neat.InputCount <= 0 {
		return configErrorf("input_count", "must be positive")
	}
	if c.Neat.OutputCount <= 0 {
		return configErrorf("output_count", "must be positive")
	}
	if c.Neat.Workers < 0 {
		return configErrorf("workers", "cannot be negative")
	}
	if _, err := nn.Activation(c.Neat.ActivationFunction); err != nil {
		return configErrorf("activation_function", "must be one of %v", nn.ActivationNames())
	}

	probabilities := []struct {
		name  string
		value float64
	}{
		{"chance_add_node", c.Genome.ChanceAddNode},
		{"chance_add_link", c.Genome.ChanceAddLink},
		{"chance_add_recurrent_link", c.Genome.ChanceAddRecurrentLink},
		{"mutation_rate", c.Genome.MutationRate},
		{"probability_weight_replaced", c.Genome.ProbabilityWeightReplaced},
		{"activation_mutation_rate", c.Genome.ActivationMutationRate},
		{"crossover_rate", c.Reproduction.CrossoverRate},
		{"survival_rate", c.Reproduction.SurvivalRate},
		{"young_fitness_bonus", c.Stagnation.YoungFitnessBonus},
		{"old_age_penalty", c.Stagnation.OldAgePenalty},
	}
	for _, p := range probabilities {
		if p.value < 0 || p.value > 1 {
			return configErrorf(p.name, "must be between 0 and 1")
		}
	}

	if c.Genome.MaxWeightPerturbation < 0 {
		return configErrorf("max_weight_perturbation", "cannot be negative")
	}
	if c.Genome.MaxActivationPerturbation < 0 {
		return configErrorf("max_activation_perturbation", "cannot be negative")
	}
	if c.Genome.MaxPermittedNeurons <= 0 {
		return configErrorf("max_permitted_neurons", "must be positive")
	}
	if c.Genome.TriesFindLoop < 0 || c.Genome.TriesAddLink < 0 || c.Genome.TriesFindOldLink < 0 {
		return configErrorf("tries_*", "cannot be negative")
	}
	if c.Reproduction.NumBestGenomesTracked <= 0 {
		return configErrorf("num_best_genomes_tracked", "must be positive")
	}
	if c.SpeciesSet.CompatibilityThreshold < 0 {
		return configErrorf("compatibility_threshold", "cannot be negative")
	}
	if c.SpeciesSet.MaxNumberOfSpecies < 0 {
		return configErrorf("max_number_of_species", "cannot be negative")
	}
	if c.SpeciesSet.ExcessCoefficient < 0 || c.SpeciesSet.DisjointCoefficient < 0 || c.SpeciesSet.MatchedCoefficient < 0 {
		return configErrorf("compatibility coefficients", "cannot be negative")
	}
	if c.Stagnation.NumGensAllowedNoImprovement <= 0 {
		return configErrorf("num_gens_allowed_no_improvement", "must be positive")
	}
	return nil
}

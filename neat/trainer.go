package neat

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/baldhumanity/encog-neat/neat/nn"
)

// Trainer runs the generational loop. Each call to Iteration evaluates the
// current population, speciates it and replaces it with the next generation.
type Trainer struct {
	Config     *Config
	Population *Population
	Score      CalculateScore
	Reporters  ReporterSet

	rng        *rand.Rand
	cmp        Comparator
	activation nn.ActivationFunc

	threshold       float64
	bestEverFitness float64
	hasBestEver     bool
	bestGenomes     []*Genome
}

// NewTrainer validates cfg and score and creates the first generation.
// Configuration problems are returned as *ConfigError.
func NewTrainer(cfg *Config, score CalculateScore) (*Trainer, error) {
	t, err := newTrainer(cfg, score)
	if err != nil {
		return nil, err
	}
	t.rng = rand.New(rand.NewSource(cfg.Neat.Seed))
	t.Population = NewPopulation(cfg, t.rng)
	return t, nil
}

func newTrainer(cfg *Config, score CalculateScore) (*Trainer, error) {
	if cfg == nil {
		return nil, configErrorf("config", "is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkScoreShape(score, cfg); err != nil {
		return nil, err
	}
	activation, err := nn.Activation(cfg.Neat.ActivationFunction)
	if err != nil {
		return nil, configErrorf("activation_function", "%v", err)
	}
	return &Trainer{
		Config:     cfg,
		Score:      score,
		cmp:        Comparator{Minimize: score.ShouldMinimize()},
		activation: activation,
		threshold:  cfg.SpeciesSet.CompatibilityThreshold,
	}, nil
}

// AddReporter registers a progress reporter.
func (t *Trainer) AddReporter(r Reporter) {
	t.Reporters.Add(r)
}

// Comparator returns the score ordering of the run.
func (t *Trainer) Comparator() Comparator {
	return t.cmp
}

// CompatibilityThreshold returns the current speciation threshold.
func (t *Trainer) CompatibilityThreshold() float64 {
	return t.threshold
}

// Iteration runs exactly one generation. An error leaves the current
// population in place; errors wrapping ErrInnovationMissing mean the run
// cannot continue.
func (t *Trainer) Iteration() error {
	start := time.Now()
	p := t.Population
	t.Reporters.StartGeneration(p.Generation)

	if err := t.evaluate(); err != nil {
		return fmt.Errorf("generation %d: %w", p.Generation, err)
	}
	t.sanitizeScores()
	recurrent := p.countRecurrentNetworks()
	t.resetAndKill()
	t.sortAndRecord()

	stats := generationStats(p.Generation, p.Genomes)
	stats.BestEverFitness = t.bestEverFitness
	stats.RecurrentNetworks = recurrent
	t.Reporters.PostEvaluate(stats, p.Genomes[0])

	t.speciateAndCalculateSpawnLevels()

	next, err := t.reproduce()
	if err != nil {
		return fmt.Errorf("generation %d: %w", p.Generation, err)
	}
	next = t.backfill(next)

	stats.SpeciesCount = len(p.Species)
	stats.CompatibilityThreshold = t.threshold
	stats.Innovations = p.Innovations.Len()
	stats.Elapsed = time.Since(start)

	p.Genomes = next
	p.Generation++
	t.Reporters.EndGeneration(stats)
	return nil
}

// evaluate decodes and scores every genome. With more than one worker the
// scores are computed concurrently; each genome is touched by one goroutine.
func (t *Trainer) evaluate() error {
	genomes := t.Population.Genomes
	if len(genomes) == 0 {
		return errors.New("population is empty")
	}
	workers := t.Config.Neat.Workers
	if workers <= 1 {
		for _, g := range genomes {
			if err := t.evaluateGenome(g); err != nil {
				return err
			}
		}
		return nil
	}

	p := pool.New().WithErrors().WithMaxGoroutines(workers)
	for _, g := range genomes {
		p.Go(func() error {
			return t.evaluateGenome(g)
		})
	}
	return p.Wait()
}

func (t *Trainer) evaluateGenome(g *Genome) error {
	net, err := g.cachedNetwork(t.activation, t.Config.Neat.Snapshot)
	if err != nil {
		return err
	}
	g.Fitness = t.Score.CalculateScore(net)
	return nil
}

// sanitizeScores replaces NaN, infinite and float-limit scores with the worst
// usable score of the generation. If no score is usable every genome gets
// the worst finite value for the run direction.
func (t *Trainer) sanitizeScores() {
	genomes := t.Population.Genomes
	worst, found := 0.0, false
	for _, g := range genomes {
		if !isUsableScore(g.Fitness) {
			continue
		}
		if !found || t.cmp.IsBetterThan(worst, g.Fitness) {
			worst, found = g.Fitness, true
		}
	}
	if !found {
		worst = -math.MaxFloat64
		if t.cmp.Minimize {
			worst = math.MaxFloat64
		}
	}
	for _, g := range genomes {
		if !isUsableScore(g.Fitness) {
			g.Fitness = worst
		}
	}
}

// resetAndKill empties the species, drops those that stagnated and clears
// the decoded networks of the evaluated generation.
func (t *Trainer) resetAndKill() {
	p := t.Population
	p.PurgeSpecies()
	removed := p.RemoveStagnant(t.Config.Stagnation.NumGensAllowedNoImprovement, t.bestEverFitness, t.hasBestEver, t.cmp)
	for _, s := range removed {
		t.Reporters.SpeciesRemoved(p.Generation, s, "stagnant")
	}
	p.ClearNetworks()
}

// sortAndRecord orders the population best first and updates the best-ever
// fitness and the tracked best genomes.
func (t *Trainer) sortAndRecord() {
	genomes := t.Population.Genomes
	sort.SliceStable(genomes, func(i, j int) bool {
		return t.cmp.IsBetterThan(genomes[i].Fitness, genomes[j].Fitness)
	})

	best := genomes[0]
	if !t.hasBestEver || t.cmp.IsBetterThan(best.Fitness, t.bestEverFitness) {
		t.bestEverFitness = best.Fitness
		t.hasBestEver = true
	}

	n := min(t.Config.Reproduction.NumBestGenomesTracked, len(genomes))
	t.bestGenomes = make([]*Genome, 0, n)
	for _, g := range genomes[:n] {
		t.bestGenomes = append(t.bestGenomes, cloneScored(g))
	}
}

// --------------------------- Results ---------------------------

// BestGenomes returns copies of the best genomes of the last completed
// generation, best first.
func (t *Trainer) BestGenomes() []*Genome {
	out := make([]*Genome, len(t.bestGenomes))
	for i, g := range t.bestGenomes {
		out[i] = cloneScored(g)
	}
	return out
}

// BestNetwork decodes the top genome of the last completed generation.
func (t *Trainer) BestNetwork() (*nn.Network, error) {
	if len(t.bestGenomes) == 0 {
		return nil, ErrNoGeneration
	}
	return t.bestGenomes[0].Decode(t.activation, t.Config.Neat.Snapshot)
}

// Error returns the fitness of the top genome of the last completed
// generation. Whether lower is better depends on the score.
func (t *Trainer) Error() (float64, error) {
	if len(t.bestGenomes) == 0 {
		return 0, ErrNoGeneration
	}
	return t.bestGenomes[0].Fitness, nil
}

// BestEverFitness returns the best fitness seen in the run.
func (t *Trainer) BestEverFitness() (float64, bool) {
	return t.bestEverFitness, t.hasBestEver
}

// cloneScored copies a genome keeping its id and scores.
func cloneScored(g *Genome) *Genome {
	c := g.Clone(g.ID)
	c.Fitness = g.Fitness
	c.AdjustedFitness = g.AdjustedFitness
	c.AmountToSpawn = g.AmountToSpawn
	return c
}

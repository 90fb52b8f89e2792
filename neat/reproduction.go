package neat

import (
	"math"
)

// maxCrossoverPartnerTries bounds the search for a second, distinct parent.
const maxCrossoverPartnerTries = 5

// speciateAndCalculateSpawnLevels assigns every genome to a species, adapts
// the threshold and computes how many offspring each species may produce.
func (t *Trainer) speciateAndCalculateSpawnLevels() {
	p := t.Population
	coefficients := t.Config.SpeciesSet.Coefficients()
	for _, g := range p.Genomes {
		p.AssignToSpecies(g, t.threshold, coefficients, t.cmp)
	}
	for _, s := range p.removeEmptySpecies() {
		t.Reporters.SpeciesRemoved(p.Generation, s, "empty")
	}
	t.threshold = AdjustCompatibilityThreshold(t.threshold, len(p.Species), t.Config.SpeciesSet.MaxNumberOfSpecies)

	normalize := fitnessNormalizer(p.Genomes, t.cmp)
	for _, s := range p.Species {
		s.AdjustFitness(normalize, &t.Config.Stagnation)
	}

	total := 0.0
	for _, g := range p.Genomes {
		total += g.AdjustedFitness
	}
	average := total / float64(len(p.Genomes))
	for _, g := range p.Genomes {
		if average > 0 {
			g.AmountToSpawn = g.AdjustedFitness / average
		} else {
			g.AmountToSpawn = 1
		}
	}

	for _, s := range p.Species {
		s.CalculateSpawnAmount()
		s.sortMembers(t.cmp)
	}
}

// fitnessNormalizer maps raw fitness onto [0, 1] where 1 is the best score in
// the population and 0 the worst, so that fitness sharing works the same way
// for minimizing and maximizing runs and for negative scores. Unusable
// scores are left out of the range and normalize to 0.
func fitnessNormalizer(genomes []*Genome, cmp Comparator) func(float64) float64 {
	fitnesses := make([]float64, 0, len(genomes))
	for _, g := range genomes {
		if isUsableScore(g.Fitness) {
			fitnesses = append(fitnesses, g.Fitness)
		}
	}
	lo, hi := MinFloat(fitnesses), MaxFloat(fitnesses)
	span := hi - lo
	if span <= 0 || math.IsInf(span, 0) || math.IsNaN(span) {
		return func(float64) float64 { return 0 }
	}
	return func(f float64) float64 {
		if !isUsableScore(f) {
			return 0
		}
		if cmp.Minimize {
			return (hi - f) / span
		}
		return (f - lo) / span
	}
}

// reproduce builds the next generation species by species. The first
// offspring of a species is a copy of its leader; the rest are mutated
// clones or crossover children of the species' best members.
func (t *Trainer) reproduce() ([]*Genome, error) {
	p := t.Population
	popSize := t.Config.Neat.PopSize
	next := make([]*Genome, 0, popSize)

	for _, s := range p.Species {
		if len(next) >= popSize {
			break
		}
		if s.Leader == nil || len(s.Members) == 0 {
			continue
		}

		numToSpawn := int(math.Round(s.SpawnAmount))
		for spawned := 0; spawned < numToSpawn && len(next) < popSize; spawned++ {
			if spawned == 0 {
				next = append(next, s.Leader.Clone(p.AssignGenomeID()))
				continue
			}
			baby, err := t.breed(s)
			if err != nil {
				return nil, err
			}
			if err := t.mutate(baby); err != nil {
				return nil, err
			}
			next = append(next, baby)
		}
	}
	return next, nil
}

func (t *Trainer) breed(s *Species) (*Genome, error) {
	p := t.Population
	survivalRate := t.Config.Reproduction.SurvivalRate

	if len(s.Members) == 1 || t.rng.Float64() >= t.Config.Reproduction.CrossoverRate {
		return s.ChooseParent(t.rng, survivalRate).Clone(p.AssignGenomeID()), nil
	}

	mom := s.ChooseParent(t.rng, survivalRate)
	var dad *Genome
	for tries := maxCrossoverPartnerTries; tries > 0; tries-- {
		if candidate := s.ChooseParent(t.rng, survivalRate); candidate.ID != mom.ID {
			dad = candidate
			break
		}
	}
	if dad == nil {
		return mom.Clone(p.AssignGenomeID()), nil
	}
	return Crossover(t.rng, p.Innovations, t.cmp, p.AssignGenomeID(), mom, dad)
}

// mutate applies the structural and parametric mutations in a fixed order.
func (t *Trainer) mutate(g *Genome) error {
	gc := &t.Config.Genome
	db := t.Population.Innovations
	if len(g.Neurons) < gc.MaxPermittedNeurons {
		if err := g.AddNeuron(t.rng, db, gc.ChanceAddNode, gc.TriesFindOldLink); err != nil {
			return err
		}
	}
	g.AddLink(t.rng, db, gc.ChanceAddLink, gc.ChanceAddRecurrentLink, gc.TriesFindLoop, gc.TriesAddLink)
	g.MutateWeights(t.rng, gc.MutationRate, gc.ProbabilityWeightReplaced, gc.MaxWeightPerturbation)
	g.MutateActivationResponse(t.rng, gc.ActivationMutationRate, gc.MaxActivationPerturbation)
	g.SortGenes()
	return nil
}

// backfill tops the next generation up to the population size with
// tournament winners from the current, already sorted generation.
func (t *Trainer) backfill(next []*Genome) []*Genome {
	p := t.Population
	sampleSize := max(1, t.Config.Neat.PopSize/5)
	for len(next) < t.Config.Neat.PopSize {
		winner := t.tournamentSelection(p.Genomes, sampleSize)
		next = append(next, winner.Clone(p.AssignGenomeID()))
	}
	return next
}

func (t *Trainer) tournamentSelection(genomes []*Genome, sampleSize int) *Genome {
	best := genomes[t.rng.Intn(len(genomes))]
	for i := 1; i < sampleSize; i++ {
		candidate := genomes[t.rng.Intn(len(genomes))]
		if t.cmp.IsBetterThan(candidate.Fitness, best.Fitness) {
			best = candidate
		}
	}
	return best
}

package neat

import (
	"math/rand"
	"sort"
)

// Species represents a group of genetically similar genomes. It does not own
// its genomes: the leader and members point into the population.
type Species struct {
	ID                int
	Leader            *Genome
	Members           []*Genome
	BestFitness       float64
	GensNoImprovement int
	Age               int
	SpawnAmount       float64
}

// NewSpecies starts a species with first as its leader and only member.
func NewSpecies(id int, first *Genome) *Species {
	first.SpeciesID = id
	return &Species{
		ID:          id,
		Leader:      first,
		Members:     []*Genome{first},
		BestFitness: first.Fitness,
	}
}

// AddMember appends a genome. A genome better than the species best becomes
// the leader and resets the stagnation counter.
func (s *Species) AddMember(g *Genome, cmp Comparator) {
	if cmp.IsBetterThan(g.Fitness, s.BestFitness) {
		s.BestFitness = g.Fitness
		s.GensNoImprovement = 0
		s.Leader = g
	}
	g.SpeciesID = s.ID
	s.Members = append(s.Members, g)
}

// Purge empties the member list at the start of a generation and ages the
// species. The leader and best fitness are kept.
func (s *Species) Purge() {
	s.Members = s.Members[:0]
	s.Age++
	s.GensNoImprovement++
	s.SpawnAmount = 0
}

// CalculateSpawnAmount sums the members' spawn amounts.
func (s *Species) CalculateSpawnAmount() {
	s.SpawnAmount = 0
	for _, g := range s.Members {
		s.SpawnAmount += g.AmountToSpawn
	}
}

// sortMembers orders members best first.
func (s *Species) sortMembers(cmp Comparator) {
	sort.SliceStable(s.Members, func(i, j int) bool {
		return cmp.IsBetterThan(s.Members[i].Fitness, s.Members[j].Fitness)
	})
}

// ChooseParent picks uniformly among the best survivalRate share of members,
// which must be sorted best first.
func (s *Species) ChooseParent(rng *rand.Rand, survivalRate float64) *Genome {
	maxIndexSize := int(survivalRate*float64(len(s.Members))) + 1
	if maxIndexSize > len(s.Members) {
		maxIndexSize = len(s.Members)
	}
	return s.Members[rng.Intn(maxIndexSize)]
}

// --------------------------- Speciation helpers ---------------------------

// AdjustCompatibilityThreshold nudges the threshold by 0.01 to keep the
// species count between 2 and maxNumberOfSpecies. A max of 0 disables it.
func AdjustCompatibilityThreshold(threshold float64, speciesCount, maxNumberOfSpecies int) float64 {
	const thresholdIncrement = 0.01
	if maxNumberOfSpecies < 1 {
		return threshold
	}
	switch {
	case speciesCount > maxNumberOfSpecies:
		threshold += thresholdIncrement
	case speciesCount < 2:
		threshold -= thresholdIncrement
	}
	return threshold
}

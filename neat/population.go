package neat

import (
	"math/rand"

	"github.com/google/uuid"
)

// Population holds the genomes, species and innovation ledger of one run.
// It is owned by a single Trainer and is not safe for concurrent mutation.
type Population struct {
	RunID       string
	Genomes     []*Genome
	Species     []*Species
	Innovations *InnovationDB
	Generation  int

	nextGenomeID  int
	nextSpeciesID int
}

// NewPopulation creates the first generation: cfg.Neat.PopSize minimal
// genomes with random weights, all sharing the innovation ids of the minimal
// topology.
func NewPopulation(cfg *Config, rng *rand.Rand) *Population {
	p := &Population{RunID: uuid.NewString()}

	seed := NewMinimalGenome(0, cfg.Neat.InputCount, cfg.Neat.OutputCount, rng)
	p.Innovations = NewInnovationDB(seed)

	p.Genomes = make([]*Genome, 0, cfg.Neat.PopSize)
	for i := 0; i < cfg.Neat.PopSize; i++ {
		p.Genomes = append(p.Genomes, NewMinimalGenome(p.AssignGenomeID(), cfg.Neat.InputCount, cfg.Neat.OutputCount, rng))
	}
	return p
}

// AssignGenomeID returns the next unused genome id.
func (p *Population) AssignGenomeID() int {
	id := p.nextGenomeID
	p.nextGenomeID++
	return id
}

// AssignSpeciesID returns the next unused species id.
func (p *Population) AssignSpeciesID() int {
	id := p.nextSpeciesID
	p.nextSpeciesID++
	return id
}

// AssignToSpecies places g in the first species, in creation order, whose
// leader is within threshold. A genome that fits nowhere founds a new species.
func (p *Population) AssignToSpecies(g *Genome, threshold float64, c Coefficients, cmp Comparator) *Species {
	for _, s := range p.Species {
		if g.CompatibilityScore(s.Leader, c) <= threshold {
			s.AddMember(g, cmp)
			return s
		}
	}
	s := NewSpecies(p.AssignSpeciesID(), g)
	p.Species = append(p.Species, s)
	return s
}

// PurgeSpecies empties every species ahead of a new speciation pass.
func (p *Population) PurgeSpecies() {
	for _, s := range p.Species {
		s.Purge()
	}
}

// removeEmptySpecies drops species that received no members in the last
// speciation pass.
func (p *Population) removeEmptySpecies() []*Species {
	var removed []*Species
	kept := p.Species[:0]
	for _, s := range p.Species {
		if len(s.Members) == 0 {
			removed = append(removed, s)
			continue
		}
		kept = append(kept, s)
	}
	p.Species = kept
	return removed
}

// countRecurrentNetworks counts the decoded phenotypes that contain a loop.
func (p *Population) countRecurrentNetworks() int {
	n := 0
	for _, g := range p.Genomes {
		if g.network != nil && g.network.Cyclic() {
			n++
		}
	}
	return n
}

// ClearNetworks drops every cached phenotype.
func (p *Population) ClearNetworks() {
	for _, g := range p.Genomes {
		g.ClearNetwork()
	}
}

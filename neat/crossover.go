package neat

import (
	"fmt"
	"math/rand"
	"sort"
)

// Crossover mates two genomes whose links are sorted by innovation id.
//
// The better parent is the one with the better fitness; ties go to the parent
// with fewer links, then to a coin flip. Matching genes are taken from either
// parent at random. Disjoint and excess genes are inherited only from the
// better parent. The child's neurons are rebuilt from the innovation ledger
// for every neuron its links reference, plus the fixed input, bias and
// output neurons.
func Crossover(rng *rand.Rand, db *InnovationDB, cmp Comparator, childID int, mom, dad *Genome) (*Genome, error) {
	best := betterParent(rng, cmp, mom, dad)

	links := make([]LinkGene, 0, max(len(mom.Links), len(dad.Links)))
	neuronIDs := make(map[int]struct{})
	for id := 0; id < mom.InputCount+mom.OutputCount+1; id++ {
		neuronIDs[id] = struct{}{}
	}

	m, d := 0, 0
	for m < len(mom.Links) || d < len(dad.Links) {
		var (
			selected LinkGene
			take     bool
		)
		switch {
		case m == len(mom.Links):
			selected, take = dad.Links[d], best == dad
			d++
		case d == len(dad.Links):
			selected, take = mom.Links[m], best == mom
			m++
		case mom.Links[m].InnovationID < dad.Links[d].InnovationID:
			selected, take = mom.Links[m], best == mom
			m++
		case dad.Links[d].InnovationID < mom.Links[m].InnovationID:
			selected, take = dad.Links[d], best == dad
			d++
		default:
			if rng.Float64() < 0.5 {
				selected = mom.Links[m]
			} else {
				selected = dad.Links[d]
			}
			take = true
			m++
			d++
		}

		if !take {
			continue
		}
		if n := len(links); n > 0 && links[n-1].InnovationID == selected.InnovationID {
			continue
		}
		links = append(links, selected)
		neuronIDs[selected.FromNeuronID] = struct{}{}
		neuronIDs[selected.ToNeuronID] = struct{}{}
	}

	ids := make([]int, 0, len(neuronIDs))
	for id := range neuronIDs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	other := dad
	if best == dad {
		other = mom
	}
	neurons := make([]NeuronGene, 0, len(ids))
	for _, id := range ids {
		gene, err := db.CreateNeuronFromID(id)
		if err != nil {
			return nil, fmt.Errorf("crossover of genomes %d and %d: %w", mom.ID, dad.ID, err)
		}
		// Keep the evolved response and recurrence of a parent that has the neuron.
		if idx := best.neuronIndex(id); idx >= 0 {
			gene.ActivationResponse = best.Neurons[idx].ActivationResponse
			gene.Recurrent = best.Neurons[idx].Recurrent
		} else if idx := other.neuronIndex(id); idx >= 0 {
			gene.ActivationResponse = other.Neurons[idx].ActivationResponse
			gene.Recurrent = other.Neurons[idx].Recurrent
		}
		neurons = append(neurons, gene)
	}

	return NewGenome(childID, neurons, links, mom.InputCount, mom.OutputCount), nil
}

func betterParent(rng *rand.Rand, cmp Comparator, mom, dad *Genome) *Genome {
	if mom.Fitness == dad.Fitness {
		switch {
		case len(mom.Links) < len(dad.Links):
			return mom
		case len(dad.Links) < len(mom.Links):
			return dad
		case rng.Float64() < 0.5:
			return mom
		default:
			return dad
		}
	}
	if cmp.IsBetterThan(mom.Fitness, dad.Fitness) {
		return mom
	}
	return dad
}

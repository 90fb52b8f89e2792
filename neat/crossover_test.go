package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/encog-neat/neat/nn"
)

func requireClosed(t *testing.T, g *Genome) {
	t.Helper()
	ids := make(map[int]bool, len(g.Neurons))
	for _, n := range g.Neurons {
		ids[n.ID] = true
	}
	for _, l := range g.Links {
		require.True(t, ids[l.FromNeuronID], "link %d references missing neuron %d", l.InnovationID, l.FromNeuronID)
		require.True(t, ids[l.ToNeuronID], "link %d references missing neuron %d", l.InnovationID, l.ToNeuronID)
	}
}

func TestCrossoverNeuronClosure(t *testing.T) {
	rng := testRandom()
	base := NewMinimalGenome(0, 2, 1, rng)
	db := NewInnovationDB(base)
	cmp := Comparator{}

	// Two lineages that share the minimal topology and then diverge.
	mom, dad := base.Clone(1), base.Clone(2)
	for i := 0; i < 6; i++ {
		require.NoError(t, mom.AddNeuron(rng, db, 0.7, 5))
		mom.AddLink(rng, db, 0.7, 0.1, 5, 5)
		require.NoError(t, dad.AddNeuron(rng, db, 0.7, 5))
		dad.AddLink(rng, db, 0.7, 0.1, 5, 5)
	}
	mom.SortGenes()
	dad.SortGenes()

	for i, fitness := range [][2]float64{{1, 0}, {0, 1}, {0.5, 0.5}} {
		mom.Fitness, dad.Fitness = fitness[0], fitness[1]
		child, err := Crossover(rng, db, cmp, 10+i, mom, dad)
		require.NoError(t, err)
		requireClosed(t, child)

		assert.IsNonDecreasing(t, linkIDs(child))
		for j := 0; j < 4; j++ {
			assert.Equal(t, j, child.Neurons[j].ID, "fixed neurons come first")
		}
		_, err = child.Decode(nn.Sigmoid, true)
		require.NoError(t, err)
	}
}

func TestCrossoverDropsGenesOfWorseParent(t *testing.T) {
	rng := testRandom()
	base := NewMinimalGenome(0, 1, 1, rng)
	db := NewInnovationDB(base)

	mom := base.Clone(1)
	dad := base.Clone(2)
	require.NoError(t, dad.AddNeuron(rng, db, 1, 5))
	dad.SortGenes()

	mom.Fitness, dad.Fitness = 2, 1
	child, err := Crossover(rng, db, Comparator{}, 3, mom, dad)
	require.NoError(t, err)
	assert.Equal(t, linkIDs(mom), linkIDs(child))
	assert.Len(t, child.Neurons, 3)

	mom.Fitness, dad.Fitness = 1, 2
	child, err = Crossover(rng, db, Comparator{}, 4, mom, dad)
	require.NoError(t, err)
	assert.Equal(t, linkIDs(dad), linkIDs(child))
	assert.Len(t, child.Neurons, 4)

	// When minimizing the lower score is the better parent.
	child, err = Crossover(rng, db, Comparator{Minimize: true}, 5, mom, dad)
	require.NoError(t, err)
	assert.Equal(t, linkIDs(mom), linkIDs(child))
}

func TestCrossoverTieFavoursSmallerGenome(t *testing.T) {
	rng := testRandom()
	base := NewMinimalGenome(0, 1, 1, rng)
	db := NewInnovationDB(base)

	small := base.Clone(1)
	large := base.Clone(2)
	require.NoError(t, large.AddNeuron(rng, db, 1, 5))
	large.SortGenes()

	child, err := Crossover(rng, db, Comparator{}, 3, large, small)
	require.NoError(t, err)
	assert.Equal(t, linkIDs(small), linkIDs(child))
}

func TestCrossoverKeepsEvolvedResponse(t *testing.T) {
	rng := testRandom()
	mom := NewMinimalGenome(1, 2, 1, rng)
	db := NewInnovationDB(mom)
	dad := mom.Clone(2)
	mom.Neurons[3].ActivationResponse = 1.7
	mom.Fitness, dad.Fitness = 1, 0

	child, err := Crossover(rng, db, Comparator{}, 3, mom, dad)
	require.NoError(t, err)
	assert.Equal(t, 1.7, child.Neurons[3].ActivationResponse)
}

func TestCrossoverAbortsOnMissingNeuronRecord(t *testing.T) {
	rng := testRandom()
	base := NewMinimalGenome(0, 1, 1, rng)
	full := NewInnovationDB(base)
	mom := base.Clone(1)
	require.NoError(t, mom.AddNeuron(rng, full, 1, 5))
	mom.SortGenes()
	mom.Fitness = 1

	// A ledger that only knows the minimal topology.
	partial := NewInnovationDB(base)
	_, err := Crossover(rng, partial, Comparator{}, 2, mom, base.Clone(3))
	assert.ErrorIs(t, err, ErrInnovationMissing)
}

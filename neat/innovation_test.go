package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInnovationDBSeedsMinimalTopology(t *testing.T) {
	seed := NewMinimalGenome(0, 2, 1, testRandom())
	db := NewInnovationDB(seed)

	// 4 neurons and 3 links
	assert.Equal(t, 7, db.Len())
	nextInnovation, nextNeuron := db.Counters()
	assert.Equal(t, 7, nextInnovation)
	assert.Equal(t, 4, nextNeuron)

	for _, l := range seed.Links {
		inn, ok := db.CheckInnovation(l.FromNeuronID, l.ToNeuronID, NewLink)
		require.True(t, ok)
		assert.Equal(t, l.InnovationID, inn.ID)
	}
}

func TestLinkInnovationIsDeterministic(t *testing.T) {
	db := NewInnovationDB(NewMinimalGenome(0, 2, 1, testRandom()))

	first := db.LinkInnovation(3, 0)
	second := db.LinkInnovation(3, 0)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 7, first.ID)

	other := db.LinkInnovation(3, 1)
	assert.Equal(t, first.ID+1, other.ID)

	checked, ok := db.CheckInnovation(3, 0, NewLink)
	require.True(t, ok)
	assert.Equal(t, first, checked)
	_, ok = db.CheckInnovation(3, 0, NewNeuron)
	assert.False(t, ok)
}

func TestSplitLinkReusesRecords(t *testing.T) {
	db := NewInnovationDB(NewMinimalGenome(0, 2, 1, testRandom()))

	split, err := db.SplitLink(0, 3, 0.1, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 4, split.Neuron.NeuronID)
	assert.Equal(t, HiddenNeuron, split.Neuron.NeuronType)
	assert.Equal(t, split.Neuron.ID+1, split.In.ID)
	assert.Equal(t, split.Neuron.ID+2, split.Out.ID)

	again, err := db.SplitLink(0, 3, 0.9, 0.9)
	require.NoError(t, err)
	assert.Equal(t, split, again)
	assert.Equal(t, 10, db.Len())

	gene, err := db.CreateNeuronFromID(4)
	require.NoError(t, err)
	assert.Equal(t, 0.5, gene.SplitY)
	assert.Equal(t, 1.0, gene.ActivationResponse)
}

func TestLedgerInconsistencyIsReported(t *testing.T) {
	db := RestoreInnovationDB([]Innovation{
		{ID: 0, Type: NewNeuron, FromNeuronID: 0, ToNeuronID: 2, NeuronID: 3, NeuronType: HiddenNeuron, SplitY: 0.5},
	}, 1, 4)

	_, err := db.SplitLink(0, 2, 0.5, 0.5)
	assert.ErrorIs(t, err, ErrInnovationMissing)

	_, err = db.CreateNeuronFromID(99)
	assert.ErrorIs(t, err, ErrInnovationMissing)
}

func TestInnovationsReturnsCopy(t *testing.T) {
	db := NewInnovationDB(NewMinimalGenome(0, 1, 1, testRandom()))
	records := db.Innovations()
	records[0].NeuronID = 1000
	assert.NotEqual(t, 1000, db.Innovations()[0].NeuronID)
}

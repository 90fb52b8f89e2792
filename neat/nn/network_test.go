package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// xorShape builds inputs 0 and 1, bias 2, output 3 and hidden 4.
func xorShape(t *testing.T, snapshot bool) *Network {
	t.Helper()
	net := NewNetwork(2, 1, 3, Identity)
	net.Snapshot = snapshot
	for _, n := range []struct {
		id int
		t  NeuronType
	}{{0, Input}, {1, Input}, {2, Bias}, {3, Output}, {4, Hidden}} {
		_, err := net.AddNeuron(n.id, n.t, 1)
		require.NoError(t, err)
	}
	require.NoError(t, net.Connect(0, 4, 1, false))
	require.NoError(t, net.Connect(1, 4, 1, false))
	require.NoError(t, net.Connect(2, 4, 0.5, false))
	require.NoError(t, net.Connect(4, 3, 2, false))
	return net
}

func TestComputeSinglePass(t *testing.T) {
	net := NewNetwork(2, 1, 2, Identity)
	_, err := net.AddNeuron(0, Input, 1)
	require.NoError(t, err)
	_, err = net.AddNeuron(1, Input, 1)
	require.NoError(t, err)
	_, err = net.AddNeuron(2, Bias, 1)
	require.NoError(t, err)
	_, err = net.AddNeuron(3, Output, 2)
	require.NoError(t, err)
	require.NoError(t, net.Connect(0, 3, 1, false))
	require.NoError(t, net.Connect(1, 3, -1, false))
	require.NoError(t, net.Connect(2, 3, 0.5, false))

	out, err := net.Compute([]float64{3, 1})
	require.NoError(t, err)
	require.Len(t, out, 1)
	// (3 - 1 + 0.5) / response 2
	assert.InDelta(t, 1.25, out[0], 1e-12)

	again, err := net.Compute([]float64{3, 1})
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestComputeRejectsWrongInputWidth(t *testing.T) {
	net := xorShape(t, false)
	_, err := net.Compute([]float64{1})
	assert.Error(t, err)
}

func TestSnapshotSettlesHiddenNeurons(t *testing.T) {
	// The hidden neuron comes after the output in the arena, so a single
	// pass reads its stale value.
	single := xorShape(t, false)
	out, err := single.Compute([]float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0, out[0], 1e-12)

	snap := xorShape(t, true)
	out, err = snap.Compute([]float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 5, out[0], 1e-12)
	for _, n := range snap.Neurons {
		assert.Zero(t, n.Output, "neuron %d keeps state after a snapshot compute", n.ID)
	}

	again, err := snap.Compute([]float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestAddNeuronAndConnectErrors(t *testing.T) {
	net := NewNetwork(1, 1, 2, Sigmoid)
	_, err := net.AddNeuron(0, Input, 1)
	require.NoError(t, err)
	_, err = net.AddNeuron(0, Output, 1)
	assert.Error(t, err)
	assert.Error(t, net.Connect(0, 9, 1, false))
	assert.Error(t, net.Connect(9, 0, 1, false))

	n, ok := net.Neuron(0)
	require.True(t, ok)
	assert.Equal(t, Input, n.Type)
	_, ok = net.Neuron(9)
	assert.False(t, ok)
}

func TestCyclicAndTopologicalOrder(t *testing.T) {
	net := xorShape(t, false)
	assert.False(t, net.Cyclic())
	order, err := net.TopologicalOrder()
	require.NoError(t, err)
	pos := make(map[int]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	assert.Less(t, pos[0], pos[4])
	assert.Less(t, pos[2], pos[4])
	assert.Less(t, pos[4], pos[3])

	require.NoError(t, net.Connect(3, 4, 0.1, true))
	assert.True(t, net.Cyclic())
	_, err = net.TopologicalOrder()
	assert.Error(t, err)

	self := xorShape(t, false)
	require.NoError(t, self.Connect(4, 4, 0.3, true))
	assert.True(t, self.Cyclic())
}

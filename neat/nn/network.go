// Package nn holds the executable form of a NEAT genome.
//
// A Network keeps its neurons in a flat slice (the arena) and its links in a
// second slice. Links refer to neurons by index and neurons refer to links by
// index, so the graph carries no pointer cycles. The order of the neuron slice
// is significant: input neurons come first, then the bias neuron, then output
// and hidden neurons in the order they were added.
package nn

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// NeuronType is the role a neuron plays in the network.
type NeuronType int

const (
	Input NeuronType = iota
	Bias
	Hidden
	Output
)

func (t NeuronType) String() string {
	switch t {
	case Input:
		return "input"
	case Bias:
		return "bias"
	case Hidden:
		return "hidden"
	case Output:
		return "output"
	}
	return fmt.Sprintf("NeuronType(%d)", int(t))
}

// Neuron is a single node of the network.
type Neuron struct {
	ID                 int
	Type               NeuronType
	ActivationResponse float64
	Output             float64
	Inbound            []int // indexes into Network.Links
	Outbound           []int
}

// Link is a weighted, directed edge between two neurons.
type Link struct {
	From      int // index into Network.Neurons
	To        int
	Weight    float64
	Recurrent bool
}

// Network is a decoded genome that can be evaluated.
type Network struct {
	InputCount  int
	OutputCount int
	// Depth is the estimated number of layers; snapshot mode runs this many passes.
	Depth int
	// Snapshot lets activation settle through recurrent and hidden neurons
	// before outputs are read, then clears all neuron state.
	Snapshot   bool
	Activation ActivationFunc
	Neurons    []Neuron
	Links      []Link

	index map[int]int // neuron id -> position in Neurons
}

// NewNetwork creates an empty network. Neurons must be added with AddNeuron
// before they are connected.
func NewNetwork(inputCount, outputCount, depth int, activation ActivationFunc) *Network {
	return &Network{
		InputCount:  inputCount,
		OutputCount: outputCount,
		Depth:       depth,
		Activation:  activation,
		index:       make(map[int]int),
	}
}

// AddNeuron appends a neuron to the arena and returns its index.
func (n *Network) AddNeuron(id int, t NeuronType, activationResponse float64) (int, error) {
	if _, exists := n.index[id]; exists {
		return -1, fmt.Errorf("duplicate neuron id %d", id)
	}
	n.Neurons = append(n.Neurons, Neuron{
		ID:                 id,
		Type:               t,
		ActivationResponse: activationResponse,
	})
	pos := len(n.Neurons) - 1
	n.index[id] = pos
	return pos, nil
}

// Connect adds a link between two neurons identified by id.
func (n *Network) Connect(fromID, toID int, weight float64, recurrent bool) error {
	from, ok := n.index[fromID]
	if !ok {
		return fmt.Errorf("link %d->%d: unknown source neuron %d", fromID, toID, fromID)
	}
	to, ok := n.index[toID]
	if !ok {
		return fmt.Errorf("link %d->%d: unknown target neuron %d", fromID, toID, toID)
	}
	n.Links = append(n.Links, Link{From: from, To: to, Weight: weight, Recurrent: recurrent})
	li := len(n.Links) - 1
	n.Neurons[from].Outbound = append(n.Neurons[from].Outbound, li)
	n.Neurons[to].Inbound = append(n.Neurons[to].Inbound, li)
	return nil
}

// Neuron returns the neuron with the given id.
func (n *Network) Neuron(id int) (*Neuron, bool) {
	pos, ok := n.index[id]
	if !ok {
		return nil, false
	}
	return &n.Neurons[pos], true
}

// Compute runs the network on one input vector and returns the outputs of the
// output neurons in the order they appear in the arena.
//
// Without snapshot mode a single pass is made and neuron outputs persist
// between calls, which is how recurrent links carry state. In snapshot mode
// Depth passes are made and every output is reset to zero afterwards.
func (n *Network) Compute(input []float64) ([]float64, error) {
	if len(input) != n.InputCount {
		return nil, fmt.Errorf("mismatch between input count (%d) and network input neurons (%d)", len(input), n.InputCount)
	}

	flushCount := 1
	if n.Snapshot && n.Depth > 1 {
		flushCount = n.Depth
	}

	result := make([]float64, 0, n.OutputCount)
	for pass := 0; pass < flushCount; pass++ {
		result = result[:0]
		index := 0
		for index < len(n.Neurons) && n.Neurons[index].Type == Input {
			if index >= len(input) {
				return nil, fmt.Errorf("network has more input neurons than the %d declared", n.InputCount)
			}
			n.Neurons[index].Output = input[index]
			index++
		}
		if index < len(n.Neurons) && n.Neurons[index].Type == Bias {
			n.Neurons[index].Output = 1
			index++
		}

		for ; index < len(n.Neurons); index++ {
			neuron := &n.Neurons[index]
			sum := 0.0
			for _, li := range neuron.Inbound {
				link := n.Links[li]
				sum += link.Weight * n.Neurons[link.From].Output
			}
			neuron.Output = n.Activation(sum / neuron.ActivationResponse)
			if neuron.Type == Output {
				result = append(result, neuron.Output)
			}
		}
	}

	if n.Snapshot {
		n.Flush()
	}
	return result, nil
}

// Flush clears the recurrent state held in neuron outputs.
func (n *Network) Flush() {
	for i := range n.Neurons {
		n.Neurons[i].Output = 0
	}
}

// Cyclic reports whether any enabled link closes a loop, including self-loops.
func (n *Network) Cyclic() bool {
	for _, l := range n.Links {
		if l.From == l.To {
			return true
		}
	}
	_, err := topo.Sort(n.graph())
	return err != nil
}

// TopologicalOrder returns the neuron ids in feed-forward order. It fails for
// cyclic networks.
func (n *Network) TopologicalOrder() ([]int, error) {
	if n.Cyclic() {
		return nil, fmt.Errorf("network contains a cycle")
	}
	sorted, err := topo.SortStabilized(n.graph(), nil)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(sorted))
	for i, node := range sorted {
		ids[i] = n.Neurons[node.ID()].ID
	}
	return ids, nil
}

// graph builds a gonum view of the network with neuron indexes as node ids.
// Self-loops are left out because simple.DirectedGraph does not accept them.
func (n *Network) graph() *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	for i := range n.Neurons {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, l := range n.Links {
		if l.From == l.To {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(int64(l.From)), simple.Node(int64(l.To))))
	}
	return g
}

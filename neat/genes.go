package neat

import (
	"fmt"
	"math/rand"

	"github.com/baldhumanity/encog-neat/neat/nn"
)

// NeuronType is the role of a neuron gene.
type NeuronType int

const (
	InputNeuron NeuronType = iota
	BiasNeuron
	HiddenNeuron
	OutputNeuron
)

func (t NeuronType) String() string {
	return t.networkType().String()
}

// networkType maps the gene role onto the phenotype role.
func (t NeuronType) networkType() nn.NeuronType {
	switch t {
	case InputNeuron:
		return nn.Input
	case BiasNeuron:
		return nn.Bias
	case HiddenNeuron:
		return nn.Hidden
	case OutputNeuron:
		return nn.Output
	}
	panic(fmt.Sprintf("neat: unknown neuron type %d", int(t)))
}

// --------------------------- NeuronGene ---------------------------

// NeuronGene describes one neuron of a genome.
// SplitY is the layer position (0 = inputs, 1 = outputs); SplitX is the
// horizontal position within the layer.
type NeuronGene struct {
	ID                 int        `json:"id"`
	Type               NeuronType `json:"type"`
	SplitX             float64    `json:"split_x"`
	SplitY             float64    `json:"split_y"`
	ActivationResponse float64    `json:"activation_response"`
	Recurrent          bool       `json:"recurrent"`
}

// NewNeuronGene creates a neuron gene with a neutral activation response.
func NewNeuronGene(id int, t NeuronType, splitX, splitY float64) NeuronGene {
	return NeuronGene{
		ID:                 id,
		Type:               t,
		SplitX:             splitX,
		SplitY:             splitY,
		ActivationResponse: 1.0,
	}
}

func (ng NeuronGene) String() string {
	return fmt.Sprintf("NeuronGene(ID: %d, Type: %s, Split: %.3f/%.3f, Response: %.3f, Recurrent: %t)",
		ng.ID, ng.Type, ng.SplitX, ng.SplitY, ng.ActivationResponse, ng.Recurrent)
}

// --------------------------- LinkGene ---------------------------

// LinkGene describes one connection of a genome. Links are never removed from
// a genome; a deleted link is only disabled.
type LinkGene struct {
	FromNeuronID int     `json:"from"`
	ToNeuronID   int     `json:"to"`
	Weight       float64 `json:"weight"`
	Enabled      bool    `json:"enabled"`
	InnovationID int     `json:"innovation"`
	Recurrent    bool    `json:"recurrent"`
}

func (lg LinkGene) String() string {
	return fmt.Sprintf("LinkGene(Innovation: %d, %d->%d, Weight: %.3f, Enabled: %t, Recurrent: %t)",
		lg.InnovationID, lg.FromNeuronID, lg.ToNeuronID, lg.Weight, lg.Enabled, lg.Recurrent)
}

// randomClamped returns a uniform value in [-1, 1).
func randomClamped(rng *rand.Rand) float64 {
	return rng.Float64()*2 - 1
}

package neat

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/baldhumanity/encog-neat/neat/nn"
)

// Genome is the blueprint of one candidate network.
// Neurons are ordered inputs, bias, outputs, then hidden neurons; decoding
// relies on that order. Links must be sorted by innovation id before they are
// compared or crossed over.
type Genome struct {
	ID              int          `json:"id"`
	Neurons         []NeuronGene `json:"neurons"`
	Links           []LinkGene   `json:"links"`
	InputCount      int          `json:"input_count"`
	OutputCount     int          `json:"output_count"`
	Fitness         float64      `json:"fitness"`
	AdjustedFitness float64      `json:"adjusted_fitness"`
	AmountToSpawn   float64      `json:"amount_to_spawn"`
	SpeciesID       int          `json:"species_id"`
	NetworkDepth    int          `json:"network_depth"`

	network *nn.Network // decoded phenotype, dropped at the start of each generation
}

// Coefficients weight the three terms of the compatibility distance.
type Coefficients struct {
	Excess   float64
	Disjoint float64
	Matched  float64
}

// NewGenome wraps existing gene collections. The slices are owned by the genome.
func NewGenome(id int, neurons []NeuronGene, links []LinkGene, inputCount, outputCount int) *Genome {
	g := &Genome{
		ID:          id,
		Neurons:     neurons,
		Links:       links,
		InputCount:  inputCount,
		OutputCount: outputCount,
	}
	g.NetworkDepth = g.CalculateNetworkDepth()
	return g
}

// NewMinimalGenome builds the canonical starting topology: every input and
// the bias neuron fully connected to every output, weights uniform in [-1, 1].
//
// Neuron ids are 0..inputCount-1 for inputs, inputCount for the bias, and the
// following ids for outputs. Link innovation ids continue after the neuron
// ids, so every minimal genome of a run carries the same innovation ids.
func NewMinimalGenome(id, inputCount, outputCount int, rng *rand.Rand) *Genome {
	neurons := make([]NeuronGene, 0, inputCount+outputCount+1)
	inputSlice := 0.8 / float64(inputCount)
	for i := 0; i < inputCount; i++ {
		neurons = append(neurons, NewNeuronGene(i, InputNeuron, 0.1+float64(i)*inputSlice, 0))
	}
	neurons = append(neurons, NewNeuronGene(inputCount, BiasNeuron, 0.9, 0))
	outputSlice := 1 / float64(outputCount+1)
	for i := 0; i < outputCount; i++ {
		neurons = append(neurons, NewNeuronGene(inputCount+1+i, OutputNeuron, float64(i+1)*outputSlice, 1))
	}

	links := make([]LinkGene, 0, (inputCount+1)*outputCount)
	for i := 0; i < inputCount+1; i++ {
		for j := 0; j < outputCount; j++ {
			links = append(links, LinkGene{
				FromNeuronID: neurons[i].ID,
				ToNeuronID:   neurons[inputCount+1+j].ID,
				Weight:       randomClamped(rng),
				Enabled:      true,
				InnovationID: inputCount + outputCount + 1 + len(links),
			})
		}
	}
	return NewGenome(id, neurons, links, inputCount, outputCount)
}

// Clone returns a deep copy under a new id. Scores are not carried over.
func (g *Genome) Clone(id int) *Genome {
	neurons := make([]NeuronGene, len(g.Neurons))
	copy(neurons, g.Neurons)
	links := make([]LinkGene, len(g.Links))
	copy(links, g.Links)
	clone := NewGenome(id, neurons, links, g.InputCount, g.OutputCount)
	clone.SpeciesID = g.SpeciesID
	return clone
}

// neuronIndex returns the position of a neuron id, or -1.
func (g *Genome) neuronIndex(id int) int {
	for i := range g.Neurons {
		if g.Neurons[i].ID == id {
			return i
		}
	}
	return -1
}

func (g *Genome) hasNeuron(id int) bool {
	return g.neuronIndex(id) >= 0
}

// isDuplicateLink reports whether a link from -> to exists, enabled or not.
func (g *Genome) isDuplicateLink(fromID, toID int) bool {
	for _, l := range g.Links {
		if l.FromNeuronID == fromID && l.ToNeuronID == toID {
			return true
		}
	}
	return false
}

// chooseRandomNeuron returns the index of a random neuron. Without
// includeInput the inputs and the bias neuron are never chosen.
func (g *Genome) chooseRandomNeuron(rng *rand.Rand, includeInput bool) int {
	start := 0
	if !includeInput {
		start = g.InputCount + 1
	}
	if len(g.Neurons) <= start {
		return -1
	}
	return start + rng.Intn(len(g.Neurons)-start)
}

// AddLink may add one new link gene.
//
// With probability chanceOfLoop it looks for a hidden or output neuron that
// is not yet recurrent, marks it recurrent and gives it a self-link. Otherwise
// it tries up to triesAddLink random pairs that are distinct, not already
// linked, and do not end in the bias neuron. Finding nothing is not an error.
func (g *Genome) AddLink(rng *rand.Rand, db *InnovationDB, mutationRate, chanceOfLoop float64, triesFindLoop, triesAddLink int) {
	if rng.Float64() > mutationRate {
		return
	}

	fromID, toID := -1, -1
	recurrent := false

	if rng.Float64() < chanceOfLoop {
		for tries := triesFindLoop; tries > 0; tries-- {
			idx := g.chooseRandomNeuron(rng, false)
			if idx < 0 {
				break
			}
			n := &g.Neurons[idx]
			if n.Recurrent || n.Type == BiasNeuron || n.Type == InputNeuron || g.isDuplicateLink(n.ID, n.ID) {
				continue
			}
			n.Recurrent = true
			fromID, toID = n.ID, n.ID
			recurrent = true
			break
		}
	} else {
		for tries := triesAddLink; tries > 0; tries-- {
			i1 := g.chooseRandomNeuron(rng, true)
			i2 := g.chooseRandomNeuron(rng, false)
			if i1 < 0 || i2 < 0 {
				break
			}
			n1, n2 := g.Neurons[i1], g.Neurons[i2]
			if n1.ID == n2.ID || n2.Type == BiasNeuron || g.isDuplicateLink(n1.ID, n2.ID) {
				continue
			}
			fromID, toID = n1.ID, n2.ID
			break
		}
	}

	if fromID < 0 || toID < 0 {
		return
	}

	// A link pointing back toward the inputs is recurrent.
	if g.Neurons[g.neuronIndex(fromID)].SplitY > g.Neurons[g.neuronIndex(toID)].SplitY {
		recurrent = true
	}

	inn := db.LinkInnovation(fromID, toID)
	g.Links = append(g.Links, LinkGene{
		FromNeuronID: fromID,
		ToNeuronID:   toID,
		Weight:       randomClamped(rng),
		Enabled:      true,
		InnovationID: inn.ID,
		Recurrent:    recurrent,
	})
	g.network = nil
}

// AddNeuron may split one enabled, non-recurrent link that does not start at
// the bias neuron. The link is disabled and replaced by from -> new (weight 1)
// and new -> to (the old weight). Small genomes favour older links by drawing
// the candidate from the front of the link list.
//
// An error is returned only if the innovation ledger is inconsistent.
func (g *Genome) AddNeuron(rng *rand.Rand, db *InnovationDB, mutationRate float64, triesFindOldLink int) error {
	if len(g.Links) == 0 || rng.Float64() > mutationRate {
		return nil
	}

	chosen := -1
	sizeBias := g.InputCount + g.OutputCount + 10
	if len(g.Links) < sizeBias {
		upperLimit := len(g.Links) - 1 - int(math.Sqrt(float64(len(g.Links))))
		if upperLimit < 0 {
			upperLimit = 0
		}
		for tries := triesFindOldLink; tries > 0; tries-- {
			idx := rng.Intn(upperLimit + 1)
			if g.splittable(idx) {
				chosen = idx
				break
			}
		}
	} else {
		for tries := len(g.Links); tries > 0; tries-- {
			idx := rng.Intn(len(g.Links))
			if g.splittable(idx) {
				chosen = idx
				break
			}
		}
	}
	if chosen < 0 {
		return nil
	}

	link := g.Links[chosen]
	fromNeuron := g.Neurons[g.neuronIndex(link.FromNeuronID)]
	toNeuron := g.Neurons[g.neuronIndex(link.ToNeuronID)]

	// This genome already carries the neuron from an earlier split of the
	// same link, so there is nothing new to add.
	if prior, ok := db.CheckInnovation(link.FromNeuronID, link.ToNeuronID, NewNeuron); ok && g.hasNeuron(prior.NeuronID) {
		return nil
	}

	splitX := (fromNeuron.SplitX + toNeuron.SplitX) / 2
	splitY := (fromNeuron.SplitY + toNeuron.SplitY) / 2
	split, err := db.SplitLink(link.FromNeuronID, link.ToNeuronID, splitX, splitY)
	if err != nil {
		return fmt.Errorf("add neuron to genome %d: %w", g.ID, err)
	}

	g.Links[chosen].Enabled = false
	g.Neurons = append(g.Neurons, NewNeuronGene(split.Neuron.NeuronID, HiddenNeuron, split.Neuron.SplitX, split.Neuron.SplitY))
	g.Links = append(g.Links,
		LinkGene{
			FromNeuronID: link.FromNeuronID,
			ToNeuronID:   split.Neuron.NeuronID,
			Weight:       1.0,
			Enabled:      true,
			InnovationID: split.In.ID,
		},
		LinkGene{
			FromNeuronID: split.Neuron.NeuronID,
			ToNeuronID:   link.ToNeuronID,
			Weight:       link.Weight,
			Enabled:      true,
			InnovationID: split.Out.ID,
		},
	)
	g.network = nil
	return nil
}

func (g *Genome) splittable(idx int) bool {
	l := g.Links[idx]
	if !l.Enabled || l.Recurrent {
		return false
	}
	return g.Neurons[g.neuronIndex(l.FromNeuronID)].Type != BiasNeuron
}

// MutateWeights visits every link; with probability mutateRate the weight is
// either replaced by a fresh uniform value (probability probFullReplace) or
// nudged by up to maxPerturbation.
func (g *Genome) MutateWeights(rng *rand.Rand, mutateRate, probFullReplace, maxPerturbation float64) {
	for i := range g.Links {
		if rng.Float64() >= mutateRate {
			continue
		}
		if rng.Float64() < probFullReplace {
			g.Links[i].Weight = randomClamped(rng)
		} else {
			g.Links[i].Weight += randomClamped(rng) * maxPerturbation
		}
	}
	g.network = nil
}

// MutateActivationResponse nudges each neuron's response with probability mutateRate.
func (g *Genome) MutateActivationResponse(rng *rand.Rand, mutateRate, maxPerturbation float64) {
	for i := range g.Neurons {
		if rng.Float64() < mutateRate {
			g.Neurons[i].ActivationResponse += randomClamped(rng) * maxPerturbation
		}
	}
	g.network = nil
}

// CompatibilityScore is the distance between two genomes with sorted links.
// Lower is more similar and a genome scores 0 against itself.
//
// The excess and disjoint counts are divided by the link count of the longer
// genome as is, with no floor for small genomes.
func (g *Genome) CompatibilityScore(other *Genome, c Coefficients) float64 {
	var excess, disjoint, matched int
	weightDifference := 0.0

	i, j := 0, 0
	for i < len(g.Links) || j < len(other.Links) {
		switch {
		case i == len(g.Links):
			excess++
			j++
		case j == len(other.Links):
			excess++
			i++
		case g.Links[i].InnovationID == other.Links[j].InnovationID:
			matched++
			weightDifference += math.Abs(g.Links[i].Weight - other.Links[j].Weight)
			i++
			j++
		case g.Links[i].InnovationID < other.Links[j].InnovationID:
			disjoint++
			i++
		default:
			disjoint++
			j++
		}
	}

	longest := max(len(g.Links), len(other.Links))
	if longest == 0 {
		return 0
	}
	score := c.Excess*float64(excess)/float64(longest) + c.Disjoint*float64(disjoint)/float64(longest)
	if matched > 0 {
		score += c.Matched * weightDifference / float64(matched)
	}
	return score
}

// SortGenes orders the links by innovation id.
func (g *Genome) SortGenes() {
	sort.SliceStable(g.Links, func(i, j int) bool {
		return g.Links[i].InnovationID < g.Links[j].InnovationID
	})
}

// --------------------------- Network depth ---------------------------

const maxSplitDepth = 7

type splitDepth struct {
	value float64
	depth int
}

// splitDepths bisects [0, 1] recursively, tagging each midpoint with its level.
var splitDepths = buildSplitDepths(nil, 0, 1, 0)

func buildSplitDepths(out []splitDepth, low, high float64, depth int) []splitDepth {
	mid := low + (high-low)/2
	out = append(out, splitDepth{value: mid, depth: depth + 1})
	if depth+1 >= maxSplitDepth {
		return out
	}
	out = buildSplitDepths(out, low, mid, depth+1)
	return buildSplitDepths(out, mid, high, depth+1)
}

// CalculateNetworkDepth estimates the layer count from the neurons' SplitY
// values: 2 plus the deepest bisection level any neuron sits on.
func (g *Genome) CalculateNetworkDepth() int {
	deepest := 0
	for _, n := range g.Neurons {
		for _, s := range splitDepths {
			if n.SplitY == s.value && s.depth > deepest {
				deepest = s.depth
			}
		}
	}
	return deepest + 2
}

// --------------------------- Decoding ---------------------------

// Decode builds an executable network from the genome. Disabled links are
// skipped. The neuron order of the genome is kept.
func (g *Genome) Decode(activation nn.ActivationFunc, snapshot bool) (*nn.Network, error) {
	g.NetworkDepth = g.CalculateNetworkDepth()
	net := nn.NewNetwork(g.InputCount, g.OutputCount, g.NetworkDepth, activation)
	net.Snapshot = snapshot
	for _, n := range g.Neurons {
		if _, err := net.AddNeuron(n.ID, n.Type.networkType(), n.ActivationResponse); err != nil {
			return nil, fmt.Errorf("decode genome %d: %w", g.ID, err)
		}
	}
	for _, l := range g.Links {
		if !l.Enabled {
			continue
		}
		if err := net.Connect(l.FromNeuronID, l.ToNeuronID, l.Weight, l.Recurrent); err != nil {
			return nil, fmt.Errorf("decode genome %d: %w", g.ID, err)
		}
	}
	return net, nil
}

// cachedNetwork decodes once per generation.
func (g *Genome) cachedNetwork(activation nn.ActivationFunc, snapshot bool) (*nn.Network, error) {
	if g.network != nil {
		return g.network, nil
	}
	net, err := g.Decode(activation, snapshot)
	if err != nil {
		return nil, err
	}
	g.network = net
	return net, nil
}

// ClearNetwork drops the cached phenotype.
func (g *Genome) ClearNetwork() {
	g.network = nil
}

// EnabledLinks counts links that take part in the phenotype.
func (g *Genome) EnabledLinks() int {
	n := 0
	for _, l := range g.Links {
		if l.Enabled {
			n++
		}
	}
	return n
}

func (g *Genome) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Genome(ID: %d, Fitness: %.4f, Species: %d, Depth: %d)\n", g.ID, g.Fitness, g.SpeciesID, g.NetworkDepth)
	for _, n := range g.Neurons {
		fmt.Fprintf(&sb, "  %s\n", n)
	}
	for _, l := range g.Links {
		fmt.Fprintf(&sb, "  %s\n", l)
	}
	return sb.String()
}

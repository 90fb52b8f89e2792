package neat

import (
	"math/rand"

	"github.com/baldhumanity/encog-neat/neat/nn"
)

var (
	xorInputs  = [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	xorIdeals  = [][]float64{{0}, {1}, {1}, {0}}
	testSeed   = int64(42)
	testRandom = func() *rand.Rand { return rand.New(rand.NewSource(testSeed)) }
)

// negatedXOR scores a network by its negated squared error on XOR, so higher
// is better.
type negatedXOR struct{}

func (negatedXOR) CalculateScore(net *nn.Network) float64 {
	sse := 0.0
	for i, in := range xorInputs {
		out, err := net.Compute(in)
		if err != nil {
			return -100
		}
		d := out[0] - xorIdeals[i][0]
		sse += d * d
	}
	return -sse
}

func (negatedXOR) ShouldMinimize() bool { return false }

func testConfig(popSize int) *Config {
	cfg := DefaultConfig()
	cfg.Neat.PopSize = popSize
	cfg.Neat.InputCount = 2
	cfg.Neat.OutputCount = 1
	cfg.Neat.Seed = testSeed
	return cfg
}

// linkIDs returns the innovation ids of g's links in order.
func linkIDs(g *Genome) []int {
	ids := make([]int, len(g.Links))
	for i, l := range g.Links {
		ids[i] = l.InnovationID
	}
	return ids
}

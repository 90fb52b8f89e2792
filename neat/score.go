package neat

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/baldhumanity/encog-neat/neat/nn"
)

// CalculateScore is the external fitness function. ShouldMinimize must not
// change during a run. When Config.Neat.Workers > 1 CalculateScore is called
// from several goroutines at once.
type CalculateScore interface {
	CalculateScore(network *nn.Network) float64
	ShouldMinimize() bool
}

// Comparator orders scores in the direction of the run.
type Comparator struct {
	Minimize bool
}

// IsBetterThan reports whether a is strictly better than b.
func (c Comparator) IsBetterThan(a, b float64) bool {
	if c.Minimize {
		return a < b
	}
	return a > b
}

// BestScore returns the better of two scores.
func (c Comparator) BestScore(a, b float64) float64 {
	if c.IsBetterThan(b, a) {
		return b
	}
	return a
}

// WorstScore is a score every real score beats.
func (c Comparator) WorstScore() float64 {
	if c.Minimize {
		return math.Inf(1)
	}
	return math.Inf(-1)
}

// --------------------------- TrainingSetScore ---------------------------

// TrainingSetScore scores a network by its sum of squared errors over a set
// of supervised pairs. Lower is better. It only reads its data, so it is safe
// for concurrent use.
type TrainingSetScore struct {
	inputs [][]float64
	ideals [][]float64
}

// NewTrainingSetScore checks that every pair has the same input and ideal width.
func NewTrainingSetScore(inputs, ideals [][]float64) (*TrainingSetScore, error) {
	if len(inputs) == 0 {
		return nil, configErrorf("training set", "is empty")
	}
	if len(inputs) != len(ideals) {
		return nil, configErrorf("training set", "has %d inputs but %d ideals; every input needs a supervised target", len(inputs), len(ideals))
	}
	inWidth, idealWidth := len(inputs[0]), len(ideals[0])
	if inWidth == 0 || idealWidth == 0 {
		return nil, configErrorf("training set", "rows must not be empty")
	}
	for i := range inputs {
		if len(inputs[i]) != inWidth {
			return nil, configErrorf("training set", "input row %d has %d values, expected %d", i, len(inputs[i]), inWidth)
		}
		if len(ideals[i]) != idealWidth {
			return nil, configErrorf("training set", "ideal row %d has %d values, expected %d", i, len(ideals[i]), idealWidth)
		}
	}
	return &TrainingSetScore{inputs: inputs, ideals: ideals}, nil
}

// LoadTrainingSetCSV reads rows of inputCount inputs followed by idealCount
// ideals. A first row that does not parse as numbers is treated as a header.
func LoadTrainingSetCSV(r io.Reader, inputCount, idealCount int) (*TrainingSetScore, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = inputCount + idealCount
	reader.TrimLeadingSpace = true

	var inputs, ideals [][]float64
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, configErrorf("training set", "line %d: %v", line, err)
		}
		values := make([]float64, len(record))
		var parseErr error
		for i, field := range record {
			values[i], parseErr = strconv.ParseFloat(strings.TrimSpace(field), 64)
			if parseErr != nil {
				break
			}
		}
		if parseErr != nil {
			if line == 1 {
				continue
			}
			return nil, configErrorf("training set", "line %d: %v", line, parseErr)
		}
		inputs = append(inputs, values[:inputCount])
		ideals = append(ideals, values[inputCount:])
	}
	return NewTrainingSetScore(inputs, ideals)
}

// InputSize is the width of each input row.
func (s *TrainingSetScore) InputSize() int { return len(s.inputs[0]) }

// IdealSize is the width of each ideal row.
func (s *TrainingSetScore) IdealSize() int { return len(s.ideals[0]) }

// Len is the number of pairs.
func (s *TrainingSetScore) Len() int { return len(s.inputs) }

// CalculateScore returns the sum of squared errors. A network whose shape
// does not fit the data scores +Inf, which the trainer treats as the worst
// score of the generation.
func (s *TrainingSetScore) CalculateScore(network *nn.Network) float64 {
	sse := 0.0
	for i, input := range s.inputs {
		output, err := network.Compute(input)
		if err != nil || len(output) != len(s.ideals[i]) {
			return math.Inf(1)
		}
		for k, ideal := range s.ideals[i] {
			diff := output[k] - ideal
			sse += diff * diff
		}
	}
	return sse
}

func (s *TrainingSetScore) ShouldMinimize() bool { return true }

// shapedScore is implemented by scores that know the network shape they expect.
type shapedScore interface {
	InputSize() int
	IdealSize() int
}

func checkScoreShape(score CalculateScore, cfg *Config) error {
	if score == nil {
		return configErrorf("score", "is required")
	}
	shaped, ok := score.(shapedScore)
	if !ok {
		return nil
	}
	if shaped.InputSize() != cfg.Neat.InputCount {
		return configErrorf("input_count", "is %d but the training set has %d inputs", cfg.Neat.InputCount, shaped.InputSize())
	}
	if shaped.IdealSize() != cfg.Neat.OutputCount {
		return configErrorf("output_count", "is %d but the training set has %d ideals", cfg.Neat.OutputCount, shaped.IdealSize())
	}
	return nil
}

package nn

import (
	"fmt"
	"math"
	"sort"
)

// ActivationFunc maps a neuron's scaled input sum to its output.
type ActivationFunc func(x float64) float64

// Activations maps function names to the activation functions a network may use.
// A network applies exactly one of these to every non-input neuron.
var Activations = map[string]ActivationFunc{
	"sigmoid":  Sigmoid,
	"tanh":     Tanh,
	"relu":     ReLU,
	"identity": Identity,
	"clamped":  Clamped,
	"gaussian": Gaussian,
	"absolute": Absolute,
	"sine":     Sine,
	"step":     Step,
	"hat":      Hat,
}

// Activation retrieves an activation function by name.
func Activation(name string) (ActivationFunc, error) {
	if fn, ok := Activations[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown activation function: %s", name)
}

// ActivationNames returns the registered names in sorted order.
func ActivationNames() []string {
	names := make([]string, 0, len(Activations))
	for name := range Activations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sigmoid is the steepened logistic curve used by NEAT, 1 / (1 + e^(-4.9x)).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-4.9*x))
}

func Tanh(x float64) float64 {
	return math.Tanh(x)
}

func ReLU(x float64) float64 {
	return math.Max(0, x)
}

func Identity(x float64) float64 {
	return x
}

// Clamped limits the output to [-1, 1].
func Clamped(x float64) float64 {
	return clamp(x, -1.0, 1.0)
}

func Gaussian(x float64) float64 {
	return math.Exp(-x * x / 2.0)
}

func Absolute(x float64) float64 {
	return math.Abs(x)
}

func Sine(x float64) float64 {
	return math.Sin(x)
}

// Step outputs 1 for positive input and 0 otherwise.
func Step(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

// Hat is a triangular pulse centered at 0.
func Hat(x float64) float64 {
	return math.Max(0.0, 1.0-math.Abs(x))
}

func clamp(value, minVal, maxVal float64) float64 {
	return math.Max(minVal, math.Min(value, maxVal))
}

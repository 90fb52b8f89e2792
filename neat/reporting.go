package neat

import (
	"fmt"
	"io"
	"os"
	"time"
)

// GenerationStats summarizes one generation.
type GenerationStats struct {
	Generation             int
	BestFitness            float64
	MeanFitness            float64
	StdevFitness           float64
	BestEverFitness        float64
	RecurrentNetworks      int
	SpeciesCount           int
	CompatibilityThreshold float64
	Innovations            int
	Elapsed                time.Duration
}

// Reporter receives progress events from a Trainer. Hooks are called on the
// trainer's goroutine and must not retain the genomes they are given.
type Reporter interface {
	StartGeneration(generation int)
	// PostEvaluate is called once the generation is scored and sorted.
	// Species fields of stats are not filled in yet.
	PostEvaluate(stats GenerationStats, best *Genome)
	SpeciesRemoved(generation int, species *Species, reason string)
	EndGeneration(stats GenerationStats)
}

// ReporterSet fans events out to every registered reporter.
type ReporterSet struct {
	reporters []Reporter
}

func (rs *ReporterSet) Add(r Reporter) {
	rs.reporters = append(rs.reporters, r)
}

func (rs *ReporterSet) StartGeneration(generation int) {
	for _, r := range rs.reporters {
		r.StartGeneration(generation)
	}
}

func (rs *ReporterSet) PostEvaluate(stats GenerationStats, best *Genome) {
	for _, r := range rs.reporters {
		r.PostEvaluate(stats, best)
	}
}

func (rs *ReporterSet) SpeciesRemoved(generation int, species *Species, reason string) {
	for _, r := range rs.reporters {
		r.SpeciesRemoved(generation, species, reason)
	}
}

func (rs *ReporterSet) EndGeneration(stats GenerationStats) {
	for _, r := range rs.reporters {
		r.EndGeneration(stats)
	}
}

// StdOutReporter prints progress in a plain line format.
type StdOutReporter struct {
	w io.Writer
}

// NewStdOutReporter writes to w, or to os.Stdout when w is nil.
func NewStdOutReporter(w io.Writer) *StdOutReporter {
	if w == nil {
		w = os.Stdout
	}
	return &StdOutReporter{w: w}
}

func (r *StdOutReporter) StartGeneration(generation int) {
	fmt.Fprintf(r.w, "\n****** Running generation %d ******\n", generation)
}

func (r *StdOutReporter) PostEvaluate(stats GenerationStats, best *Genome) {
	fmt.Fprintf(r.w, "Population's average fitness: %.5f stdev: %.5f\n", stats.MeanFitness, stats.StdevFitness)
	fmt.Fprintf(r.w, "Recurrent networks: %d\n", stats.RecurrentNetworks)
	if best != nil {
		fmt.Fprintf(r.w, "Best fitness: %.5f - size: (%d, %d) - species %d - id %d\n",
			best.Fitness, len(best.Neurons), best.EnabledLinks(), best.SpeciesID, best.ID)
	}
}

func (r *StdOutReporter) SpeciesRemoved(generation int, species *Species, reason string) {
	fmt.Fprintf(r.w, "Species %d removed in generation %d (%s, age %d, best %.5f)\n",
		species.ID, generation, reason, species.Age, species.BestFitness)
}

func (r *StdOutReporter) EndGeneration(stats GenerationStats) {
	fmt.Fprintf(r.w, "Population of %d species, compatibility threshold %.3f, %d innovations\n",
		stats.SpeciesCount, stats.CompatibilityThreshold, stats.Innovations)
	fmt.Fprintf(r.w, "Best ever fitness: %.5f\n", stats.BestEverFitness)
	fmt.Fprintf(r.w, "Generation time: %.3f sec\n", stats.Elapsed.Seconds())
}

// generationStats computes the fitness fields of the stats for genomes
// sorted best first.
func generationStats(generation int, genomes []*Genome) GenerationStats {
	fitnesses := make([]float64, len(genomes))
	for i, g := range genomes {
		fitnesses[i] = g.Fitness
	}
	stats := GenerationStats{
		Generation:   generation,
		MeanFitness:  Mean(fitnesses),
		StdevFitness: Stdev(fitnesses),
	}
	if len(genomes) > 0 {
		stats.BestFitness = genomes[0].Fitness
	}
	return stats
}

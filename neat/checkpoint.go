package neat

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"math/rand"
	"os"
)

// Snapshot is the persistent state of a run between two generations. It
// holds everything needed to continue with identical genomes, innovation ids
// and species history. The random number generator is not part of it: a
// restored trainer reseeds from the configured seed and the generation.
type Snapshot struct {
	RunID            string          `json:"run_id"`
	Generation       int             `json:"generation"`
	Genomes          []*Genome       `json:"genomes"`
	Innovations      []Innovation    `json:"innovations"`
	NextInnovationID int             `json:"next_innovation_id"`
	NextNeuronID     int             `json:"next_neuron_id"`
	Species          []SpeciesRecord `json:"species"`
	NextGenomeID     int             `json:"next_genome_id"`
	NextSpeciesID    int             `json:"next_species_id"`

	CompatibilityThreshold float64   `json:"compatibility_threshold"`
	BestEverFitness        float64   `json:"best_ever_fitness"`
	HasBestEver            bool      `json:"has_best_ever"`
	BestGenomes            []*Genome `json:"best_genomes"`
}

// SpeciesRecord is the persistent part of a species. Members are rebuilt by
// the next speciation pass.
type SpeciesRecord struct {
	ID                int     `json:"id"`
	Age               int     `json:"age"`
	GensNoImprovement int     `json:"gens_no_improvement"`
	BestFitness       float64 `json:"best_fitness"`
	SpawnAmount       float64 `json:"spawn_amount"`
	Leader            *Genome `json:"leader"`
}

// Snapshot captures the trainer state. Genomes are deep copies.
func (t *Trainer) Snapshot() *Snapshot {
	p := t.Population
	nextInnovation, nextNeuron := p.Innovations.Counters()
	snap := &Snapshot{
		RunID:                  p.RunID,
		Generation:             p.Generation,
		Genomes:                make([]*Genome, len(p.Genomes)),
		Innovations:            p.Innovations.Innovations(),
		NextInnovationID:       nextInnovation,
		NextNeuronID:           nextNeuron,
		Species:                make([]SpeciesRecord, len(p.Species)),
		NextGenomeID:           p.nextGenomeID,
		NextSpeciesID:          p.nextSpeciesID,
		CompatibilityThreshold: t.threshold,
		BestEverFitness:        t.bestEverFitness,
		HasBestEver:            t.hasBestEver,
		BestGenomes:            t.BestGenomes(),
	}
	for i, g := range p.Genomes {
		snap.Genomes[i] = cloneScored(g)
	}
	for i, s := range p.Species {
		snap.Species[i] = SpeciesRecord{
			ID:                s.ID,
			Age:               s.Age,
			GensNoImprovement: s.GensNoImprovement,
			BestFitness:       s.BestFitness,
			SpawnAmount:       s.SpawnAmount,
			Leader:            cloneScored(s.Leader),
		}
	}
	return snap
}

// Validate checks that the snapshot is complete enough to resume from.
func (s *Snapshot) Validate() error {
	if len(s.Genomes) == 0 {
		return fmt.Errorf("%w: no genomes", ErrCheckpoint)
	}
	if len(s.Innovations) == 0 {
		return fmt.Errorf("%w: innovation ledger is missing", ErrCheckpoint)
	}
	for _, g := range s.Genomes {
		if g == nil {
			return fmt.Errorf("%w: nil genome", ErrCheckpoint)
		}
		if g.ID >= s.NextGenomeID {
			return fmt.Errorf("%w: genome %d is not below the next genome id %d", ErrCheckpoint, g.ID, s.NextGenomeID)
		}
	}
	for _, r := range s.Species {
		if r.Leader == nil {
			return fmt.Errorf("%w: species %d has no leader", ErrCheckpoint, r.ID)
		}
	}
	return nil
}

// RestoreTrainer continues a run from a snapshot. cfg and score are checked
// as in NewTrainer and must describe the same network shape as the genomes.
func RestoreTrainer(cfg *Config, score CalculateScore, snap *Snapshot) (*Trainer, error) {
	t, err := newTrainer(cfg, score)
	if err != nil {
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	for _, g := range snap.Genomes {
		if g.InputCount != cfg.Neat.InputCount || g.OutputCount != cfg.Neat.OutputCount {
			return nil, fmt.Errorf("%w: genome %d has shape %dx%d, config expects %dx%d", ErrCheckpoint,
				g.ID, g.InputCount, g.OutputCount, cfg.Neat.InputCount, cfg.Neat.OutputCount)
		}
	}

	p := &Population{
		RunID:         snap.RunID,
		Generation:    snap.Generation,
		Genomes:       make([]*Genome, len(snap.Genomes)),
		Species:       make([]*Species, len(snap.Species)),
		Innovations:   RestoreInnovationDB(snap.Innovations, snap.NextInnovationID, snap.NextNeuronID),
		nextGenomeID:  snap.NextGenomeID,
		nextSpeciesID: snap.NextSpeciesID,
	}
	for i, g := range snap.Genomes {
		p.Genomes[i] = cloneScored(g)
	}
	for i, r := range snap.Species {
		p.Species[i] = &Species{
			ID:                r.ID,
			Leader:            cloneScored(r.Leader),
			BestFitness:       r.BestFitness,
			GensNoImprovement: r.GensNoImprovement,
			Age:               r.Age,
			SpawnAmount:       r.SpawnAmount,
		}
	}

	t.Population = p
	t.rng = rand.New(rand.NewSource(cfg.Neat.Seed + int64(snap.Generation)))
	t.threshold = snap.CompatibilityThreshold
	t.bestEverFitness = snap.BestEverFitness
	t.hasBestEver = snap.HasBestEver
	for _, g := range snap.BestGenomes {
		t.bestGenomes = append(t.bestGenomes, cloneScored(g))
	}
	return t, nil
}

// SaveCheckpoint writes a gzip-compressed gob snapshot to filePath.
func (t *Trainer) SaveCheckpoint(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}

	gzWriter := gzip.NewWriter(file)
	if err := gob.NewEncoder(gzWriter).Encode(t.Snapshot()); err != nil {
		gzWriter.Close()
		file.Close()
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush checkpoint: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close checkpoint file '%s': %w", filePath, err)
	}
	return nil
}

// LoadCheckpoint reads a file written by SaveCheckpoint and restores a
// trainer from it.
func LoadCheckpoint(checkpointPath string, cfg *Config, score CalculateScore) (*Trainer, error) {
	snap, err := ReadSnapshot(checkpointPath)
	if err != nil {
		return nil, err
	}
	return RestoreTrainer(cfg, score, snap)
}

// ReadSnapshot decodes a checkpoint file without restoring it.
func ReadSnapshot(checkpointPath string) (*Snapshot, error) {
	file, err := os.Open(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", checkpointPath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckpoint, err)
	}
	defer gzReader.Close()

	snap := &Snapshot{}
	if err := gob.NewDecoder(gzReader).Decode(snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckpoint, err)
	}
	return snap, nil
}

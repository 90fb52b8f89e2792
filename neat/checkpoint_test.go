package neat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trainedFor(t *testing.T, generations int) *Trainer {
	t.Helper()
	trainer, err := NewTrainer(testConfig(30), negatedXOR{})
	require.NoError(t, err)
	for i := 0; i < generations; i++ {
		require.NoError(t, trainer.Iteration())
	}
	return trainer
}

func TestSnapshotCapturesRunState(t *testing.T) {
	trainer := trainedFor(t, 4)
	snap := trainer.Snapshot()

	require.NoError(t, snap.Validate())
	assert.Equal(t, trainer.Population.RunID, snap.RunID)
	assert.Equal(t, 4, snap.Generation)
	assert.Len(t, snap.Genomes, 30)
	assert.Equal(t, trainer.Population.Innovations.Innovations(), snap.Innovations)
	assert.Len(t, snap.Species, len(trainer.Population.Species))
	assert.Len(t, snap.BestGenomes, 4)

	// Snapshot genomes are copies.
	snap.Genomes[0].Links[0].Weight = 1000
	assert.NotEqual(t, 1000.0, trainer.Population.Genomes[0].Links[0].Weight)
}

func TestRestoreTrainerContinuesRun(t *testing.T) {
	trainer := trainedFor(t, 4)
	snap := trainer.Snapshot()

	a, err := RestoreTrainer(testConfig(30), negatedXOR{}, snap)
	require.NoError(t, err)
	b, err := RestoreTrainer(testConfig(30), negatedXOR{}, snap)
	require.NoError(t, err)

	assert.Equal(t, trainer.CompatibilityThreshold(), a.CompatibilityThreshold())
	wantBest, _ := trainer.BestEverFitness()
	gotBest, ok := a.BestEverFitness()
	require.True(t, ok)
	assert.Equal(t, wantBest, gotBest)
	wantErr, err := trainer.Error()
	require.NoError(t, err)
	gotErr, err := a.Error()
	require.NoError(t, err)
	assert.Equal(t, wantErr, gotErr)

	nextA, nextB := a.Population.AssignGenomeID(), b.Population.AssignGenomeID()
	assert.Equal(t, nextA, nextB)
	for _, g := range snap.Genomes {
		assert.Less(t, g.ID, nextA)
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, a.Iteration())
		require.NoError(t, b.Iteration())
	}
	assert.Equal(t, 7, a.Population.Generation)
	errA, err := a.Error()
	require.NoError(t, err)
	errB, err := b.Error()
	require.NoError(t, err)
	assert.Equal(t, errA, errB)
}

func TestRestoreTrainerRejectsMismatchedShape(t *testing.T) {
	snap := trainedFor(t, 1).Snapshot()
	cfg := testConfig(30)
	cfg.Neat.InputCount = 3
	_, err := RestoreTrainer(cfg, negatedXOR{}, snap)
	assert.ErrorIs(t, err, ErrCheckpoint)

	_, err = RestoreTrainer(testConfig(30), negatedXOR{}, &Snapshot{})
	assert.ErrorIs(t, err, ErrCheckpoint)
}

func TestCheckpointFileRoundTrip(t *testing.T) {
	trainer := trainedFor(t, 3)
	path := filepath.Join(t.TempDir(), "run.gz")
	require.NoError(t, trainer.SaveCheckpoint(path))

	restored, err := LoadCheckpoint(path, testConfig(30), negatedXOR{})
	require.NoError(t, err)
	assert.Equal(t, trainer.Population.RunID, restored.Population.RunID)
	assert.Equal(t, trainer.Population.Generation, restored.Population.Generation)
	require.Len(t, restored.Population.Genomes, len(trainer.Population.Genomes))
	for i, g := range trainer.Population.Genomes {
		assert.Equal(t, g.Links, restored.Population.Genomes[i].Links)
		assert.Equal(t, g.Neurons, restored.Population.Genomes[i].Neurons)
	}
	wantNext, wantNeuron := trainer.Population.Innovations.Counters()
	gotNext, gotNeuron := restored.Population.Innovations.Counters()
	assert.Equal(t, wantNext, gotNext)
	assert.Equal(t, wantNeuron, gotNeuron)
	require.Len(t, restored.Population.Species, len(trainer.Population.Species))
	for i, s := range trainer.Population.Species {
		assert.Equal(t, s.ID, restored.Population.Species[i].ID)
		assert.Equal(t, s.Leader.Links, restored.Population.Species[i].Leader.Links)
	}

	require.NoError(t, restored.Iteration())
}

func TestLoadCheckpointRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gz")
	require.NoError(t, os.WriteFile(path, []byte("not a checkpoint"), 0o644))
	_, err := LoadCheckpoint(path, testConfig(30), negatedXOR{})
	assert.ErrorIs(t, err, ErrCheckpoint)

	_, err = LoadCheckpoint(filepath.Join(t.TempDir(), "missing.gz"), testConfig(30), negatedXOR{})
	assert.Error(t, err)
}

func TestSaveCheckpointOverwritesAndReportsCreateErrors(t *testing.T) {
	trainer := trainedFor(t, 1)
	path := filepath.Join(t.TempDir(), "run.gz")
	require.NoError(t, trainer.SaveCheckpoint(path))
	require.NoError(t, trainer.Iteration())
	require.NoError(t, trainer.SaveCheckpoint(path))

	snap, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, trainer.Population.Generation, snap.Generation)

	err = trainer.SaveCheckpoint(filepath.Join(t.TempDir(), "missing", "run.gz"))
	assert.Error(t, err)
}

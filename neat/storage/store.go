// Package storage persists population snapshots so a run can be resumed
// from a database instead of a checkpoint file.
package storage

import (
	"context"

	"github.com/baldhumanity/encog-neat/neat"
)

// Store saves the latest snapshot of each run, keyed by run id.
type Store interface {
	Init(ctx context.Context) error
	SavePopulation(ctx context.Context, snapshot *neat.Snapshot) error
	GetPopulation(ctx context.Context, runID string) (*neat.Snapshot, bool, error)
	DeletePopulation(ctx context.Context, runID string) error
	Close() error
}

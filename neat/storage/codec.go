package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/baldhumanity/encog-neat/neat"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// populationRecord wraps a snapshot with the versions it was written with.
type populationRecord struct {
	SchemaVersion int            `json:"schema_version"`
	CodecVersion  int            `json:"codec_version"`
	Snapshot      *neat.Snapshot `json:"snapshot"`
}

func EncodePopulation(snapshot *neat.Snapshot) ([]byte, error) {
	if snapshot == nil {
		return nil, errors.New("snapshot is nil")
	}
	return json.Marshal(populationRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
		Snapshot:      snapshot,
	})
}

func DecodePopulation(data []byte) (*neat.Snapshot, error) {
	var record populationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	if record.SchemaVersion != CurrentSchemaVersion || record.CodecVersion != CurrentCodecVersion {
		return nil, fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, record.SchemaVersion, record.CodecVersion)
	}
	if record.Snapshot == nil {
		return nil, errors.New("record has no snapshot")
	}
	return record.Snapshot, nil
}

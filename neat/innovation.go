package neat

import (
	"fmt"
	"sync"
)

// InnovationType distinguishes the two kinds of structural mutation.
type InnovationType int

const (
	NewLink InnovationType = iota
	NewNeuron
)

func (t InnovationType) String() string {
	switch t {
	case NewLink:
		return "link"
	case NewNeuron:
		return "neuron"
	}
	return fmt.Sprintf("InnovationType(%d)", int(t))
}

// Innovation records one structural mutation. For NewNeuron records, FromNeuronID
// and ToNeuronID identify the split link (-1 for the neurons of the initial
// topology) and NeuronID is the id of the neuron that was created.
type Innovation struct {
	ID           int            `json:"id"`
	Type         InnovationType `json:"type"`
	FromNeuronID int            `json:"from"`
	ToNeuronID   int            `json:"to"`
	NeuronID     int            `json:"neuron_id"`
	NeuronType   NeuronType     `json:"neuron_type"`
	SplitX       float64        `json:"split_x"`
	SplitY       float64        `json:"split_y"`
}

// SplitInnovation groups the three records produced by splitting a link.
type SplitInnovation struct {
	Neuron Innovation
	In     Innovation // from -> new neuron
	Out    Innovation // new neuron -> to
}

// InnovationDB is the run-wide ledger of structural mutations. Records are
// append-only. Every method is safe for concurrent use; a lookup followed by
// a create is performed under one lock so the first caller wins the id.
type InnovationDB struct {
	mu               sync.Mutex
	innovations      []Innovation
	nextInnovationID int
	nextNeuronID     int
}

// NewInnovationDB seeds a ledger from the initial topology of a genome: one
// NewNeuron record per neuron followed by one NewLink record per link.
func NewInnovationDB(seed *Genome) *InnovationDB {
	db := &InnovationDB{}
	for _, n := range seed.Neurons {
		db.innovations = append(db.innovations, Innovation{
			ID:           db.nextInnovationID,
			Type:         NewNeuron,
			FromNeuronID: -1,
			ToNeuronID:   -1,
			NeuronID:     n.ID,
			NeuronType:   n.Type,
			SplitX:       n.SplitX,
			SplitY:       n.SplitY,
		})
		db.nextInnovationID++
		if n.ID >= db.nextNeuronID {
			db.nextNeuronID = n.ID + 1
		}
	}
	for _, l := range seed.Links {
		db.innovations = append(db.innovations, Innovation{
			ID:           l.InnovationID,
			Type:         NewLink,
			FromNeuronID: l.FromNeuronID,
			ToNeuronID:   l.ToNeuronID,
			NeuronID:     -1,
		})
		if l.InnovationID >= db.nextInnovationID {
			db.nextInnovationID = l.InnovationID + 1
		}
	}
	return db
}

// RestoreInnovationDB rebuilds a ledger from persisted records.
func RestoreInnovationDB(records []Innovation, nextInnovationID, nextNeuronID int) *InnovationDB {
	db := &InnovationDB{
		innovations:      make([]Innovation, len(records)),
		nextInnovationID: nextInnovationID,
		nextNeuronID:     nextNeuronID,
	}
	copy(db.innovations, records)
	return db
}

// CheckInnovation looks up the record for a (from, to, type) triple.
func (db *InnovationDB) CheckInnovation(fromID, toID int, t InnovationType) (Innovation, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.check(fromID, toID, t)
}

func (db *InnovationDB) check(fromID, toID int, t InnovationType) (Innovation, bool) {
	for _, inn := range db.innovations {
		if inn.FromNeuronID == fromID && inn.ToNeuronID == toID && inn.Type == t {
			return inn, true
		}
	}
	return Innovation{}, false
}

// CreateNewInnovation appends a record with the next sequential id. NewNeuron
// records are also assigned the next neuron id. Callers must have checked that
// the triple is not already recorded.
func (db *InnovationDB) CreateNewInnovation(fromID, toID int, t InnovationType, neuronType NeuronType, splitX, splitY float64) Innovation {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.create(fromID, toID, t, neuronType, splitX, splitY)
}

func (db *InnovationDB) create(fromID, toID int, t InnovationType, neuronType NeuronType, splitX, splitY float64) Innovation {
	inn := Innovation{
		ID:           db.nextInnovationID,
		Type:         t,
		FromNeuronID: fromID,
		ToNeuronID:   toID,
		NeuronID:     -1,
	}
	db.nextInnovationID++
	if t == NewNeuron {
		inn.NeuronID = db.nextNeuronID
		inn.NeuronType = neuronType
		inn.SplitX = splitX
		inn.SplitY = splitY
		db.nextNeuronID++
	}
	db.innovations = append(db.innovations, inn)
	return inn
}

// LinkInnovation returns the record for a new link between two neurons,
// creating it if this link has never been added anywhere in the run.
func (db *InnovationDB) LinkInnovation(fromID, toID int) Innovation {
	db.mu.Lock()
	defer db.mu.Unlock()
	if inn, ok := db.check(fromID, toID, NewLink); ok {
		return inn
	}
	return db.create(fromID, toID, NewLink, HiddenNeuron, 0, 0)
}

// SplitLink returns the records for inserting a hidden neuron into the link
// fromID -> toID. A split already performed elsewhere in the run reuses its
// neuron id and both link innovation ids. A recorded split without its two
// link records means the ledger is corrupt.
func (db *InnovationDB) SplitLink(fromID, toID int, splitX, splitY float64) (SplitInnovation, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if neuron, ok := db.check(fromID, toID, NewNeuron); ok {
		in, okIn := db.check(fromID, neuron.NeuronID, NewLink)
		out, okOut := db.check(neuron.NeuronID, toID, NewLink)
		if !okIn || !okOut {
			return SplitInnovation{}, fmt.Errorf("%w: split of %d->%d created neuron %d but its links are not recorded",
				ErrInnovationMissing, fromID, toID, neuron.NeuronID)
		}
		return SplitInnovation{Neuron: neuron, In: in, Out: out}, nil
	}

	neuron := db.create(fromID, toID, NewNeuron, HiddenNeuron, splitX, splitY)
	in := db.create(fromID, neuron.NeuronID, NewLink, HiddenNeuron, 0, 0)
	out := db.create(neuron.NeuronID, toID, NewLink, HiddenNeuron, 0, 0)
	return SplitInnovation{Neuron: neuron, In: in, Out: out}, nil
}

// CreateNeuronFromID rebuilds a neuron gene from the record that introduced it.
func (db *InnovationDB) CreateNeuronFromID(neuronID int) (NeuronGene, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, inn := range db.innovations {
		if inn.Type == NewNeuron && inn.NeuronID == neuronID {
			return NewNeuronGene(neuronID, inn.NeuronType, inn.SplitX, inn.SplitY), nil
		}
	}
	return NeuronGene{}, fmt.Errorf("%w: no record for neuron %d", ErrInnovationMissing, neuronID)
}

// Len returns the number of records.
func (db *InnovationDB) Len() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.innovations)
}

// Innovations returns a copy of every record in creation order.
func (db *InnovationDB) Innovations() []Innovation {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]Innovation, len(db.innovations))
	copy(out, db.innovations)
	return out
}

// Counters returns the next innovation id and the next neuron id.
func (db *InnovationDB) Counters() (nextInnovationID, nextNeuronID int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.nextInnovationID, db.nextNeuronID
}

package types

import "github.com/google/uuid"

// BlockKey opaquely identifies a RuntimeBlock for its entire lifetime.
// It is assigned once, at construction, and never reused. String() is
// stable and is what logs, memory ownership records, and output
// attribution all key off of.
type BlockKey struct {
	id uuid.UUID
}

// NewBlockKey mints a fresh, process-wide-unique key.
func NewBlockKey() BlockKey {
	return BlockKey{id: uuid.New()}
}

// String returns the stable textual form of the key.
func (k BlockKey) String() string {
	return k.id.String()
}

// IsZero reports whether this is the unset key value.
func (k BlockKey) IsZero() bool {
	return k.id == uuid.Nil
}

// Equal reports whether two keys identify the same block.
func (k BlockKey) Equal(other BlockKey) bool {
	return k.id == other.id
}

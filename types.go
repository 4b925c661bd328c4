package gamsort

// FromBytes is a function type for deserializing bytes back to type E.
// It's used when reading records from the input stream and from spilled runs.
// The function should be the inverse of the corresponding ToBytes function.
// Errors are wrapped in a DeserializationError by the sorter.
type FromBytes[E any] func([]byte) (E, error)

// ToBytes is a function type for serializing type E to bytes.
// It's used when spilling runs and when writing the sorted output.
// Errors are wrapped in a SerializationError by the sorter.
type ToBytes[E any] func(E) ([]byte, error)

// Compare is a function type for comparing two items of type E.
// It must implement a strict weak ordering and follows the cmp.Compare
// convention: negative if a sorts before b, zero if they are equivalent,
// positive if a sorts after b.
type Compare[E any] func(a, b E) int

// KeyFunc returns the Position a record sorts by. It must agree with the
// Sorter's Compare: Compare(a, b) == ComparePositions(key(&a), key(&b)).
type KeyFunc[E any] func(*E) Position

// Codec pairs the serialization functions for a record type.
type Codec[E any] struct {
	ToBytes   ToBytes[E]
	FromBytes FromBytes[E]
}

// BatchWriter receives sorted records in batches from the Batcher.
type BatchWriter[E any] interface {
	WriteBatch([]E) error
}

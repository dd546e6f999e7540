package mtree

import (
	"errors"
	"fmt"
)

// ErrNoElements is returned when building a tree from zero elements.
var ErrNoElements = errors.New("cannot build Merkle tree without elements")

// ErrEmptyTree is returned when reading from a zero-value [Tree].
var ErrEmptyTree = errors.New("empty Merkle tree")

// ErrProofTooLong is returned from [Verify] when the proof
// has more entries than any addressable tree could produce.
var ErrProofTooLong = errors.New("proof too long")

// LeafCountError is returned when a tree would be built
// with a leaf count that is not a power of two.
type LeafCountError struct {
	Count int
}

func (e LeafCountError) Error() string {
	return fmt.Sprintf("leaf count must be a power of two (got %d)", e.Count)
}

// LeafIndexError is returned when a leaf index is outside
// the range of leaves in the tree, or outside the range
// that a proof of a given length can cover.
type LeafIndexError struct {
	Index, LeafCount int
}

func (e LeafIndexError) Error() string {
	return fmt.Sprintf(
		"leaf index %d out of range [0, %d)", e.Index, e.LeafCount,
	)
}

// isPowerOfTwo reports whether n is a positive power of two.
func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

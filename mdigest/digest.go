// Package mdigest defines the digest primitive used by the Merkle tree engine.
//
// The engine does not depend on any particular hash function.
// Instead, it hashes leaves and combines pairs of nodes
// through the [Hasher] interface.
// See the msha3 package for the reference implementation
// and msha256 for an interchangeable alternative.
package mdigest

import (
	"encoding/hex"
	"fmt"
)

// Size is the fixed width, in bytes, of every [Digest].
const Size = 32

// Digest is the fixed-size output of a [Hasher].
//
// Digest is an array, not a slice,
// so it is comparable with == and copied by value.
type Digest [Size]byte

// String returns the lowercase hex encoding of d.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// FromHex parses a hex-encoded digest.
// The input must decode to exactly [Size] bytes.
func FromHex(s string) (Digest, error) {
	var d Digest
	if hex.DecodedLen(len(s)) != Size {
		return d, fmt.Errorf(
			"hex digest must decode to %d bytes (got %d characters)", Size, len(s),
		)
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return d, fmt.Errorf("failed to decode hex digest: %w", err)
	}
	return d, nil
}

// MustFromHex is like [FromHex] but panics on invalid input.
// It is intended for golden values in tests and package-level variables.
func MustFromHex(s string) Digest {
	d, err := FromHex(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Hasher is the user-defined interface for hashing leaves and nodes.
// The tree passes raw element data to the Leaf method to create a leaf digest,
// and it passes pairs of digests to the Node method
// to create the digest of their parent.
//
// Node must be order-sensitive:
// Node(a, b) and Node(b, a) are expected to differ.
//
// Hasher methods must be deterministic and safe to call concurrently.
type Hasher interface {
	Leaf(in []byte) Digest
	Node(left, right Digest) Digest
}

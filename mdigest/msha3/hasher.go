// Package msha3 contains [mdigest.Hasher] implementations backed by SHA3-256.
package msha3

import (
	"github.com/gordian-engine/mcommit/mdigest"
	"golang.org/x/crypto/sha3"
)

// Hasher is the reference [mdigest.Hasher].
//
// A leaf is SHA3-256 of the raw element,
// and a node is SHA3-256 of the concatenation of its two children.
//
// There is no domain separation between leaves and nodes:
// a 64-byte element hashes to the same digest as an internal node
// whose children are the two halves of that element.
// A verifier that accepts arbitrary 64-byte leaves
// can therefore be shown a "leaf" that is really an internal node.
// The behavior is kept so that roots match previously published commitments.
// Use [HardenedHasher] for new commitments that do not need that compatibility.
type Hasher struct{}

func (Hasher) Leaf(in []byte) mdigest.Digest {
	return sha3.Sum256(in)
}

func (Hasher) Node(left, right mdigest.Digest) mdigest.Digest {
	var buf [2 * mdigest.Size]byte
	copy(buf[:mdigest.Size], left[:])
	copy(buf[mdigest.Size:], right[:])
	return sha3.Sum256(buf[:])
}

const (
	leafPrefix byte = 0x00
	nodePrefix byte = 0x01
)

// HardenedHasher is a domain-separated variant of [Hasher],
// prefixing leaf input with 0x00 and node input with 0x01
// in the manner of RFC 6962.
//
// Roots produced with HardenedHasher are not compatible
// with roots produced with [Hasher].
type HardenedHasher struct{}

func (HardenedHasher) Leaf(in []byte) mdigest.Digest {
	h := sha3.New256()
	_, _ = h.Write([]byte{leafPrefix})
	_, _ = h.Write(in)

	var d mdigest.Digest
	h.Sum(d[:0])
	return d
}

func (HardenedHasher) Node(left, right mdigest.Digest) mdigest.Digest {
	h := sha3.New256()
	_, _ = h.Write([]byte{nodePrefix})
	_, _ = h.Write(left[:])
	_, _ = h.Write(right[:])

	var d mdigest.Digest
	h.Sum(d[:0])
	return d
}

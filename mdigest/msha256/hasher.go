// Package msha256 contains an [mdigest.Hasher] backed by SHA-256.
package msha256

import (
	"github.com/gordian-engine/mcommit/mdigest"
	"github.com/minio/sha256-simd"
)

// Hasher is an [mdigest.Hasher] backed by SIMD-accelerated SHA-256 hashes.
//
// Like the reference SHA3 hasher, it applies no domain separation
// between leaves and nodes.
type Hasher struct{}

func (Hasher) Leaf(in []byte) mdigest.Digest {
	return sha256.Sum256(in)
}

func (Hasher) Node(left, right mdigest.Digest) mdigest.Digest {
	h := sha256.New()
	_, _ = h.Write(left[:])
	_, _ = h.Write(right[:])

	var d mdigest.Digest
	h.Sum(d[:0])
	return d
}

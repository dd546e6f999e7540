// Package mshard commits to an erasure-coded payload.
//
// A payload is split into data shards, extended with Reed-Solomon parity shards,
// and every shard becomes one leaf of an [mtree.Tree].
// The root is the commitment: a receiver holding only the root
// can verify each shard as it arrives, with the shard's inclusion proof,
// and rebuild the payload once any NumData shards are present.
//
// The shard count must be a power of two,
// which is also the leaf count requirement of the tree.
package mshard

import (
	"errors"
	"fmt"

	"github.com/gordian-engine/mcommit/mdigest"
	"github.com/gordian-engine/mcommit/mtree"
	"github.com/klauspost/reedsolomon"
)

// PrepareConfig is the config for [Prepare].
type PrepareConfig struct {
	// The number of data and parity shards.
	// Their sum must be a power of two.
	// DataShards must be positive and ParityShards must not be negative.
	DataShards, ParityShards int

	// How to hash shards into the Merkle tree.
	Hasher mdigest.Hasher
}

// Prepared is the value returned by [Prepare].
type Prepared struct {
	// Root of the Merkle tree over every shard.
	Root mdigest.Digest

	// The number of data and parity shards.
	NumData, NumParity int

	// Length of the original payload,
	// needed to strip padding from the final data shard.
	DataSize int

	// The data shards followed by the parity shards.
	// All shards have the same length.
	// Data shards may share memory with the slice passed to Prepare.
	Shards [][]byte

	// Proofs is aligned one-to-one with Shards.
	Proofs [][]mdigest.Digest
}

// Prepare erasure-codes data according to cfg
// and builds the Merkle tree committing to the shards.
func Prepare(data []byte, cfg PrepareConfig) (Prepared, error) {
	if cfg.DataShards <= 0 {
		panic(fmt.Errorf(
			"BUG: DataShards must be positive (got %d)", cfg.DataShards,
		))
	}
	if cfg.ParityShards < 0 {
		panic(fmt.Errorf(
			"BUG: ParityShards must be non-negative (got %d)", cfg.ParityShards,
		))
	}
	if cfg.Hasher == nil {
		panic(errors.New("BUG: Hasher must not be nil"))
	}

	total := cfg.DataShards + cfg.ParityShards
	if total&(total-1) != 0 {
		return Prepared{}, fmt.Errorf(
			"invalid shard count: %w", mtree.LeafCountError{Count: total},
		)
	}

	enc, err := reedsolomon.New(cfg.DataShards, cfg.ParityShards)
	if err != nil {
		return Prepared{}, fmt.Errorf(
			"failed to build Reed-Solomon encoder: %w", err,
		)
	}

	shards, err := enc.Split(data)
	if err != nil {
		return Prepared{}, fmt.Errorf(
			"failed to split data for sharding: %w", err,
		)
	}

	if err := enc.Encode(shards); err != nil {
		return Prepared{}, fmt.Errorf(
			"failed to erasure-code data: %w", err,
		)
	}

	// Now that the data is erasure-coded,
	// we can build the Merkle tree.
	t, err := mtree.Build(cfg.Hasher, shards)
	if err != nil {
		return Prepared{}, fmt.Errorf(
			"failed to build Merkle tree over shards: %w", err,
		)
	}

	p := Prepared{
		NumData:   cfg.DataShards,
		NumParity: cfg.ParityShards,
		DataSize:  len(data),
		Shards:    shards,
		Proofs:    make([][]mdigest.Digest, len(shards)),
	}

	// Root and Proof cannot fail on a freshly built tree.
	p.Root, _ = t.Root()
	for i := range shards {
		p.Proofs[i], _ = t.Proof(i)
	}

	return p, nil
}

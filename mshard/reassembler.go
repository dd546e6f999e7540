package mshard

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gordian-engine/mcommit/mdigest"
	"github.com/gordian-engine/mcommit/mtree"
	"github.com/klauspost/reedsolomon"
)

// ErrNotEnoughShards is returned from [*Reassembler.Reconstruct]
// before NumData shards have been added.
var ErrNotEnoughShards = errors.New("not enough shards to reconstruct data")

// ErrInconsistentEncoding is returned from [*Reassembler.Reconstruct]
// when every received shard matched the root,
// but the shards rebuilt from them did not.
// That can only happen if the originator committed to
// shards that were not a valid Reed-Solomon encoding.
var ErrInconsistentEncoding = errors.New("reconstructed shards do not match commitment")

// ReassemblerConfig is the config for [NewReassembler].
// Every field must match the [Prepared] value on the originating side.
type ReassemblerConfig struct {
	Root mdigest.Digest

	NumData, NumParity int

	DataSize int

	Hasher mdigest.Hasher
}

// Reassembler accepts shards one at a time,
// verifying each against the committed root,
// and rebuilds the original payload once enough shards have arrived.
//
// A Reassembler is not safe for concurrent use.
type Reassembler struct {
	pt  *mtree.PartialTree
	enc reedsolomon.Encoder

	hasher mdigest.Hasher

	// Indexed by shard; nil until the shard is added.
	shards [][]byte

	numData  int
	dataSize int
}

func NewReassembler(cfg ReassemblerConfig) (*Reassembler, error) {
	if cfg.DataSize < 0 {
		panic(fmt.Errorf(
			"BUG: DataSize must be non-negative (got %d)", cfg.DataSize,
		))
	}

	total := cfg.NumData + cfg.NumParity
	if total <= 0 || total&(total-1) != 0 {
		return nil, fmt.Errorf(
			"invalid shard count: %w", mtree.LeafCountError{Count: total},
		)
	}

	enc, err := reedsolomon.New(cfg.NumData, cfg.NumParity)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to build Reed-Solomon encoder: %w", err,
		)
	}

	return &Reassembler{
		pt: mtree.NewPartialTree(mtree.PartialTreeConfig{
			NLeaves: total,
			Hasher:  cfg.Hasher,
			Root:    cfg.Root,
		}),
		enc: enc,

		hasher: cfg.Hasher,

		shards: make([][]byte, total),

		numData:  cfg.NumData,
		dataSize: cfg.DataSize,
	}, nil
}

// AddShard verifies shard against the committed root using proof,
// and retains a copy of it.
//
// Errors from [*mtree.PartialTree.AddLeaf] are returned unwrapped,
// so callers may check for [mtree.ErrAlreadyHadProof] directly.
func (r *Reassembler) AddShard(idx int, shard []byte, proof []mdigest.Digest) error {
	if err := r.pt.AddLeaf(idx, shard, proof); err != nil {
		return err
	}

	r.shards[idx] = bytes.Clone(shard)
	return nil
}

// Ready reports whether enough shards have been added
// for [*Reassembler.Reconstruct] to succeed.
func (r *Reassembler) Ready() bool {
	return r.pt.AddedCount() >= r.numData
}

// Have reports whether the shard at idx has been added.
func (r *Reassembler) Have(idx int) bool {
	return r.pt.HasLeaf(idx)
}

// Reconstruct restores any missing shards
// and returns the original payload.
func (r *Reassembler) Reconstruct() ([]byte, error) {
	if !r.Ready() {
		return nil, ErrNotEnoughShards
	}

	if err := r.enc.Reconstruct(r.shards); err != nil {
		return nil, fmt.Errorf("failed to reconstruct shards: %w", err)
	}

	// Every shard we were given was verified,
	// but the rebuilt ones were not.
	t, err := mtree.Build(r.hasher, r.shards)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to rebuild Merkle tree over shards: %w", err,
		)
	}
	if root, _ := t.Root(); root != r.pt.Root() {
		return nil, fmt.Errorf(
			"%w: rebuilt root %s, expected %s",
			ErrInconsistentEncoding, root, r.pt.Root(),
		)
	}

	var buf bytes.Buffer
	buf.Grow(r.dataSize)
	if err := r.enc.Join(&buf, r.shards, r.dataSize); err != nil {
		return nil, fmt.Errorf("failed to join data shards: %w", err)
	}

	return buf.Bytes(), nil
}

package mshard_test

import (
	"fmt"
	"testing"

	"github.com/gordian-engine/mcommit/internal/mtest"
	"github.com/gordian-engine/mcommit/mdigest"
	"github.com/gordian-engine/mcommit/mdigest/msha3"
	"github.com/gordian-engine/mcommit/mshard"
	"github.com/gordian-engine/mcommit/mtree"
	"github.com/stretchr/testify/require"
)

func newReassembler(t *testing.T, p mshard.Prepared) *mshard.Reassembler {
	t.Helper()

	r, err := mshard.NewReassembler(mshard.ReassemblerConfig{
		Root:      p.Root,
		NumData:   p.NumData,
		NumParity: p.NumParity,
		DataSize:  p.DataSize,
		Hasher:    msha3.Hasher{},
	})
	require.NoError(t, err)
	return r
}

func TestPrepare(t *testing.T) {
	t.Parallel()

	data := mtest.RandomDataForTest(t, 1000)

	p, err := mshard.Prepare(data, mshard.PrepareConfig{
		DataShards:   6,
		ParityShards: 2,
		Hasher:       msha3.Hasher{},
	})
	require.NoError(t, err)

	require.Equal(t, 6, p.NumData)
	require.Equal(t, 2, p.NumParity)
	require.Equal(t, 1000, p.DataSize)
	require.Len(t, p.Shards, 8)
	require.Len(t, p.Proofs, 8)

	// Every shard verifies against the root with its proof.
	h := msha3.Hasher{}
	for i, s := range p.Shards {
		require.Len(t, s, len(p.Shards[0]))
		require.Len(t, p.Proofs[i], 3)

		ok, err := mtree.VerifyElement(h, p.Root, s, i, p.Proofs[i])
		require.NoError(t, err)
		require.True(t, ok)
	}

	// The root is the root of a plain tree over the shards.
	tree, err := mtree.Build(h, p.Shards)
	require.NoError(t, err)
	root, _ := tree.Root()
	require.Equal(t, root, p.Root)
}

func TestPrepare_invalidShardCount(t *testing.T) {
	t.Parallel()

	_, err := mshard.Prepare([]byte("hello"), mshard.PrepareConfig{
		DataShards:   3,
		ParityShards: 2,
		Hasher:       msha3.Hasher{},
	})

	var lce mtree.LeafCountError
	require.ErrorAs(t, err, &lce)
	require.Equal(t, 5, lce.Count)
}

func TestPrepare_emptyData(t *testing.T) {
	t.Parallel()

	_, err := mshard.Prepare(nil, mshard.PrepareConfig{
		DataShards:   2,
		ParityShards: 2,
		Hasher:       msha3.Hasher{},
	})
	require.Error(t, err)
}

func TestPrepare_panics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		_, _ = mshard.Prepare([]byte("x"), mshard.PrepareConfig{
			DataShards: 0, ParityShards: 4, Hasher: msha3.Hasher{},
		})
	})
	require.Panics(t, func() {
		_, _ = mshard.Prepare([]byte("x"), mshard.PrepareConfig{
			DataShards: 4, ParityShards: -1, Hasher: msha3.Hasher{},
		})
	})
	require.Panics(t, func() {
		_, _ = mshard.Prepare([]byte("x"), mshard.PrepareConfig{
			DataShards: 2, ParityShards: 2,
		})
	})
}

func TestReassembler_roundTrip(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		nData, nParity int
		size           int
		skip           []int
	}{
		{nData: 2, nParity: 2, size: 100, skip: []int{0, 1}},
		{nData: 4, nParity: 4, size: 1 << 12, skip: []int{1, 3, 5, 6}},
		{nData: 12, nParity: 4, size: 5000, skip: []int{0, 7, 11, 15}},
		{nData: 8, nParity: 8, size: 333, skip: nil},
	} {
		name := fmt.Sprintf("%d+%d shards, %d bytes", tc.nData, tc.nParity, tc.size)
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			data := mtest.RandomDataForTest(t, tc.size)
			p, err := mshard.Prepare(data, mshard.PrepareConfig{
				DataShards:   tc.nData,
				ParityShards: tc.nParity,
				Hasher:       msha3.Hasher{},
			})
			require.NoError(t, err)

			r := newReassembler(t, p)

			skipped := make(map[int]bool, len(tc.skip))
			for _, i := range tc.skip {
				skipped[i] = true
			}

			added := 0
			for i, s := range p.Shards {
				if skipped[i] {
					continue
				}
				if r.Ready() {
					break
				}

				_, err := r.Reconstruct()
				require.ErrorIs(t, err, mshard.ErrNotEnoughShards)

				require.NoError(t, r.AddShard(i, s, p.Proofs[i]))
				require.True(t, r.Have(i))
				added++
			}
			require.True(t, r.Ready())
			require.Equal(t, tc.nData, added)

			got, err := r.Reconstruct()
			require.NoError(t, err)
			require.Equal(t, data, got)
		})
	}
}

func TestReassembler_rejectsTamperedShard(t *testing.T) {
	t.Parallel()

	data := mtest.RandomDataForTest(t, 256)
	p, err := mshard.Prepare(data, mshard.PrepareConfig{
		DataShards:   2,
		ParityShards: 2,
		Hasher:       msha3.Hasher{},
	})
	require.NoError(t, err)

	r := newReassembler(t, p)

	tampered := append([]byte(nil), p.Shards[1]...)
	tampered[0] ^= 1

	err = r.AddShard(1, tampered, p.Proofs[1])
	require.ErrorIs(t, err, mtree.ErrProofMismatch)
	require.False(t, r.Have(1))

	require.NoError(t, r.AddShard(1, p.Shards[1], p.Proofs[1]))
	require.ErrorIs(t, r.AddShard(1, p.Shards[1], p.Proofs[1]), mtree.ErrAlreadyHadProof)

	// Shard 0 is now known as shard 1's sibling,
	// so tampering is caught without a proof.
	tampered0 := append([]byte(nil), p.Shards[0]...)
	tampered0[3] ^= 0x10
	require.ErrorIs(t, r.AddShard(0, tampered0, nil), mtree.ErrIncorrectLeafData)
}

func TestReassembler_retainsCopy(t *testing.T) {
	t.Parallel()

	data := mtest.RandomDataForTest(t, 64)
	p, err := mshard.Prepare(data, mshard.PrepareConfig{
		DataShards:   1,
		ParityShards: 1,
		Hasher:       msha3.Hasher{},
	})
	require.NoError(t, err)

	r := newReassembler(t, p)

	shard := append([]byte(nil), p.Shards[0]...)
	require.NoError(t, r.AddShard(0, shard, p.Proofs[0]))

	// Modifying the caller's slice does not affect reconstruction.
	for i := range shard {
		shard[i] = 0
	}

	got, err := r.Reconstruct()
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestReassembler_inconsistentEncoding(t *testing.T) {
	t.Parallel()

	h := msha3.Hasher{}

	// Commit to shards that are not a valid Reed-Solomon encoding:
	// two random data shards and two random "parity" shards.
	shards := mtest.RandomElementsForTest(t, 4, 32)
	tree, err := mtree.Build(h, shards)
	require.NoError(t, err)
	root, _ := tree.Root()

	r, err := mshard.NewReassembler(mshard.ReassemblerConfig{
		Root:      root,
		NumData:   2,
		NumParity: 2,
		DataSize:  64,
		Hasher:    h,
	})
	require.NoError(t, err)

	// Add one data shard and one parity shard, each with a valid proof.
	for _, i := range []int{0, 3} {
		proof, err := tree.Proof(i)
		require.NoError(t, err)
		require.NoError(t, r.AddShard(i, shards[i], proof))
	}

	_, err = r.Reconstruct()
	require.ErrorIs(t, err, mshard.ErrInconsistentEncoding)
}

func TestNewReassembler_invalidShardCount(t *testing.T) {
	t.Parallel()

	_, err := mshard.NewReassembler(mshard.ReassemblerConfig{
		Root:      mdigest.Digest{},
		NumData:   5,
		NumParity: 1,
		DataSize:  10,
		Hasher:    msha3.Hasher{},
	})

	var lce mtree.LeafCountError
	require.ErrorAs(t, err, &lce)
	require.Equal(t, 6, lce.Count)
}

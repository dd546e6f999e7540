package mtree

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/gordian-engine/mcommit/mdigest"
)

// PartialTree is a partially filled Merkle tree
// whose root is trusted up front
// and whose leaves are confirmed one at a time with accompanying proofs.
//
// Every node on a confirmed proof path becomes trusted,
// so later leaves only need proof entries
// up to the first node that is already trusted.
//
// This type does not hold references to any leaf data.
// Use [*PartialTree.AddLeaf] to confirm the leaf data and proof,
// and store the leaf data externally.
//
// A PartialTree is not safe for concurrent use.
type PartialTree struct {
	// Same layout as Tree.nodes.
	nodes []mdigest.Digest

	// We need to track which nodes are already populated.
	// Technically we could inspect if they were zero,
	// but a bitset simplifies things.
	haveNodes *bitset.BitSet

	// Which leaves are already populated;
	// this is distinct from haveNodes,
	// as we could have the hash of a leaf as a sibling proof
	// without having seen the leaf content.
	haveLeaves *bitset.BitSet

	nLeaves int

	hasher mdigest.Hasher
}

// PartialTreeConfig contains all the details for [NewPartialTree].
type PartialTreeConfig struct {
	// Number of leaves in the full tree.
	// Must be a power of two.
	NLeaves int

	// Must be the same hasher the full tree was built with.
	Hasher mdigest.Hasher

	// The trusted root digest.
	Root mdigest.Digest
}

func NewPartialTree(cfg PartialTreeConfig) *PartialTree {
	if !isPowerOfTwo(cfg.NLeaves) {
		panic(fmt.Errorf(
			"BUG: NLeaves must be a positive power of two (got %d)", cfg.NLeaves,
		))
	}
	if cfg.Hasher == nil {
		panic(errors.New("BUG: PartialTree hasher must not be nil"))
	}

	nNodes := 2*cfg.NLeaves - 1

	pt := &PartialTree{
		nodes: make([]mdigest.Digest, nNodes),

		haveNodes:  bitset.MustNew(uint(nNodes)),
		haveLeaves: bitset.MustNew(uint(cfg.NLeaves)),

		nLeaves: cfg.NLeaves,
		hasher:  cfg.Hasher,
	}

	pt.nodes[0] = cfg.Root
	pt.haveNodes.Set(0)

	return pt
}

var ErrAlreadyHadProof = errors.New("already had proof for given leaf")

var ErrIncorrectLeafData = errors.New("leaf data did not match expected hash")

var ErrInsufficientProof = errors.New("insufficient proof to add leaf")

// ErrProofMismatch is wrapped in the error returned from [*PartialTree.AddLeaf]
// when the proof does not lead to a trusted digest.
var ErrProofMismatch = errors.New("proof did not match trusted digest")

// AddLeaf confirms that the given leaf data at the given index
// matches the given proof, in the same leaf-to-root order as [*Tree.Proof].
//
// The proof may stop early, once the path reaches a node
// already trusted from an earlier AddLeaf call;
// trailing proof entries past that point are ignored.
// If the proof ends before reaching a trusted node,
// AddLeaf returns [ErrInsufficientProof].
//
// If the leaf data already exists in the partial tree,
// AddLeaf returns [ErrAlreadyHadProof].
// If we already trusted the leaf digest but the leaf data did not match,
// [ErrIncorrectLeafData] is returned.
func (t *PartialTree) AddLeaf(leafIdx int, leafData []byte, proof []mdigest.Digest) error {
	if leafIdx < 0 || leafIdx >= t.nLeaves {
		return LeafIndexError{Index: leafIdx, LeafCount: t.nLeaves}
	}

	leafHash := t.hasher.Leaf(leafData)
	nodeIdx := t.nLeaves - 1 + leafIdx

	// Did we record already having this leaf?
	if t.haveLeaves.Test(uint(leafIdx)) {
		if t.nodes[nodeIdx] != leafHash {
			return ErrIncorrectLeafData
		}
		return ErrAlreadyHadProof
	}

	// We may have the leaf digest as a sibling of an earlier leaf,
	// in which case the proof is unnecessary.
	if t.haveNodes.Test(uint(nodeIdx)) {
		if t.nodes[nodeIdx] != leafHash {
			return ErrIncorrectLeafData
		}
		t.haveLeaves.Set(uint(leafIdx))
		return nil
	}

	// Walk up until we reach a node we already trust,
	// holding on to every digest we computed or were given,
	// so they can be trusted once the path is confirmed.
	discovered := make([]discoveredNode, 0, 2*len(proof))

	cur := nodeIdx
	curHash := leafHash
	for !t.haveNodes.Test(uint(cur)) {
		// The root is always trusted, so cur is never zero here.
		if len(proof) == 0 {
			return ErrInsufficientProof
		}

		sib := discoveredNode{Hash: proof[0]}
		proof = proof[1:]

		discovered = append(discovered, discoveredNode{Idx: cur, Hash: curHash})

		if (cur & 1) == 1 {
			// Odd index: left child, sibling to the right.
			sib.Idx = cur + 1
			curHash = t.hasher.Node(curHash, sib.Hash)
		} else {
			sib.Idx = cur - 1
			curHash = t.hasher.Node(sib.Hash, curHash)
		}
		discovered = append(discovered, sib)

		cur = (cur - 1) / 2
	}

	if curHash != t.nodes[cur] {
		return fmt.Errorf(
			"%w: calculated %s, expected %s",
			ErrProofMismatch, curHash, t.nodes[cur],
		)
	}

	for _, d := range discovered {
		t.nodes[d.Idx] = d.Hash
		t.haveNodes.Set(uint(d.Idx))
	}
	t.haveLeaves.Set(uint(leafIdx))

	return nil
}

type discoveredNode struct {
	Idx  int
	Hash mdigest.Digest
}

// HasLeaf reports whether the given leaf has already been added to the tree
// via [*PartialTree.AddLeaf].
//
// HasLeaf reports false if idx is out of bounds.
func (t *PartialTree) HasLeaf(idx int) bool {
	if idx < 0 || idx >= t.nLeaves {
		return false
	}
	return t.haveLeaves.Test(uint(idx))
}

// LeafCount returns the number of leaves in the full tree.
func (t *PartialTree) LeafCount() int {
	return t.nLeaves
}

// AddedCount returns the number of leaves confirmed so far.
func (t *PartialTree) AddedCount() int {
	return int(t.haveLeaves.Count())
}

// Complete reports whether every leaf has been added.
func (t *PartialTree) Complete() bool {
	return t.haveLeaves.Count() == uint(t.nLeaves)
}

// MissingLeaves returns the indices of leaves not yet added, in ascending order.
func (t *PartialTree) MissingLeaves() []int {
	var out []int
	for u, ok := t.haveLeaves.NextClear(0); ok && u < uint(t.nLeaves); u, ok = t.haveLeaves.NextClear(u + 1) {
		out = append(out, int(u))
	}
	return out
}

// Root returns the trusted root digest.
func (t *PartialTree) Root() mdigest.Digest {
	return t.nodes[0]
}

package mtree

import (
	"github.com/gordian-engine/mcommit/mdigest"
)

// maxProofLen bounds the proof length accepted by [Verify],
// so that 1<<len(proof) cannot overflow an int.
const maxProofLen = 62

// Proof returns the inclusion proof for the leaf at leafIdx:
// the sibling digest at every level from the leaf up to,
// but not including, the root, in leaf-to-root order.
//
// Every proof from a tree with n leaves has log2(n) entries.
// A single-leaf tree yields an empty, non-nil proof.
func (t *Tree) Proof(leafIdx int) ([]mdigest.Digest, error) {
	if t.empty() {
		return nil, ErrEmptyTree
	}
	if leafIdx < 0 || leafIdx >= t.nLeaves {
		return nil, LeafIndexError{Index: leafIdx, LeafCount: t.nLeaves}
	}

	proof := make([]mdigest.Digest, 0, t.Height())

	// The leaf row starts at nLeaves-1,
	// and each parent row sits immediately before its child row.
	layerWidth := t.nLeaves
	layerStart := layerWidth - 1
	idx := leafIdx

	for layerWidth > 1 {
		// Even index: sibling to the right.
		// Odd index: sibling to the left.
		// Either way that is the index with the low bit flipped.
		proof = append(proof, t.nodes[layerStart+(idx^1)])

		idx >>= 1
		layerWidth >>= 1
		layerStart = layerWidth - 1
	}

	return proof, nil
}

// Verify reports whether proof shows that leaf
// is at index leafIdx in a tree with the given root.
//
// Verify needs no [Tree]; any party holding the root,
// the leaf digest, its index and the proof can call it.
// It must be called with the same hasher the tree was built with.
//
// Verify returns a [LeafIndexError] if leafIdx is negative
// or too large for a proof of that length,
// because no tree of that height has such a leaf.
// It returns [ErrProofTooLong] for proofs longer than any tree could produce.
// A tampered leaf, a tampered proof,
// or a different in-range index returns false and a nil error.
func Verify(
	h mdigest.Hasher,
	root, leaf mdigest.Digest,
	leafIdx int,
	proof []mdigest.Digest,
) (bool, error) {
	if len(proof) > maxProofLen {
		return false, ErrProofTooLong
	}
	if nLeaves := 1 << len(proof); leafIdx < 0 || leafIdx >= nLeaves {
		return false, LeafIndexError{Index: leafIdx, LeafCount: nLeaves}
	}

	cur := leaf
	idx := leafIdx
	for _, sib := range proof {
		if (idx & 1) == 0 {
			// Current digest is the left child.
			cur = h.Node(cur, sib)
		} else {
			cur = h.Node(sib, cur)
		}
		idx >>= 1
	}

	return cur == root, nil
}

// VerifyElement is like [Verify] but accepts the raw element,
// hashing it into a leaf with h first.
func VerifyElement(
	h mdigest.Hasher,
	root mdigest.Digest,
	element []byte,
	leafIdx int,
	proof []mdigest.Digest,
) (bool, error) {
	return Verify(h, root, h.Leaf(element), leafIdx, proof)
}

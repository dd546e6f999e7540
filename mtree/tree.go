package mtree

import (
	"fmt"
	"math/bits"

	"github.com/gordian-engine/mcommit/mdigest"
)

// Tree is a perfect binary Merkle tree over an ordered list of elements.
//
// Create a tree with [Build] or [BuildFromLeaves].
// A Tree is never modified after it is built:
// [*Tree.Append] returns a new Tree,
// so a *Tree may be shared freely between goroutines.
//
// The zero value is an empty tree;
// every read from an empty tree returns [ErrEmptyTree].
type Tree struct {
	// Root first, breadth-first, leaves last.
	// See the package documentation for the layout.
	nodes []mdigest.Digest

	nLeaves int

	hasher mdigest.Hasher
}

// Build hashes each element into a leaf, in order,
// and builds the tree over those leaves.
//
// The number of elements must be a positive power of two.
// The hasher is retained for use in [*Tree.Append].
func Build(h mdigest.Hasher, elements [][]byte) (*Tree, error) {
	if err := checkBuild(h, len(elements)); err != nil {
		return nil, err
	}

	t := newTree(h, len(elements))

	// Write all the leaves into the final row.
	leaves := t.nodes[len(elements)-1:]
	for i, e := range elements {
		leaves[i] = h.Leaf(e)
	}

	t.complete()
	return t, nil
}

// BuildFromLeaves builds a tree over already-hashed leaf digests.
// The leaves slice is copied and not retained.
//
// The same leaf count restrictions as [Build] apply.
func BuildFromLeaves(h mdigest.Hasher, leaves []mdigest.Digest) (*Tree, error) {
	if err := checkBuild(h, len(leaves)); err != nil {
		return nil, err
	}

	t := newTree(h, len(leaves))
	copy(t.nodes[len(leaves)-1:], leaves)

	t.complete()
	return t, nil
}

func checkBuild(h mdigest.Hasher, nLeaves int) error {
	if h == nil {
		panic(fmt.Errorf("BUG: Merkle tree hasher must not be nil"))
	}
	if nLeaves == 0 {
		return ErrNoElements
	}
	if !isPowerOfTwo(nLeaves) {
		return LeafCountError{Count: nLeaves}
	}
	return nil
}

// newTree allocates a tree with room for nLeaves leaves.
// The caller must fill in the leaves and then call complete.
func newTree(h mdigest.Hasher, nLeaves int) *Tree {
	// Any tree where every non-leaf node has exactly two children
	// has this many nodes.
	return &Tree{
		nodes:   make([]mdigest.Digest, 2*nLeaves-1),
		nLeaves: nLeaves,
		hasher:  h,
	}
}

// complete reads each row of nodes, starting at the leaves,
// merging them pairwise, left to right,
// and storing the results in the row above,
// until only the root remains.
func (t *Tree) complete() {
	h := t.hasher

	for layerWidth := t.nLeaves; layerWidth > 1; layerWidth >>= 1 {
		// A layer of width w starts at index w-1.
		readIdx := layerWidth - 1
		writeIdx := layerWidth/2 - 1

		for i := 0; i < layerWidth; i += 2 {
			t.nodes[writeIdx] = h.Node(t.nodes[readIdx+i], t.nodes[readIdx+i+1])
			writeIdx++
		}
	}
}

// Append returns a new tree whose leaves are the leaves of t
// followed by the leaf digests of elements.
//
// This is a full rebuild, not an incremental update:
// the cost is linear in the combined leaf count.
// The combined leaf count must be a power of two.
// t itself is not modified.
func (t *Tree) Append(elements [][]byte) (*Tree, error) {
	if t.empty() {
		return nil, ErrEmptyTree
	}

	total := t.nLeaves + len(elements)
	if !isPowerOfTwo(total) {
		return nil, LeafCountError{Count: total}
	}

	leaves := make([]mdigest.Digest, total)
	n := copy(leaves, t.leafRow())
	for i, e := range elements {
		leaves[n+i] = t.hasher.Leaf(e)
	}

	return BuildFromLeaves(t.hasher, leaves)
}

// Root returns the root digest of the tree.
func (t *Tree) Root() (mdigest.Digest, error) {
	if t.empty() {
		return mdigest.Digest{}, ErrEmptyTree
	}
	return t.nodes[0], nil
}

// LeafCount returns the number of leaves in the tree.
// It returns zero for an empty tree.
func (t *Tree) LeafCount() int {
	if t == nil {
		return 0
	}
	return t.nLeaves
}

// Height returns the number of levels below the root,
// which is also the length of every proof from [*Tree.Proof].
func (t *Tree) Height() int {
	if t.empty() {
		return 0
	}
	return bits.Len(uint(t.nLeaves)) - 1
}

// Leaf returns the leaf digest at the given index.
func (t *Tree) Leaf(idx int) (mdigest.Digest, error) {
	if t.empty() {
		return mdigest.Digest{}, ErrEmptyTree
	}
	if idx < 0 || idx >= t.nLeaves {
		return mdigest.Digest{}, LeafIndexError{Index: idx, LeafCount: t.nLeaves}
	}
	return t.nodes[t.nLeaves-1+idx], nil
}

// Leaves returns a copy of the leaf digests, in element order.
func (t *Tree) Leaves() []mdigest.Digest {
	if t.empty() {
		return nil
	}
	out := make([]mdigest.Digest, t.nLeaves)
	copy(out, t.leafRow())
	return out
}

// Hasher returns the hasher the tree was built with.
func (t *Tree) Hasher() mdigest.Hasher {
	if t == nil {
		return nil
	}
	return t.hasher
}

// leafRow is a view into the leaf digests of t.
// The caller must not modify the returned slice.
func (t *Tree) leafRow() []mdigest.Digest {
	return t.nodes[len(t.nodes)-t.nLeaves:]
}

func (t *Tree) empty() bool {
	return t == nil || t.nLeaves == 0
}

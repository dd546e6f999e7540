// Package mtree contains the Merkle tree engine:
// construction, append, inclusion proofs and proof verification
// over an ordered list of elements.
//
// The tree is binary and perfect: every leaf is at the same depth,
// so the leaf count must be a power of two.
// Other leaf counts are rejected with a [LeafCountError].
// No padding is applied.
//
// Digests are stored in one contiguous allocation,
// breadth-first from the root:
//
//	index:  0      1  2       3 4 5 6
//	node:   0123   01 23      0 1 2 3
//
// The root is at index 0, the leaves are the final n entries,
// and the children of the node at index p are at 2p+1 and 2p+2.
package mtree

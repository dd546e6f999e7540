// Package mcommit maintains a Merkle commitment over an ordered, growing list of elements.
//
// Anyone holding the root digest of the commitment can check
// that a single element sits at a given position in the list,
// using only a short inclusion proof and without seeing the rest of the list.
//
// The tree itself lives in [github.com/gordian-engine/mcommit/mtree],
// and the hash primitives live under [github.com/gordian-engine/mcommit/mdigest].
// This package adds the [Committer],
// which owns the current tree on behalf of many concurrent readers.
// Use [github.com/gordian-engine/mcommit/mshard] to commit to
// an erasure-coded payload instead of a list of elements.
package mcommit

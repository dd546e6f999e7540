// Package mdigesttest contains a compliance suite for [mdigest.Hasher] implementations.
package mdigesttest

import (
	"testing"

	"github.com/gordian-engine/mcommit/mdigest"
	"github.com/stretchr/testify/require"
)

type HasherFactory func() mdigest.Hasher

// TestHasherCompliance runs the behaviors that the Merkle tree engine
// relies on against the Hasher returned by f.
func TestHasherCompliance(t *testing.T, f HasherFactory) {
	t.Run("leaf is deterministic", func(t *testing.T) {
		t.Parallel()

		h := f()

		d1 := h.Leaf([]byte("deterministic_data"))
		d2 := h.Leaf([]byte("deterministic_data"))

		require.Equal(t, d1, d2)
	})

	t.Run("leaf accepts empty input", func(t *testing.T) {
		t.Parallel()

		h := f()

		require.Equal(t, h.Leaf(nil), h.Leaf([]byte{}))
		require.NotEqual(t, mdigest.Digest{}, h.Leaf(nil))
	})

	t.Run("leaf respects content", func(t *testing.T) {
		t.Parallel()

		h := f()

		require.NotEqual(t, h.Leaf([]byte("hello")), h.Leaf([]byte("hellp")))
	})

	t.Run("node is deterministic", func(t *testing.T) {
		t.Parallel()

		h := f()

		l := h.Leaf([]byte("left"))
		r := h.Leaf([]byte("right"))

		require.Equal(t, h.Node(l, r), h.Node(l, r))
	})

	t.Run("node respects order", func(t *testing.T) {
		t.Parallel()

		h := f()

		l := h.Leaf([]byte("left"))
		r := h.Leaf([]byte("right"))

		require.NotEqual(t, h.Node(l, r), h.Node(r, l))
	})

	t.Run("node respects both children", func(t *testing.T) {
		t.Parallel()

		h := f()

		l := h.Leaf([]byte("left"))
		r := h.Leaf([]byte("right"))
		n := h.Node(l, r)

		changedLeft := l
		changedLeft[mdigest.Size-1] ^= 1
		require.NotEqual(t, n, h.Node(changedLeft, r))

		changedRight := r
		changedRight[0] ^= 1
		require.NotEqual(t, n, h.Node(l, changedRight))
	})
}

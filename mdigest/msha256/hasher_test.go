package msha256_test

import (
	"testing"

	"github.com/gordian-engine/mcommit/mdigest"
	"github.com/gordian-engine/mcommit/mdigest/mdigesttest"
	"github.com/gordian-engine/mcommit/mdigest/msha256"
	"github.com/stretchr/testify/require"
)

func TestCompliance(t *testing.T) {
	t.Parallel()

	mdigesttest.TestHasherCompliance(t, func() mdigest.Hasher {
		return msha256.Hasher{}
	})
}

func TestHasher_Node_vector(t *testing.T) {
	t.Parallel()

	h := msha256.Hasher{}
	root := h.Node(h.Leaf([]byte("hola")), h.Leaf([]byte("moikka")))
	require.Equal(t, "12954e3a4052111feb7b6997462ec2711e6339c51fdab23ddfbc407567809d7c", root.String())
}

package mtest

import (
	"math/rand/v2"
	"testing"

	"github.com/minio/sha256-simd"
)

// RandomDataForTest returns a byte slice of size sz
// containing pseudorandom data, derived from a seed based on the test name.
func RandomDataForTest(t *testing.T, sz int) []byte {
	// A 32-byte digest is exactly a ChaCha8 seed,
	// whatever the length of the test name.
	seed := sha256.Sum256([]byte(t.Name()))
	chacha := rand.NewChaCha8(seed)

	out := make([]byte, sz)

	if _, err := chacha.Read(out); err != nil {
		panic(err)
	}

	return out
}

// RandomElementsForTest returns n elements of elemSize bytes each,
// carved out of a single [RandomDataForTest] allocation.
func RandomElementsForTest(t *testing.T, n, elemSize int) [][]byte {
	data := RandomDataForTest(t, n*elemSize)

	out := make([][]byte, n)
	for i := range out {
		out[i] = data[i*elemSize : (i+1)*elemSize : (i+1)*elemSize]
	}
	return out
}

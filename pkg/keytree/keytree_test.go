package keytree

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveDeterministic(t *testing.T) {
	master := sha256.Sum256([]byte("test"))

	first := Derive(master[:], "Happy Coder", []string{"analytics", "id"})
	for i := 0; i < 5; i++ {
		again := Derive(master[:], "Happy Coder", []string{"analytics", "id"})
		assert.Equal(t, first, again)
	}
}

func TestDeriveStepwiseMatchesDerive(t *testing.T) {
	master := sha256.Sum256([]byte("test"))

	root := DeriveRoot(master[:], "Happy Coder")
	child := DeriveChild(root, "analytics")
	leaf := DeriveChild(child, "id")

	combined := Derive(master[:], "Happy Coder", []string{"analytics", "id"})
	assert.Equal(t, leaf.Key, combined)
}

func TestDomainSeparation(t *testing.T) {
	master := sha256.Sum256([]byte("test"))
	path := []string{"content"}

	a := Derive(master[:], "A", path)
	b := Derive(master[:], "B", path)
	assert.NotEqual(t, a, b)

	// Separation must also hold at the root, before any path steps.
	assert.NotEqual(t, DeriveRoot(master[:], "A"), DeriveRoot(master[:], "B"))
}

func TestPathSeparation(t *testing.T) {
	master := sha256.Sum256([]byte("test"))

	assert.NotEqual(t,
		Derive(master[:], "Happy Coder", []string{"content"}),
		Derive(master[:], "Happy Coder", []string{"analytics"}))
	assert.NotEqual(t,
		Derive(master[:], "Happy Coder", nil),
		Derive(master[:], "Happy Coder", []string{"content"}))
}

func TestDifferentMastersDiverge(t *testing.T) {
	m1 := sha256.Sum256([]byte("one"))
	m2 := sha256.Sum256([]byte("two"))

	assert.NotEqual(t,
		Derive(m1[:], "Happy Coder", []string{"content"}),
		Derive(m2[:], "Happy Coder", []string{"content"}))
}

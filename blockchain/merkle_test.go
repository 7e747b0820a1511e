package blockchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMerkleTreeRejectsEmptyInput(t *testing.T) {
	_, err := NewMerkleTree(nil)
	assert.ErrorIs(t, err, ErrEmptyMerkleInput)
}

func TestNewMerkleTreeSingleLeaf(t *testing.T) {
	tree, err := NewMerkleTree([][]byte{[]byte("leaf")})
	require.NoError(t, err)
	assert.Len(t, tree.Root.Data, 32)
}

func TestNewMerkleTreeIsDeterministic(t *testing.T) {
	leaves := [][]byte{[]byte("a"), []byte("b"), []byte("c")}

	first, err := NewMerkleTree(leaves)
	require.NoError(t, err)
	second, err := NewMerkleTree(leaves)
	require.NoError(t, err)

	assert.Equal(t, first.Root.Data, second.Root.Data)
}

func TestNewMerkleTreeDiffersOnDifferentInput(t *testing.T) {
	a, err := NewMerkleTree([][]byte{[]byte("a"), []byte("b")})
	require.NoError(t, err)
	b, err := NewMerkleTree([][]byte{[]byte("a"), []byte("c")})
	require.NoError(t, err)

	assert.NotEqual(t, a.Root.Data, b.Root.Data)
}

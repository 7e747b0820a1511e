package blockchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerchain/peerchain/wallet"
)

// testAddress returns the address of a freshly generated wallet, for tests
// that only need some valid coinbase recipient.
func testAddress(t *testing.T) string {
	t.Helper()
	w, err := wallet.New()
	require.NoError(t, err)
	return string(w.Address())
}

func TestGenesisBlockSatisfiesDifficulty(t *testing.T) {
	coinbase, err := NewCoinbase(testAddress(t))
	require.NoError(t, err)

	block, err := Genesis(*coinbase)
	require.NoError(t, err)

	assert.True(t, satisfiesDifficulty(block.Hash, Difficulty))
	assert.Empty(t, block.PrevHash)
	assert.Equal(t, 0, block.Index)
}

func TestBlockHashIsStableAcrossTimestampAndIndex(t *testing.T) {
	coinbase, err := NewCoinbase(testAddress(t))
	require.NoError(t, err)

	a := &Block{PrevHash: []byte("prev"), Index: 1, Timestamp: 100, Transactions: []Transaction{*coinbase}}
	b := &Block{PrevHash: []byte("prev"), Index: 99, Timestamp: 999999, Transactions: []Transaction{*coinbase}}

	require.NoError(t, a.Mine())
	require.NoError(t, b.Mine())

	encodedA, err := a.Encode()
	require.NoError(t, err)
	encodedB, err := b.Encode()
	require.NoError(t, err)

	assert.Equal(t, encodedA, encodedB, "timestamp and index are excluded from the encoding")
}

func TestNewBlockExtendsPrevHash(t *testing.T) {
	coinbase, err := NewCoinbase(testAddress(t))
	require.NoError(t, err)

	block, err := NewBlock([]Transaction{*coinbase}, []byte("parent-hash"), 5)
	require.NoError(t, err)

	assert.Equal(t, []byte("parent-hash"), block.PrevHash)
	assert.Equal(t, 5, block.Index)
	assert.True(t, satisfiesDifficulty(block.Hash, Difficulty))
}

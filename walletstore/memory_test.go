package walletstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	m := NewMemory()
	data := WalletData{PrivateKey: []byte{1, 2, 3}, PublicKey: []byte{4, 5, 6}, PublicKeyHash: []byte{7, 8, 9}}

	require.NoError(t, m.Store("addr-1", data))

	got, err := m.Load("addr-1")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestMemoryStoreLoadMissing(t *testing.T) {
	m := NewMemory()

	_, err := m.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

package walletstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenBadger(dir)
	require.NoError(t, err)
	defer store.Close()

	data := WalletData{PrivateKey: []byte{9, 9, 9}, PublicKey: []byte{1, 1, 1}, PublicKeyHash: []byte{2, 2, 2}}
	require.NoError(t, store.Store("addr-1", data))

	got, err := store.Load("addr-1")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestBadgerStoreLoadMissing(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenBadger(dir)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

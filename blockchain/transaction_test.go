package blockchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerchain/peerchain/wallet"
	"github.com/peerchain/peerchain/walletstore"
)

func TestCoinbaseIsRecognized(t *testing.T) {
	tx, err := NewCoinbase(testAddress(t))
	require.NoError(t, err)

	assert.True(t, tx.IsCoinbase())
	assert.NoError(t, tx.Verify(nil), "coinbase transactions skip verification")
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	ws := wallet.NewWallets(walletstore.NewMemory())
	fromAddr, err := ws.AddWallet()
	require.NoError(t, err)
	toAddr, err := ws.AddWallet()
	require.NoError(t, err)

	chain, err := New(fromAddr)
	require.NoError(t, err)

	tx, err := New(fromAddr, toAddr, 3, chain, ws.Store())
	require.NoError(t, err)

	require.NoError(t, chain.VerifyTransaction(tx))
}

func TestVerifyRejectsTamperedOutput(t *testing.T) {
	ws := wallet.NewWallets(walletstore.NewMemory())
	fromAddr, err := ws.AddWallet()
	require.NoError(t, err)
	toAddr, err := ws.AddWallet()
	require.NoError(t, err)

	chain, err := New(fromAddr)
	require.NoError(t, err)

	tx, err := New(fromAddr, toAddr, 3, chain, ws.Store())
	require.NoError(t, err)

	tx.Outputs[0].Value = 1000

	err = chain.VerifyTransaction(tx)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifyRejectsMissingPrevTransaction(t *testing.T) {
	ws := wallet.NewWallets(walletstore.NewMemory())
	fromAddr, err := ws.AddWallet()
	require.NoError(t, err)

	chain, err := New(fromAddr)
	require.NoError(t, err)

	tx := &Transaction{
		Inputs:  []TxInput{{ID: []byte("nonexistent"), Out: 0, PublicKey: []byte("key")}},
		Outputs: []TxOutput{},
	}

	err = chain.VerifyTransaction(tx)
	assert.ErrorIs(t, err, ErrTxnNotFound)
}

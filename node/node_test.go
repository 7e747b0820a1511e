package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerchain/peerchain/blockchain"
	"github.com/peerchain/peerchain/wallet"
	"github.com/peerchain/peerchain/walletstore"
)

// newTestNode builds a Node and immediately closes over its handler
// directly (via n.handle), bypassing the Run goroutine, so tests stay
// deterministic instead of racing a background mailbox consumer.
func newTestNode(t *testing.T) (*Node, *wallet.Wallets, string) {
	t.Helper()

	ws := wallet.NewWallets(walletstore.NewMemory())
	addr, err := ws.AddWallet()
	require.NoError(t, err)

	n := New("test-node", ws, nil, nil, nil)
	return n, ws, addr
}

func TestCreateBlockchainHandler(t *testing.T) {
	n, _, addr := newTestNode(t)

	n.handle(CreateBlockchain{Addr: addr})

	require.NotNil(t, n.chain)
	assert.Equal(t, 1, n.chain.Length())
}

func TestUpdateRoutingInfoFiltersSelf(t *testing.T) {
	n, _, _ := newTestNode(t)

	otherMailbox := make(chan Message, 1)
	other := &Handle{address: "other", mailbox: otherMailbox}

	n.handle(UpdateRoutingInfo{Peers: []*Handle{n.self, other}})

	require.Len(t, n.peers, 1)
	assert.Equal(t, "other", n.peers[0].Address())
}

func TestAddTransactionAndMineExtendsChain(t *testing.T) {
	n, _, addr := newTestNode(t)
	n.handle(CreateBlockchain{Addr: addr})

	toWs := wallet.NewWallets(walletstore.NewMemory())
	toAddr, err := toWs.AddWallet()
	require.NoError(t, err)

	n.handle(AddTransactionAndMine{From: addr, To: toAddr, Amount: 5})

	require.Equal(t, 2, n.chain.Length())

	minedBlock := n.chain.Blocks[len(n.chain.Blocks)-1]
	require.Len(t, minedBlock.Transactions, 2, "mined block must carry both the transfer and its coinbase reward")

	fromPkh, err := wallet.PublicKeyHashFromAddress(addr)
	require.NoError(t, err)
	toPkh, err := wallet.PublicKeyHashFromAddress(toAddr)
	require.NoError(t, err)

	assert.Equal(t, int32(35), balanceOf(n.chain, fromPkh), "sender keeps 15 change plus the 20 coinbase reward")
	assert.Equal(t, int32(5), balanceOf(n.chain, toPkh))
}

func balanceOf(chain *blockchain.BlockChain, pkh []byte) int32 {
	var balance int32
	for _, tx := range chain.FindUnspentTransactions(pkh) {
		for _, out := range tx.Outputs {
			if out.IsLockedWith(pkh) {
				balance += out.Value
			}
		}
	}
	return balance
}

func TestOnBlockchainAdoptsOnlyIfFresher(t *testing.T) {
	n, _, addr := newTestNode(t)
	n.handle(CreateBlockchain{Addr: addr})
	original := n.chain

	shorter, err := blockchain.New(addr)
	require.NoError(t, err)
	n.handle(Blockchain{Chain: shorter})
	assert.Same(t, original, n.chain, "a chain of equal length is not adopted")

	longer, err := blockchain.New(addr)
	require.NoError(t, err)
	coinbase, err := blockchain.NewCoinbase(addr)
	require.NoError(t, err)
	block, err := blockchain.NewBlock([]blockchain.Transaction{*coinbase}, longer.LastHash, longer.Length())
	require.NoError(t, err)
	longer.AddBlock(*block)

	n.handle(Blockchain{Chain: longer})
	assert.Same(t, longer, n.chain, "a strictly longer chain is adopted")
}

func TestOnBlockDedupsAlreadySeenBlocks(t *testing.T) {
	n, _, addr := newTestNode(t)
	n.handle(CreateBlockchain{Addr: addr})

	coinbase, err := blockchain.NewCoinbase(addr)
	require.NoError(t, err)
	block, err := blockchain.NewBlock([]blockchain.Transaction{*coinbase}, n.chain.LastHash, n.chain.Length())
	require.NoError(t, err)

	n.handle(Block{Block: block})
	require.Len(t, n.chain.MemoryPool, 1)

	n.handle(Block{Block: block})
	assert.Len(t, n.chain.MemoryPool, 1, "a re-delivered block is deduped, not reprocessed")
}

func TestPrintWalletBalanceDoesNotPanicWithoutChain(t *testing.T) {
	n, _, _ := newTestNode(t)
	assert.NotPanics(t, func() {
		n.handle(PrintWalletBalance{Pkh: []byte("whatever")})
	})
}

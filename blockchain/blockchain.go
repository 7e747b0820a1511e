package blockchain

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
)

// BlockMemoryPoolSize is the candidate length at which a memory-pool chain
// is promoted into the committed chain.
const BlockMemoryPoolSize = 2

// BlockChain is a node's local replica of the ledger: committed blocks plus
// a holding area of not-yet-confirmed candidate successor sequences.
type BlockChain struct {
	Blocks     []Block
	LastHash   []byte
	MemoryPool [][]Block
}

// New builds a coinbase transaction paying address, wraps it in a mined
// genesis block, and returns a chain of length 1.
func New(address string) (*BlockChain, error) {
	coinbase, err := NewCoinbase(address)
	if err != nil {
		return nil, err
	}

	genesis, err := Genesis(*coinbase)
	if err != nil {
		return nil, err
	}

	return &BlockChain{
		Blocks:   []Block{*genesis},
		LastHash: genesis.Hash,
	}, nil
}

// Length reports how many blocks have been committed.
func (chain *BlockChain) Length() int {
	return len(chain.Blocks)
}

// AddBlock appends b unconditionally and updates LastHash.
func (chain *BlockChain) AddBlock(b Block) {
	chain.Blocks = append(chain.Blocks, b)
	chain.LastHash = b.Hash
}

// FindUnspentTransactions returns every transaction holding at least one
// output locked to pkh that hasn't since been spent. Blocks are scanned
// newest-to-oldest; the same transaction may be returned once per eligible
// output — callers that need unique transactions dedup by txid themselves.
func (chain *BlockChain) FindUnspentTransactions(pkh []byte) []Transaction {
	var unspent []Transaction
	spent := make(map[string][]int32)

	for i := len(chain.Blocks) - 1; i >= 0; i-- {
		block := chain.Blocks[i]

		for _, tx := range block.Transactions {
			txID := hex.EncodeToString(tx.ID)

		outputs:
			for outIdx, out := range tx.Outputs {
				for _, spentIdx := range spent[txID] {
					if spentIdx == int32(outIdx) {
						continue outputs
					}
				}
				if out.IsLockedWith(pkh) {
					unspent = append(unspent, tx)
				}
			}

			if !tx.IsCoinbase() {
				for _, in := range tx.Inputs {
					if in.UsesKey(pkh) {
						inID := hex.EncodeToString(in.ID)
						spent[inID] = append(spent[inID], in.Out)
					}
				}
			}
		}
	}

	return unspent
}

// FindSpendableOutputs walks FindUnspentTransactions and accumulates
// outputs locked to pkh until the running total reaches amount, stopping
// as soon as it does. The second return value maps hex(txid) to the
// indices of outputs selected from that transaction.
func (chain *BlockChain) FindSpendableOutputs(pkh []byte, amount int32) (int32, map[string][]int32) {
	selected := make(map[string][]int32)
	var accumulated int32

	unspent := chain.FindUnspentTransactions(pkh)

accumulate:
	for _, tx := range unspent {
		txID := hex.EncodeToString(tx.ID)

		for outIdx, out := range tx.Outputs {
			if out.IsLockedWith(pkh) && accumulated < amount {
				accumulated += out.Value
				selected[txID] = append(selected[txID], int32(outIdx))

				if accumulated >= amount {
					break accumulate
				}
			}
		}
	}

	return accumulated, selected
}

// FindTransaction returns the transaction whose ID matches id, scanning
// blocks newest-to-oldest and stopping once the genesis block (empty
// PrevHash) has been processed.
func (chain *BlockChain) FindTransaction(id []byte) (Transaction, error) {
	for i := len(chain.Blocks) - 1; i >= 0; i-- {
		block := chain.Blocks[i]

		for _, tx := range block.Transactions {
			if bytes.Equal(tx.ID, id) {
				return tx, nil
			}
		}

		if len(block.PrevHash) == 0 {
			break
		}
	}
	return Transaction{}, ErrTxnNotFound
}

// SignTransaction resolves each input's referenced prior transaction and
// delegates to Transaction.Sign.
func (chain *BlockChain) SignTransaction(tx *Transaction, privateKey *btcec.PrivateKey) error {
	prevTxns := make(map[string]Transaction)

	for _, in := range tx.Inputs {
		prevTx, err := chain.FindTransaction(in.ID)
		if err != nil {
			return err
		}
		prevTxns[hex.EncodeToString(in.ID)] = prevTx
	}

	return tx.Sign(privateKey, prevTxns)
}

// VerifyTransaction resolves each input's referenced prior transaction and
// delegates to Transaction.Verify.
func (chain *BlockChain) VerifyTransaction(tx *Transaction) error {
	if tx.IsCoinbase() {
		return nil
	}

	prevTxns := make(map[string]Transaction)
	for _, in := range tx.Inputs {
		prevTx, err := chain.FindTransaction(in.ID)
		if err != nil {
			return err
		}
		prevTxns[hex.EncodeToString(in.ID)] = prevTx
	}

	return tx.Verify(prevTxns)
}

// AddBlockToMemoryPool is the entry point for a gossiped block. If the pool
// is empty, b is accepted into a fresh one-block candidate only when it
// extends the committed chain directly; otherwise it's dropped. If the
// pool is non-empty, b is appended to every candidate whose last block it
// extends — a block that matches the chain head but no candidate is
// dropped silently rather than starting a new candidate (preserved
// simulation quirk). ClearMemoryPool then runs to promote any candidate
// that has reached BlockMemoryPoolSize.
func (chain *BlockChain) AddBlockToMemoryPool(b Block) {
	lastCommitted := chain.Blocks[len(chain.Blocks)-1]

	if len(chain.MemoryPool) == 0 {
		if b.Index == chain.Length() && b.Timestamp >= lastCommitted.Timestamp && bytes.Equal(b.PrevHash, chain.LastHash) {
			chain.MemoryPool = append(chain.MemoryPool, []Block{b})
		}
		chain.ClearMemoryPool()
		return
	}

	for i, candidate := range chain.MemoryPool {
		last := candidate[len(candidate)-1]
		if b.Index == last.Index+1 && b.Timestamp >= last.Timestamp && bytes.Equal(b.PrevHash, last.Hash) {
			chain.MemoryPool[i] = append(candidate, b)
		}
	}

	chain.ClearMemoryPool()
}

// ClearMemoryPool commits the first candidate whose length has reached
// BlockMemoryPoolSize (appending its blocks via AddBlock) and empties the
// entire pool. If no candidate qualifies, the pool is left untouched.
func (chain *BlockChain) ClearMemoryPool() {
	for _, candidate := range chain.MemoryPool {
		if len(candidate) == BlockMemoryPoolSize {
			for _, b := range candidate {
				chain.AddBlock(b)
			}
			chain.MemoryPool = nil
			return
		}
	}
}

package blockchain

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/big"
	"time"

	"github.com/peerchain/peerchain/hashutil"
)

// Difficulty is the 128-bit target a block's hash must fall under: the
// first 16 bytes of the hash, read big-endian, must compare strictly less
// than Difficulty. This is the development-tier value; a production
// deployment would tighten it considerably.
var Difficulty = func() *big.Int {
	d, _ := new(big.Int).SetString("0fffffffffffffffffffffffffffffff", 16)
	return d
}()

// Block is a header plus its transaction set. Hash is computed over Encode,
// which deliberately omits Timestamp and Index — two blocks that agree on
// PrevHash, transaction content, Nonce and Difficulty hash identically
// regardless of when they were built. The memory pool consults Timestamp
// directly to order candidates instead.
type Block struct {
	Hash         []byte
	PrevHash     []byte
	Index        int
	Timestamp    int64
	Nonce        uint64
	Difficulty   *big.Int
	Transactions []Transaction
}

// Encode returns the canonical byte encoding that's hashed and mined over:
// prev_hash ∥ merkle_root[:16] ∥ nonce_le(8) ∥ difficulty_le(16).
func (b *Block) Encode() ([]byte, error) {
	leaves := make([][]byte, len(b.Transactions))
	for i, tx := range b.Transactions {
		leaves[i] = tx.Encode()
	}

	tree, err := NewMerkleTree(leaves)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(b.PrevHash)
	buf.Write(tree.Root.Data[:16])

	var nonceBytes [8]byte
	binary.LittleEndian.PutUint64(nonceBytes[:], b.Nonce)
	buf.Write(nonceBytes[:])

	buf.Write(encodeU128LE(b.Difficulty))

	return buf.Bytes(), nil
}

// encodeU128LE renders v as 16 little-endian bytes, zero-padded. v must fit
// in 128 bits.
func encodeU128LE(v *big.Int) []byte {
	be := v.Bytes()
	out := make([]byte, 16)
	for i := 0; i < len(be) && i < 16; i++ {
		out[i] = be[len(be)-1-i]
	}
	return out
}

// satisfiesDifficulty reports whether the first 16 bytes of hash, read as a
// big-endian u128, fall strictly under target.
func satisfiesDifficulty(hash []byte, target *big.Int) bool {
	value := new(big.Int).SetBytes(hash[:16])
	return value.Cmp(target) < 0
}

// Mine searches nonces until the block's hash satisfies Difficulty,
// mutating Hash and Nonce in place. A nil Difficulty defaults to the
// package-wide target before mining starts.
func (b *Block) Mine() error {
	if b.Difficulty == nil {
		b.Difficulty = Difficulty
	}

	for nonce := uint64(0); nonce < math.MaxUint64; nonce++ {
		b.Nonce = nonce

		encoded, err := b.Encode()
		if err != nil {
			return err
		}
		hash := hashutil.Hash(encoded)

		if satisfiesDifficulty(hash, b.Difficulty) {
			b.Hash = hash
			return nil
		}
	}
	return ErrProofOfWorkExhausted
}

// NewBlock builds an unmined block extending prevHash at the given chain
// index, then mines it.
func NewBlock(transactions []Transaction, prevHash []byte, index int) (*Block, error) {
	b := &Block{
		PrevHash:     prevHash,
		Index:        index,
		Timestamp:    time.Now().Unix(),
		Difficulty:   Difficulty,
		Transactions: transactions,
	}
	if err := b.Mine(); err != nil {
		return nil, err
	}
	return b, nil
}

// Genesis builds and mines the chain's first block, wrapping the given
// coinbase transaction as its only transaction.
func Genesis(coinbase Transaction) (*Block, error) {
	return NewBlock([]Transaction{coinbase}, []byte{}, 0)
}

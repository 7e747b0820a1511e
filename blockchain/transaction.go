package blockchain

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/peerchain/peerchain/hashutil"
	"github.com/peerchain/peerchain/wallet"
	"github.com/peerchain/peerchain/walletstore"
)

// CoinbaseReward is the number of tokens a coinbase transaction mints.
const CoinbaseReward = 20

/*
   Transactions are composed of inputs and outputs rather than containing
   direct data. Inputs reference previous outputs (proving funds exist);
   outputs define where value goes and what change returns to the sender.
   This indirection is what the whole UTXO model rests on: tamper with a
   past transaction and every later reference to it breaks.
*/

// Transaction is a single ledger entry: a unique ID and the inputs it
// spends and outputs it creates.
type Transaction struct {
	ID      []byte
	Inputs  []TxInput
	Outputs []TxOutput
}

// Encode returns the canonical byte encoding used for hashing and signing:
// id ∥ concat(encode(input)) ∥ concat(encode(output)). The id field is
// whatever the caller left it as — callers that need the "unsigned" digest
// zero it first.
func (tx Transaction) Encode() []byte {
	var buf bytes.Buffer
	buf.Write(tx.ID)
	for _, in := range tx.Inputs {
		buf.Write(in.Encode())
	}
	for _, out := range tx.Outputs {
		buf.Write(out.Encode())
	}
	return buf.Bytes()
}

// Hash returns SHA256(encode(tx)) with the ID field zeroed, i.e. the
// transaction's own identifier.
func (tx Transaction) Hash() []byte {
	txCopy := tx
	txCopy.ID = []byte{}
	return hashutil.Hash(txCopy.Encode())
}

// IsCoinbase reports whether tx is a coinbase transaction: exactly one
// input, with an empty id and Out == -1.
func (tx *Transaction) IsCoinbase() bool {
	return len(tx.Inputs) == 1 &&
		len(tx.Inputs[0].ID) == 0 &&
		tx.Inputs[0].Out == -1
}

// NewCoinbase builds the reward transaction paying to. The input's public
// key carries 24 random bytes purely to make the transaction (and its id)
// unique across blocks.
func NewCoinbase(to string) (*Transaction, error) {
	data := make([]byte, 24)
	if _, err := rand.Read(data); err != nil {
		return nil, err
	}

	txIn := TxInput{ID: []byte{}, Out: -1, Signature: nil, PublicKey: data}
	txOut, err := NewTxOutput(CoinbaseReward, to)
	if err != nil {
		return nil, err
	}

	tx := Transaction{Inputs: []TxInput{txIn}, Outputs: []TxOutput{txOut}}
	tx.ID = tx.Hash()
	return &tx, nil
}

// New builds a non-coinbase transaction moving amount tokens from fromAddr
// to toAddr, spending whatever of fromAddr's unspent outputs are needed and
// returning change to fromAddr. The signer material for fromAddr comes from
// store, per the wallet-persistence external collaborator.
//
// An address that fails the checksum check is warned about, not rejected.
// An address that does not decode to version ∥ public_key_hash ∥ checksum
// cannot lock an output, and New returns that decode error.
func New(fromAddr, toAddr string, amount int32, chain *BlockChain, store walletstore.Store) (*Transaction, error) {
	if !wallet.IsAddressValid(fromAddr) {
		fmt.Printf("WARNING: address %s is not valid\n", fromAddr)
	}
	if !wallet.IsAddressValid(toAddr) {
		fmt.Printf("WARNING: address %s is not valid\n", toAddr)
	}

	data, err := store.Load(fromAddr)
	if err != nil {
		return nil, err
	}
	privateKey, _ := btcec.PrivKeyFromBytes(data.PrivateKey)

	acc, validOutputs := chain.FindSpendableOutputs(data.PublicKeyHash, amount)
	if acc < amount {
		return nil, ErrInsufficientFunds
	}

	var inputs []TxInput
	for txID, outs := range validOutputs {
		id, err := hex.DecodeString(txID)
		if err != nil {
			return nil, err
		}
		for _, out := range outs {
			inputs = append(inputs, TxInput{
				ID:        id,
				Out:       out,
				Signature: nil,
				PublicKey: data.PublicKey,
			})
		}
	}

	toOut, err := NewTxOutput(amount, toAddr)
	if err != nil {
		return nil, err
	}
	outputs := []TxOutput{toOut}
	if acc > amount {
		changeOut, err := NewTxOutput(acc-amount, fromAddr)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, changeOut)
	}

	tx := Transaction{Inputs: inputs, Outputs: outputs}
	tx.ID = tx.Hash()

	if err := chain.SignTransaction(&tx, privateKey); err != nil {
		return nil, err
	}
	return &tx, nil
}

// Sign fills in every input's signature. For each input, it hashes a copy
// of the transaction with that input's PublicKey field temporarily set to
// the referenced output's locking hash (and every other input's key
// blanked), signs that digest, and writes the signature back into the
// original transaction. prevTxns maps hex(txid) to the transaction that
// created the output being spent.
func (tx *Transaction) Sign(privateKey *btcec.PrivateKey, prevTxns map[string]Transaction) error {
	if tx.IsCoinbase() {
		return nil
	}

	for _, in := range tx.Inputs {
		if _, ok := prevTxns[hex.EncodeToString(in.ID)]; !ok {
			return ErrMissingPrevTxn
		}
	}

	txCopy := tx.trimmedCopy()

	for i, in := range tx.Inputs {
		prevTx := prevTxns[hex.EncodeToString(in.ID)]

		txCopy.Inputs[i].Signature = nil
		txCopy.Inputs[i].PublicKey = prevTx.Outputs[in.Out].PublicKeyHash
		txCopy.ID = txCopy.Hash()
		txCopy.Inputs[i].PublicKey = nil

		sig := ecdsa.Sign(privateKey, txCopy.ID)
		tx.Inputs[i].Signature = sig.Serialize()
	}
	return nil
}

// Verify mirrors Sign's recipe per input and checks each signature against
// the referenced output's locking key.
func (tx *Transaction) Verify(prevTxns map[string]Transaction) error {
	if tx.IsCoinbase() {
		return nil
	}

	for _, in := range tx.Inputs {
		if _, ok := prevTxns[hex.EncodeToString(in.ID)]; !ok {
			return ErrMissingPrevTxn
		}
	}

	txCopy := tx.trimmedCopy()

	for i, in := range tx.Inputs {
		prevTx := prevTxns[hex.EncodeToString(in.ID)]

		txCopy.Inputs[i].Signature = nil
		txCopy.Inputs[i].PublicKey = prevTx.Outputs[in.Out].PublicKeyHash
		txCopy.ID = txCopy.Hash()
		txCopy.Inputs[i].PublicKey = nil

		sig, err := ecdsa.ParseSignature(in.Signature)
		if err != nil {
			return ErrSignatureInvalid
		}
		pubKey, err := btcec.ParsePubKey(in.PublicKey)
		if err != nil {
			return ErrSignatureInvalid
		}
		if !sig.Verify(txCopy.ID, pubKey) {
			return ErrSignatureInvalid
		}
	}
	return nil
}

// trimmedCopy returns a copy of tx with every input's Signature and
// PublicKey cleared — the shape both Sign and Verify hash over before
// filling in one input's fields at a time.
func (tx *Transaction) trimmedCopy() Transaction {
	inputs := make([]TxInput, len(tx.Inputs))
	for i, in := range tx.Inputs {
		inputs[i] = TxInput{ID: in.ID, Out: in.Out, Signature: nil, PublicKey: nil}
	}

	outputs := make([]TxOutput, len(tx.Outputs))
	for i, out := range tx.Outputs {
		outputs[i] = TxOutput{Value: out.Value, PublicKeyHash: out.PublicKeyHash}
	}

	return Transaction{ID: tx.ID, Inputs: inputs, Outputs: outputs}
}

// String renders a human-readable dump of the transaction, used in logs.
func (tx Transaction) String() string {
	var lines []string
	lines = append(lines, fmt.Sprintf("--- Transaction %x:", tx.ID))
	for i, in := range tx.Inputs {
		lines = append(lines, fmt.Sprintf("   Input %d:", i))
		lines = append(lines, fmt.Sprintf("     Previous TxID: %x", in.ID))
		lines = append(lines, fmt.Sprintf("     Output Index:  %d", in.Out))
		lines = append(lines, fmt.Sprintf("     Signature:     %x", in.Signature))
		lines = append(lines, fmt.Sprintf("     Public Key:    %x", in.PublicKey))
	}
	for i, out := range tx.Outputs {
		lines = append(lines, fmt.Sprintf("   Output %d:", i))
		lines = append(lines, fmt.Sprintf("     Value:           %d", out.Value))
		lines = append(lines, fmt.Sprintf("     Public Key Hash: %x", out.PublicKeyHash))
	}
	return strings.Join(lines, "\n")
}

package blockchain

import (
	"bytes"
	"encoding/binary"

	"github.com/peerchain/peerchain/hashutil"
	"github.com/peerchain/peerchain/wallet"
)

// TxOutput is an indivisible unit of value locked to a public key hash.
type TxOutput struct {
	Value         int32
	PublicKeyHash []byte
}

// NewTxOutput locks value tokens to addr: base58-decodes the address,
// strips the version byte and trailing checksum, and keeps the 20-byte
// public key hash.
func NewTxOutput(value int32, addr string) (TxOutput, error) {
	pkh, err := wallet.PublicKeyHashFromAddress(addr)
	if err != nil {
		return TxOutput{}, err
	}
	return TxOutput{Value: value, PublicKeyHash: pkh}, nil
}

// IsLockedWith reports whether this output is spendable by pkh.
func (out TxOutput) IsLockedWith(pkh []byte) bool {
	return bytes.Equal(out.PublicKeyHash, pkh)
}

// Encode returns the canonical byte encoding: int32_le(value) || pubKeyHash.
func (out TxOutput) Encode() []byte {
	var buf bytes.Buffer
	var valBytes [4]byte
	binary.LittleEndian.PutUint32(valBytes[:], uint32(out.Value))
	buf.Write(valBytes[:])
	buf.Write(out.PublicKeyHash)
	return buf.Bytes()
}

// TxInput references an output being spent. A coinbase input has an empty
// ID and Out == -1. Signature is a DER-encoded ECDSA signature; empty for
// coinbase inputs.
type TxInput struct {
	ID        []byte
	Out       int32
	Signature []byte
	PublicKey []byte
}

// Encode returns the canonical byte encoding: id || int32_le(out) ||
// signature || publicKey.
func (in TxInput) Encode() []byte {
	var buf bytes.Buffer
	buf.Write(in.ID)
	var outBytes [4]byte
	binary.LittleEndian.PutUint32(outBytes[:], uint32(in.Out))
	buf.Write(outBytes[:])
	buf.Write(in.Signature)
	buf.Write(in.PublicKey)
	return buf.Bytes()
}

// UsesKey reports whether in's public key hashes to pkh — used when
// scanning inputs for already-spent outputs.
func (in TxInput) UsesKey(pkh []byte) bool {
	return bytes.Equal(hashutil.Hash160(in.PublicKey), pkh)
}

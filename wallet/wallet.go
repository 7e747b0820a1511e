package wallet

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/peerchain/peerchain/hashutil"
)

// Wallet holds a secp256k1 keypair and the address derived from it. Once
// produced a Wallet is immutable; persistence is the walletstore package's
// concern.
type Wallet struct {
	PrivateKey *btcec.PrivateKey
	PublicKey  []byte // 33-byte compressed SEC1 point
}

// New generates a fresh secp256k1 keypair and derives its address.
func New() (*Wallet, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}

	return &Wallet{
		PrivateKey: priv,
		PublicKey:  priv.PubKey().SerializeCompressed(),
	}, nil
}

// PublicKeyHash returns RIPEMD160(SHA256(public key)).
func (w *Wallet) PublicKeyHash() []byte {
	return hashutil.Hash160(w.PublicKey)
}

// Address derives the base58check address: version ∥ public_key_hash ∥
// checksum.
func (w *Wallet) Address() []byte {
	return deriveAddress(w.PublicKeyHash())
}

func deriveAddress(pubKeyHash []byte) []byte {
	versioned := append([]byte{hashutil.Version}, pubKeyHash...)
	checksum := hashutil.Checksum(versioned)
	full := append(versioned, checksum...)
	return hashutil.Base58Encode(full)
}

// IsAddressValid base58-decodes addr, recomputes its checksum, and reports
// whether it matches the trailing checksum bytes.
func IsAddressValid(addr string) bool {
	decoded, err := hashutil.Base58Decode([]byte(addr))
	if err != nil {
		return false
	}
	if len(decoded) != 1+20+hashutil.ChecksumLength {
		return false
	}

	version := decoded[0]
	pubKeyHash := decoded[1 : len(decoded)-hashutil.ChecksumLength]
	actualChecksum := decoded[len(decoded)-hashutil.ChecksumLength:]

	targetChecksum := hashutil.Checksum(append([]byte{version}, pubKeyHash...))
	return bytes.Equal(actualChecksum, targetChecksum)
}

// PublicKeyHashFromAddress strips the version byte and trailing checksum
// from addr, returning the 20-byte hash it locks to.
func PublicKeyHashFromAddress(addr string) ([]byte, error) {
	decoded, err := hashutil.Base58Decode([]byte(addr))
	if err != nil {
		return nil, err
	}
	if len(decoded) != 1+20+hashutil.ChecksumLength {
		return nil, ErrMalformedAddress
	}
	return decoded[1 : len(decoded)-hashutil.ChecksumLength], nil
}

// Hash160 returns RIPEMD160(SHA256(data)), exposed directly per the wallet
// component's interface.
func Hash160(data []byte) []byte {
	return hashutil.Hash160(data)
}

// Package hashutil collects the hashing and encoding primitives shared by
// the wallet, transaction, and block layers: SHA-256, Hash160
// (RIPEMD160-over-SHA256), the double-SHA256 checksum, and base58.
package hashutil

import (
	"crypto/sha256"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // matches the teacher's address derivation
)

// ChecksumLength is the number of checksum bytes appended to a
// base58check-encoded address.
const ChecksumLength = 4

// Version is the single address-format version byte.
const Version = byte(0x00)

// Hash returns SHA-256(data).
func Hash(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// Hash160 returns RIPEMD160(SHA256(data)), the locking key on a TXO.
func Hash160(data []byte) []byte {
	shaSum := sha256.Sum256(data)

	hasher := ripemd160.New()
	hasher.Write(shaSum[:])
	return hasher.Sum(nil)
}

// Checksum returns the first ChecksumLength bytes of double-SHA256(payload).
func Checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:ChecksumLength]
}

// Base58Encode base58-encodes raw bytes.
func Base58Encode(input []byte) []byte {
	return []byte(base58.Encode(input))
}

// Base58Decode reverses Base58Encode. Returns an error on malformed input
// instead of panicking, since it is called on caller-supplied addresses.
func Base58Decode(input []byte) ([]byte, error) {
	return base58.Decode(string(input))
}

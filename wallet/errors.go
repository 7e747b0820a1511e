package wallet

import "errors"

// ErrMalformedAddress is returned when a base58check address doesn't decode
// to the expected version ∥ public_key_hash ∥ checksum layout.
var ErrMalformedAddress = errors.New("wallet: malformed address")

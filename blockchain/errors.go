package blockchain

import "errors"

// Sentinel errors for the ledger. Cryptographic and chain-consistency
// failures are returned to the caller; network/IO errors are handled at
// the node layer and never reach here.
var (
	ErrInsufficientFunds = errors.New("blockchain: insufficient funds")
	ErrMissingPrevTxn    = errors.New("blockchain: referenced previous transaction not found")
	ErrSignatureInvalid  = errors.New("blockchain: signature verification failed")
	ErrTxnNotFound       = errors.New("blockchain: transaction not found")
	ErrEmptyMerkleInput  = errors.New("blockchain: merkle tree requires at least one leaf")

	// ErrProofOfWorkExhausted is returned on the practically-impossible event
	// that no nonce in the full uint64 range satisfies Difficulty.
	ErrProofOfWorkExhausted = errors.New("blockchain: exhausted nonce space without meeting difficulty")
)

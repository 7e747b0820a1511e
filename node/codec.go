package node

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/peerchain/peerchain/blockchain"
)

// cloneChain returns a deep, independent copy of chain by round-tripping it
// through CBOR. A Blockchain message is transmitted by value: without this,
// the sender and receiver would alias the same in-memory slices and a
// receiver's later mutation (committing a block, clearing the memory pool)
// would corrupt the sender's replica too.
func cloneChain(chain *blockchain.BlockChain) (*blockchain.BlockChain, error) {
	encoded, err := cbor.Marshal(chain)
	if err != nil {
		return nil, err
	}

	var clone blockchain.BlockChain
	if err := cbor.Unmarshal(encoded, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}

// cloneBlock deep-copies a single block the same way, for the Block
// message.
func cloneBlock(b *blockchain.Block) (*blockchain.Block, error) {
	encoded, err := cbor.Marshal(b)
	if err != nil {
		return nil, err
	}

	var clone blockchain.Block
	if err := cbor.Unmarshal(encoded, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}

package blockchain

import (
	"github.com/peerchain/peerchain/hashutil"
)

// MerkleNode is a single node in a MerkleTree. Leaf nodes carry
// SHA-256(leaf data); internal nodes carry SHA-256(left.Data || right.Data).
type MerkleNode struct {
	Left  *MerkleNode
	Right *MerkleNode
	Data  []byte
}

// MerkleTree commits a sequence of leaf byte-strings into a single root
// hash.
type MerkleTree struct {
	Root *MerkleNode
}

func newMerkleLeaf(data []byte) *MerkleNode {
	return &MerkleNode{Data: hashutil.Hash(data)}
}

func newMerkleParent(left, right *MerkleNode) *MerkleNode {
	combined := append(append([]byte{}, left.Data...), right.Data...)
	return &MerkleNode{Left: left, Right: right, Data: hashutil.Hash(combined)}
}

// NewMerkleTree builds a tree over leaves, duplicating the last leaf when
// the count is odd (classic Bitcoin parity fix). Fails with
// ErrEmptyMerkleInput when leaves is empty.
//
// The reduction runs len(leaves)/2 levels, not ceil(log2(n)) levels. For up
// to four leaves this produces the true root; for more it returns a node
// short of the root. That matches the system this package was distilled
// from and is preserved rather than corrected here — the simulation never
// mines more than two transactions per block.
func NewMerkleTree(leaves [][]byte) (*MerkleTree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyMerkleInput
	}

	data := leaves
	if len(data)%2 != 0 {
		data = append(append([][]byte{}, data...), data[len(data)-1])
	}

	nodes := make([]*MerkleNode, len(data))
	for i, leaf := range data {
		nodes[i] = newMerkleLeaf(leaf)
	}

	for i := 0; i < len(data)/2; i++ {
		var level []*MerkleNode
		for j := 0; j < len(nodes); j += 2 {
			level = append(level, newMerkleParent(nodes[j], nodes[j+1]))
		}
		nodes = level
	}

	return &MerkleTree{Root: nodes[0]}, nil
}

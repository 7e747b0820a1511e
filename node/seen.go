package node

import (
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

const seenCacheSize = 512

// seenBlocks deduplicates recently-gossiped block hashes so a node's logs
// and telemetry don't spam on a block it already processed arriving again
// from a different peer.
type seenBlocks struct {
	cache *lru.Cache[string, struct{}]
}

func newSeenBlocks() *seenBlocks {
	cache, _ := lru.New[string, struct{}](seenCacheSize)
	return &seenBlocks{cache: cache}
}

// observe records hash and reports whether it had already been seen.
func (s *seenBlocks) observe(hash []byte) bool {
	key := hex.EncodeToString(hash)
	_, seen := s.cache.Get(key)
	s.cache.Add(key, struct{}{})
	return seen
}

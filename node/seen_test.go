package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeenBlocksObserve(t *testing.T) {
	s := newSeenBlocks()

	assert.False(t, s.observe([]byte("hash-1")), "first sighting is unseen")
	assert.True(t, s.observe([]byte("hash-1")), "second sighting is seen")
	assert.False(t, s.observe([]byte("hash-2")), "a different hash is unseen")
}

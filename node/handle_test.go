package node

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHandleSendAndFull(t *testing.T) {
	mailbox := make(chan Message, 1)
	h := &Handle{id: uuid.New(), address: "peer-1", mailbox: mailbox}

	assert.True(t, h.Send(UpdateBlockchainFromKnownNodes{}), "first send has room")
	assert.False(t, h.Send(UpdateBlockchainFromKnownNodes{}), "second send hits the full mailbox and is dropped")
}

func TestHandleIs(t *testing.T) {
	mailbox := make(chan Message, 1)
	a := &Handle{id: uuid.New(), address: "a", mailbox: mailbox}
	b := &Handle{id: uuid.New(), address: "b", mailbox: mailbox}

	assert.True(t, a.Is(a))
	assert.False(t, a.Is(b))
}

func TestHandleAddressAndID(t *testing.T) {
	id := uuid.New()
	h := &Handle{id: id, address: "peer-7", mailbox: make(chan Message, 1)}

	assert.Equal(t, "peer-7", h.Address())
	assert.Equal(t, id.String(), h.ID())
}

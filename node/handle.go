package node

import "github.com/google/uuid"

// Handle is an opaque recipient reference to a node's mailbox: it carries
// enough to enqueue a message and to recognize the node it points at, but
// nothing about how that node is implemented. Peer lists (UpdateRoutingInfo
// payloads) are built from Handles, never from *Node directly.
type Handle struct {
	id      uuid.UUID
	address string
	mailbox chan<- Message
}

// Address returns the node's label, used in logs and telemetry.
func (h *Handle) Address() string {
	return h.address
}

// ID returns the node's session identity, used as the nodeId field on
// telemetry events.
func (h *Handle) ID() string {
	return h.id.String()
}

// Send enqueues msg on the node's mailbox without blocking; if the mailbox
// is full the send is dropped and reported to the caller as a failure, per
// the "log and don't abort" broadcast policy.
func (h *Handle) Send(msg Message) bool {
	select {
	case h.mailbox <- msg:
		return true
	default:
		return false
	}
}

// Is reports whether h and other refer to the same node. Pointer identity
// of the Handle is what UpdateRoutingInfo's self-filter uses.
func (h *Handle) Is(other *Handle) bool {
	return h == other
}

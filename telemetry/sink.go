// Package telemetry defines the best-effort observer-event stream a node
// emits as it processes messages, and a WebSocket fan-out implementation of
// it.
package telemetry

import "encoding/json"

// Event ids, one per node operation an observer might care about.
const (
	EventCreatedBlockchain         = "CreatedBlockchain"
	EventMinedTransaction          = "MinedTransaction"
	EventUpdatedRoutingInfo        = "UpdatedRoutingInfo"
	EventDownloadedBlockchain      = "DownloadedBlockchain"
	EventReceivedFresherBlockchain = "ReceivedFresherBlockchain"
	EventReceivedNewBlock          = "ReceivedNewBlock"
	EventSpawnedNode               = "SpawnedNode"
	EventCreatedWallet             = "CreatedWallet"
)

// Event is the JSON shape broadcast to observers.
type Event struct {
	NodeID  string          `json:"nodeId"`
	EventID string          `json:"eventId"`
	Details json.RawMessage `json:"details"`
}

// Sink is the optional external collaborator a node reports to. Broadcast
// is best-effort: implementations log their own failures and never return
// an error the caller would have to handle.
type Sink interface {
	Broadcast(evt Event)
}

// NopSink discards every event. It's the default for a node that isn't
// wired to an observer.
type NopSink struct{}

func (NopSink) Broadcast(Event) {}

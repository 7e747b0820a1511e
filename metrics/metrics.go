// Package metrics exposes Prometheus instrumentation for a simulated
// network of nodes: chain height, mempool candidate depth, known peers,
// and blocks mined versus received from gossip.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every collector a node reports to. node.New accepts a nil
// *Metrics, in which case that node records no metrics.
type Metrics struct {
	ChainHeight       *prometheus.GaugeVec
	MempoolCandidates *prometheus.GaugeVec
	PeersKnown        *prometheus.GaugeVec
	BlocksMined       *prometheus.CounterVec
	BlocksReceived    *prometheus.CounterVec
}

// New registers a fresh set of collectors against reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ChainHeight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "peerchain",
			Name:      "chain_height",
			Help:      "Number of committed blocks in the node's local chain replica.",
		}, []string{"node"}),
		MempoolCandidates: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "peerchain",
			Name:      "mempool_candidates",
			Help:      "Number of unconfirmed candidate chains held in the memory pool.",
		}, []string{"node"}),
		PeersKnown: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "peerchain",
			Name:      "peers_known",
			Help:      "Number of peer handles in the node's routing table.",
		}, []string{"node"}),
		BlocksMined: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peerchain",
			Name:      "blocks_mined_total",
			Help:      "Blocks this node mined itself.",
		}, []string{"node"}),
		BlocksReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peerchain",
			Name:      "blocks_received_total",
			Help:      "Blocks this node received via gossip.",
		}, []string{"node"}),
	}

	reg.MustRegister(m.ChainHeight, m.MempoolCandidates, m.PeersKnown, m.BlocksMined, m.BlocksReceived)
	return m
}

// Handler returns an http.Handler serving reg; the caller chooses where to
// mount it (cmd/simulate uses the conventional /metrics path). Unlike a package
// global registry, this takes the specific *prometheus.Registry New
// registered against, so a harness running several independent simulated
// networks doesn't have them clobber each other's metrics under one
// process-wide default registerer.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

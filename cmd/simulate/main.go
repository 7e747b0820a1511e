// Command simulate runs a small in-process peerchain network: it spawns a
// handful of gossiping nodes and wallets, seeds a genesis chain, drives a
// few transfers, and serves telemetry and metrics endpoints until killed.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vrecan/death/v3"
	"go.uber.org/zap"

	"github.com/peerchain/peerchain/metrics"
	"github.com/peerchain/peerchain/node"
	"github.com/peerchain/peerchain/telemetry"
	"github.com/peerchain/peerchain/wallet"
	"github.com/peerchain/peerchain/walletstore"
)

func main() {
	nodeCount := flag.Int("nodes", 4, "number of simulated nodes")
	telemetryAddr := flag.String("telemetry-addr", ":3012", "telemetry websocket listen address")
	metricsAddr := flag.String("metrics-addr", ":9090", "prometheus /metrics listen address")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	reg := prometheus.NewRegistry()
	stats := metrics.New(reg)

	hub := telemetry.NewHub(log)
	go serveTelemetry(*telemetryAddr, hub, log)
	go serveMetrics(*metricsAddr, reg, log)

	network := spawnNetwork(*nodeCount, log, hub, stats)

	network.seed()
	network.drive(log)

	d := death.NewDeath(syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	d.WaitForDeathWithFunc(func() {
		log.Info("shutting down")
		network.stop()
	})
}

func serveTelemetry(addr string, hub *telemetry.Hub, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/telemetry", hub)
	log.Info("telemetry listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("telemetry server stopped", zap.Error(err))
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	log.Info("metrics listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server stopped", zap.Error(err))
	}
}

// simNetwork is the harness's view of the running simulation: the nodes it
// spawned and the wallets it created for them.
type simNetwork struct {
	nodes     []*node.Node
	wallets   []*wallet.Wallets
	addresses []string
}

func spawnNetwork(count int, log *zap.Logger, sink telemetry.Sink, stats *metrics.Metrics) *simNetwork {
	net := &simNetwork{}

	for i := 0; i < count; i++ {
		addr := fmt.Sprintf("node-%d", i)
		wallets := wallet.NewWallets(walletstore.NewMemory())
		wallets.SetSink(sink)

		walletAddr, err := wallets.AddWallet()
		if err != nil {
			log.Fatal("failed to create wallet", zap.String("node", addr), zap.Error(err))
		}

		n := node.New(addr, wallets, log, sink, stats)
		go n.Run()

		net.nodes = append(net.nodes, n)
		net.wallets = append(net.wallets, wallets)
		net.addresses = append(net.addresses, walletAddr)
	}

	peerHandles := make([]*node.Handle, len(net.nodes))
	for i, n := range net.nodes {
		peerHandles[i] = n.Handle()
	}
	for _, n := range net.nodes {
		n.Handle().Send(node.UpdateRoutingInfo{Peers: peerHandles})
	}

	return net
}

// seed mints the genesis blockchain on the first node and lets every peer
// pull a copy of it.
func (net *simNetwork) seed() {
	if len(net.nodes) == 0 {
		return
	}

	net.nodes[0].Handle().Send(node.CreateBlockchain{Addr: net.addresses[0]})

	time.Sleep(100 * time.Millisecond)
	for _, n := range net.nodes[1:] {
		n.Handle().Send(node.UpdateBlockchainFromKnownNodes{})
	}
}

// drive fires off a couple of transfers between adjacent nodes so the
// running simulation has something to gossip about.
func (net *simNetwork) drive(log *zap.Logger) {
	if len(net.nodes) < 2 {
		return
	}

	time.Sleep(200 * time.Millisecond)
	for i := 0; i < len(net.nodes)-1; i++ {
		from := net.addresses[i]
		to := net.addresses[i+1]
		net.nodes[i].Handle().Send(node.AddTransactionAndMine{From: from, To: to, Amount: 5})
		log.Info("submitted transfer", zap.String("from", from), zap.String("to", to))
	}

	time.Sleep(200 * time.Millisecond)
	for i, n := range net.nodes {
		pkh, err := wallet.PublicKeyHashFromAddress(net.addresses[i])
		if err != nil {
			log.Error("bad address in simulation setup", zap.Error(err))
			continue
		}
		n.Handle().Send(node.PrintWalletBalance{Pkh: pkh})
	}
}

func (net *simNetwork) stop() {
	for _, n := range net.nodes {
		n.Close()
	}
}

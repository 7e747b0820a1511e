// Package node implements the gossip actor: one goroutine per simulated
// network participant, communicating only through mailbox channels. There
// is no shared memory between nodes — everything that crosses a node
// boundary goes through Message values, cloned via the codec so no two
// nodes ever alias the same blockchain slices.
package node

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peerchain/peerchain/blockchain"
	"github.com/peerchain/peerchain/metrics"
	"github.com/peerchain/peerchain/telemetry"
	"github.com/peerchain/peerchain/wallet"
)

// mailboxSize bounds how many pending messages a node will buffer before
// Handle.Send starts reporting failures.
const mailboxSize = 64

// Message is the closed set of things a node can receive. Each concrete
// type below implements it; the mailbox loop type-switches on the value.
type Message interface {
	isMessage()
}

// CreateBlockchain asks the node to mint a brand-new chain paying its
// genesis coinbase to addr.
type CreateBlockchain struct {
	Addr string
}

// UpdateRoutingInfo replaces the node's peer list. The receiving node's own
// Handle is filtered out via Handle.Is so a node never gossips to itself.
type UpdateRoutingInfo struct {
	Peers []*Handle
}

// AddTransactionAndMine asks the node to build, sign, and mine a block
// containing a transfer from From to To, then broadcast the result.
type AddTransactionAndMine struct {
	From   string
	To     string
	Amount int32
}

// RequestBlockchain asks the node to send its full chain back to Sender.
type RequestBlockchain struct {
	Sender *Handle
}

// UpdateBlockchainFromKnownNodes asks the node to request a fresh copy of
// the chain from every peer it knows about.
type UpdateBlockchainFromKnownNodes struct{}

// Blockchain delivers a peer's full chain. The node adopts it only if it's
// strictly longer than its own.
type Blockchain struct {
	Chain *blockchain.BlockChain
}

// Block delivers a single gossiped block, which is handed to
// AddBlockToMemoryPool and forwarded to peers if not already seen.
type Block struct {
	Block *blockchain.Block
}

// PrintWalletBalance asks the node to compute and log the balance locked to
// Pkh.
type PrintWalletBalance struct {
	Pkh []byte
}

func (CreateBlockchain) isMessage()              {}
func (UpdateRoutingInfo) isMessage()              {}
func (AddTransactionAndMine) isMessage()          {}
func (RequestBlockchain) isMessage()              {}
func (UpdateBlockchainFromKnownNodes) isMessage() {}
func (Blockchain) isMessage()                     {}
func (Block) isMessage()                          {}
func (PrintWalletBalance) isMessage()             {}

// Node is a single actor in the simulated network: its own chain replica,
// its own view of who else is out there, and a mailbox goroutine
// processing one message at a time, so its state never needs a mutex.
type Node struct {
	address string
	id      uuid.UUID
	chain   *blockchain.BlockChain
	wallets *wallet.Wallets
	peers   []*Handle
	self    *Handle

	mailbox chan Message
	seen    *seenBlocks
	log     *zap.Logger
	sink    telemetry.Sink
	stats   *metrics.Metrics
}

// New constructs a node labeled address, wired to wallets for signing
// AddTransactionAndMine requests. log, sink, and stats may all be nil, in
// which case a no-op logger, telemetry.NopSink, and disabled metrics are
// used respectively.
func New(address string, wallets *wallet.Wallets, log *zap.Logger, sink telemetry.Sink, stats *metrics.Metrics) *Node {
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = telemetry.NopSink{}
	}

	mailbox := make(chan Message, mailboxSize)
	id := uuid.New()

	n := &Node{
		address: address,
		id:      id,
		wallets: wallets,
		mailbox: mailbox,
		seen:    newSeenBlocks(),
		log:     log.With(zap.String("node", address)),
		sink:    sink,
		stats:   stats,
	}
	n.self = &Handle{id: id, address: address, mailbox: mailbox}

	n.emit(telemetry.EventSpawnedNode, nil)
	return n
}

// Handle returns the opaque recipient reference peers use to address this
// node. Safe to share freely; it never exposes the node's internal state.
func (n *Node) Handle() *Handle {
	return n.self
}

// Run processes messages from the mailbox until it's closed. Call it in
// its own goroutine.
func (n *Node) Run() {
	for msg := range n.mailbox {
		n.handle(msg)
	}
}

// Close stops the mailbox loop once pending messages drain.
func (n *Node) Close() {
	close(n.mailbox)
}

func (n *Node) handle(msg Message) {
	switch m := msg.(type) {
	case CreateBlockchain:
		n.onCreateBlockchain(m)
	case UpdateRoutingInfo:
		n.onUpdateRoutingInfo(m)
	case AddTransactionAndMine:
		n.onAddTransactionAndMine(m)
	case RequestBlockchain:
		n.onRequestBlockchain(m)
	case UpdateBlockchainFromKnownNodes:
		n.onUpdateBlockchainFromKnownNodes()
	case Blockchain:
		n.onBlockchain(m)
	case Block:
		n.onBlock(m)
	case PrintWalletBalance:
		n.onPrintWalletBalance(m)
	default:
		n.log.Warn("unrecognized message type")
	}
}

func (n *Node) onCreateBlockchain(m CreateBlockchain) {
	chain, err := blockchain.New(m.Addr)
	if err != nil {
		n.log.Error("failed to create blockchain", zap.Error(err))
		return
	}
	n.chain = chain

	n.log.Info("created blockchain", zap.String("addr", m.Addr))
	n.emit(telemetry.EventCreatedBlockchain, map[string]any{"address": m.Addr})
	if n.stats != nil {
		n.stats.ChainHeight.WithLabelValues(n.address).Set(float64(chain.Length()))
	}
}

func (n *Node) onUpdateRoutingInfo(m UpdateRoutingInfo) {
	peers := make([]*Handle, 0, len(m.Peers))
	for _, p := range m.Peers {
		if p == nil || p.Is(n.self) {
			continue
		}
		peers = append(peers, p)
	}
	n.peers = peers

	n.log.Info("updated routing info", zap.Int("peerCount", len(peers)))
	n.emit(telemetry.EventUpdatedRoutingInfo, map[string]any{"peerCount": len(peers)})
	if n.stats != nil {
		n.stats.PeersKnown.WithLabelValues(n.address).Set(float64(len(peers)))
	}
}

func (n *Node) onAddTransactionAndMine(m AddTransactionAndMine) {
	if n.chain == nil {
		n.log.Error("cannot mine without a blockchain")
		return
	}

	tx, err := blockchain.New(m.From, m.To, m.Amount, n.chain, n.wallets.Store())
	if err != nil {
		n.log.Error("failed to build transaction", zap.Error(err))
		return
	}

	coinbase, err := blockchain.NewCoinbase(m.From)
	if err != nil {
		n.log.Error("failed to build coinbase reward", zap.Error(err))
		return
	}

	block, err := blockchain.NewBlock([]blockchain.Transaction{*tx, *coinbase}, n.chain.LastHash, n.chain.Length())
	if err != nil {
		n.log.Error("failed to mine block", zap.Error(err))
		return
	}

	n.chain.AddBlock(*block)
	n.seen.observe(block.Hash)

	n.log.Info("mined block",
		zap.String("from", m.From),
		zap.String("to", m.To),
		zap.Int32("amount", m.Amount),
		zap.Int("index", block.Index),
	)
	n.emit(telemetry.EventMinedTransaction, map[string]any{
		"from":   m.From,
		"to":     m.To,
		"amount": m.Amount,
		"index":  block.Index,
	})
	if n.stats != nil {
		n.stats.BlocksMined.WithLabelValues(n.address).Inc()
		n.stats.ChainHeight.WithLabelValues(n.address).Set(float64(n.chain.Length()))
	}

	n.broadcastBlock(block)
}

func (n *Node) onRequestBlockchain(m RequestBlockchain) {
	if n.chain == nil || m.Sender == nil {
		return
	}

	clone, err := cloneChain(n.chain)
	if err != nil {
		n.log.Error("failed to clone chain for request", zap.Error(err))
		return
	}

	if !m.Sender.Send(Blockchain{Chain: clone}) {
		n.log.Warn("dropped blockchain reply, mailbox full", zap.String("peer", m.Sender.Address()))
	}
}

func (n *Node) onUpdateBlockchainFromKnownNodes() {
	for _, peer := range n.peers {
		if !peer.Send(RequestBlockchain{Sender: n.self}) {
			n.log.Warn("dropped blockchain request, mailbox full", zap.String("peer", peer.Address()))
		}
	}
}

func (n *Node) onBlockchain(m Blockchain) {
	if m.Chain == nil {
		return
	}

	fresher := n.chain == nil || m.Chain.Length() > n.chain.Length()
	if !fresher {
		return
	}

	n.chain = m.Chain
	n.log.Info("adopted fresher blockchain", zap.Int("length", m.Chain.Length()))
	n.emit(telemetry.EventReceivedFresherBlockchain, map[string]any{"length": m.Chain.Length()})
	n.emit(telemetry.EventDownloadedBlockchain, map[string]any{"length": m.Chain.Length()})
	if n.stats != nil {
		n.stats.ChainHeight.WithLabelValues(n.address).Set(float64(m.Chain.Length()))
	}
}

func (n *Node) onBlock(m Block) {
	if m.Block == nil || n.chain == nil {
		return
	}

	if n.seen.observe(m.Block.Hash) {
		return
	}

	n.chain.AddBlockToMemoryPool(*m.Block)

	n.log.Info("received new block", zap.Int("index", m.Block.Index))
	n.emit(telemetry.EventReceivedNewBlock, map[string]any{"index": m.Block.Index})
	if n.stats != nil {
		n.stats.BlocksReceived.WithLabelValues(n.address).Inc()
		n.stats.ChainHeight.WithLabelValues(n.address).Set(float64(n.chain.Length()))
		n.stats.MempoolCandidates.WithLabelValues(n.address).Set(float64(len(n.chain.MemoryPool)))
	}

	n.broadcastBlock(m.Block)
}

func (n *Node) onPrintWalletBalance(m PrintWalletBalance) {
	if n.chain == nil {
		return
	}

	var balance int32
	for _, tx := range n.chain.FindUnspentTransactions(m.Pkh) {
		for _, out := range tx.Outputs {
			if out.IsLockedWith(m.Pkh) {
				balance += out.Value
			}
		}
	}

	n.log.Info("wallet balance", zap.String("pkh", fmt.Sprintf("%x", m.Pkh)), zap.Int32("balance", balance))
}

// broadcastBlock forwards b to every known peer, best-effort. A send
// failure (full mailbox) is logged and otherwise ignored — broadcast never
// aborts partway through the peer list over one slow recipient.
func (n *Node) broadcastBlock(b *blockchain.Block) {
	for _, peer := range n.peers {
		clone, err := cloneBlock(b)
		if err != nil {
			n.log.Error("failed to clone block for broadcast", zap.Error(err))
			continue
		}
		if !peer.Send(Block{Block: clone}) {
			n.log.Warn("dropped block broadcast, mailbox full", zap.String("peer", peer.Address()))
		}
	}
}

func (n *Node) emit(eventID string, details map[string]any) {
	payload, err := json.Marshal(details)
	if err != nil {
		n.log.Error("failed to marshal telemetry details", zap.Error(err))
		return
	}
	n.sink.Broadcast(telemetry.Event{
		NodeID:  n.id.String(),
		EventID: eventID,
		Details: payload,
	})
}

package wallet

import (
	"encoding/json"

	"github.com/peerchain/peerchain/telemetry"
	"github.com/peerchain/peerchain/walletstore"
)

// Wallets is an in-memory keyring over a walletstore.Store. It generates
// keys and looks up signer material; durable persistence (if any) is
// entirely the store's concern.
type Wallets struct {
	store walletstore.Store
	sink  telemetry.Sink
}

// NewWallets wraps store in a keyring. Passing walletstore.NewMemory() gives
// a process-local, non-persistent keyring. Events are discarded until
// SetSink is called.
func NewWallets(store walletstore.Store) *Wallets {
	return &Wallets{store: store, sink: telemetry.NopSink{}}
}

// SetSink wires a telemetry observer for subsequent AddWallet calls. Wallet
// creation happens independently of any node.Node session, so reported
// events carry the new wallet's own address as NodeID rather than a node's
// uuid.
func (ws *Wallets) SetSink(sink telemetry.Sink) {
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	ws.sink = sink
}

// AddWallet generates a fresh wallet, persists it via the store, and
// returns its address.
func (ws *Wallets) AddWallet() (string, error) {
	w, err := New()
	if err != nil {
		return "", err
	}

	address := string(w.Address())
	data := walletstore.WalletData{
		PrivateKey:    w.PrivateKey.Serialize(),
		PublicKey:     w.PublicKey,
		PublicKeyHash: w.PublicKeyHash(),
	}
	if err := ws.store.Store(address, data); err != nil {
		return "", err
	}

	ws.emit(address)
	return address, nil
}

func (ws *Wallets) emit(address string) {
	if ws.sink == nil {
		return
	}
	details, err := json.Marshal(map[string]any{"address": address})
	if err != nil {
		return
	}
	ws.sink.Broadcast(telemetry.Event{
		NodeID:  address,
		EventID: telemetry.EventCreatedWallet,
		Details: details,
	})
}

// Load resolves the signer material for addr via the store.
func (ws *Wallets) Load(addr string) (walletstore.WalletData, error) {
	return ws.store.Load(addr)
}

// Store exposes the underlying walletstore.Store, for collaborators (such
// as blockchain.New) that need to load signer material directly rather
// than through the Wallets keyring API.
func (ws *Wallets) Store() walletstore.Store {
	return ws.store
}

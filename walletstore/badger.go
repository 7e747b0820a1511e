package walletstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Badger is a Store backed by an embedded key-value database, one per node
// (nodes never share wallet state). Keys are the raw address string;
// values are the JSON encoding of WalletData.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens (creating if needed) a Badger store rooted at dir.
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)

	db, err := openDB(dir, opts)
	if err != nil {
		return nil, err
	}
	return &Badger{db: db}, nil
}

// Close releases the underlying database handle.
func (b *Badger) Close() error {
	return b.db.Close()
}

func (b *Badger) Store(addr string, data WalletData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(addr), payload)
	})
}

func (b *Badger) Load(addr string) (WalletData, error) {
	var data WalletData
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(addr))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &data)
		})
	})
	if err != nil {
		return WalletData{}, err
	}
	return data, nil
}

// retry removes a stale LOCK file left by a crashed process and reopens the
// database once.
func retry(dir string, originalOpts badger.Options) (*badger.DB, error) {
	lockPath := filepath.Join(dir, "LOCK")
	if err := os.Remove(lockPath); err != nil {
		return nil, fmt.Errorf("failed to remove lock file: %w", err)
	}
	return badger.Open(originalOpts)
}

func openDB(dir string, opts badger.Options) (*badger.DB, error) {
	db, err := badger.Open(opts)
	if err == nil {
		return db, nil
	}
	if strings.Contains(err.Error(), "LOCK") {
		if db, rerr := retry(dir, opts); rerr == nil {
			return db, nil
		}
	}
	return nil, err
}

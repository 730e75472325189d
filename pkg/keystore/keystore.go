package keystore

import (
	"encoding/base64"
	"errors"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

// Store is a small encrypted-at-rest keypair store (Badger).
// Note: encryption is provided by Badger options (value log + key registry), not by this wrapper.
type Store struct {
	db *badger.DB
}

type OpenOptions struct {
	Path          string
	EncryptionKey []byte // 32 bytes; if nil, DB is opened without encryption (not recommended)
	ReadOnly      bool
}

func Open(opts OpenOptions) (*Store, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, errors.New("keystore: path is required")
	}
	bopts := badger.DefaultOptions(opts.Path).
		WithLogger(nil).
		WithReadOnly(opts.ReadOnly)
	if len(opts.EncryptionKey) > 0 {
		// Badger requires index cache for encrypted workloads
		bopts = bopts.
			WithEncryptionKey(opts.EncryptionKey).
			WithIndexCacheSize(100 << 20) // 100MB
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// GetKeypair returns the raw keypair bytes stored under name.
func (s *Store) GetKeypair(name string) ([]byte, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, errors.New("keystore: not opened")
	}
	k := keyFor(name)
	if k == nil {
		return nil, false, errors.New("keystore: name is empty")
	}
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, err := base64.StdEncoding.DecodeString(string(val))
			if err != nil {
				return err
			}
			out = decoded
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// PutKeypair stores raw keypair bytes under name.
func (s *Store) PutKeypair(name string, raw []byte) error {
	if s == nil || s.db == nil {
		return errors.New("keystore: not opened")
	}
	k := keyFor(name)
	if k == nil {
		return errors.New("keystore: name is empty")
	}
	if len(raw) == 0 {
		return errors.New("keystore: keypair is empty")
	}
	encoded := base64.StdEncoding.EncodeToString(raw)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(k, []byte(encoded))
	})
}

func keyFor(name string) []byte {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return []byte("keypair/" + name)
}

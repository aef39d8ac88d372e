package kvstore

import "errors"

var (
	ErrKeyEmpty    = errors.New("key is empty")
	ErrKeyNotFound = errors.New("key not found")
)

// KVPair is a key with its stored value, returned by prefix scans.
type KVPair struct {
	Key   string
	Value []byte
}

// KVStore is an interface for a simple key-value store.
type KVStore interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	// SetBatch writes all pairs atomically: either every pair is
	// persisted or none is.
	SetBatch(pairs []*KVPair) error
	Delete(key string) error
	// List returns all pairs whose key starts with prefix, in key order.
	List(prefix string) ([]*KVPair, error)
	Close() error
}

// Package inmemks provides a volatile keystore for tests and throwaway runs.
package inmemks

import (
	"encoding/json"
	"sync"

	"github.com/trezcool/darasa/core"
)

type Keystore struct {
	mu    sync.RWMutex
	table map[string]json.RawMessage
}

var _ core.Keystore = (*Keystore)(nil)

func New() *Keystore {
	return &Keystore{table: make(map[string]json.RawMessage)}
}

func (ks *Keystore) Get(key string, v interface{}) (bool, error) {
	ks.mu.RLock()
	raw, ok := ks.table[key]
	ks.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, nil
	}
	return true, nil
}

func (ks *Keystore) Set(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ks.mu.Lock()
	ks.table[key] = raw
	ks.mu.Unlock()
	return nil
}

func (ks *Keystore) Delete(key string) error {
	ks.mu.Lock()
	delete(ks.table, key)
	ks.mu.Unlock()
	return nil
}

// SetRaw stores raw bytes as-is; tests use it to plant corrupt values.
func (ks *Keystore) SetRaw(key string, raw []byte) {
	ks.mu.Lock()
	ks.table[key] = raw
	ks.mu.Unlock()
}

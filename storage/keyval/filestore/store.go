// Package filestore persists the keystore as a single JSON file. Writes are
// atomic (temp file + rename) so a crash mid-write never corrupts the store.
package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

type Keystore struct {
	mu   sync.Mutex
	path string
}

var _ core.Keystore = (*Keystore)(nil)

func New(path string) (*Keystore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrapf(err, "creating keystore dir for %s", path)
	}
	return &Keystore{path: path}, nil
}

func (ks *Keystore) Get(key string, v interface{}) (bool, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	table, err := ks.load()
	if err != nil {
		return false, err
	}
	raw, ok := table[key]
	if !ok {
		return false, nil
	}
	// a corrupt stored value is treated as absence, never as an error
	if err = json.Unmarshal(raw, v); err != nil {
		return false, nil
	}
	return true, nil
}

func (ks *Keystore) Set(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "serializing %s", key)
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()

	table, err := ks.load()
	if err != nil {
		return err
	}
	table[key] = raw
	return ks.save(table)
}

func (ks *Keystore) Delete(key string) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	table, err := ks.load()
	if err != nil {
		return err
	}
	if _, ok := table[key]; !ok {
		return nil
	}
	delete(table, key)
	return ks.save(table)
}

func (ks *Keystore) load() (map[string]json.RawMessage, error) {
	table := make(map[string]json.RawMessage)
	raw, err := os.ReadFile(ks.path)
	if os.IsNotExist(err) {
		return table, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading keystore %s", ks.path)
	}
	// a corrupt file yields an empty table, not an error
	if err = json.Unmarshal(raw, &table); err != nil {
		return make(map[string]json.RawMessage), nil
	}
	return table, nil
}

func (ks *Keystore) save(table map[string]json.RawMessage) error {
	raw, err := json.Marshal(table)
	if err != nil {
		return errors.Wrap(err, "serializing keystore")
	}
	tmp := ks.path + ".tmp"
	if err = os.WriteFile(tmp, raw, 0o600); err != nil {
		return errors.Wrapf(err, "writing keystore %s", tmp)
	}
	if err = os.Rename(tmp, ks.path); err != nil {
		return errors.Wrapf(err, "replacing keystore %s", ks.path)
	}
	return nil
}

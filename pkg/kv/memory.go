package kv

import (
	"bytes"
	"sort"
	"sync"
)

// MemStore is an in-memory Store, used in tests that don't want a real
// cometbft-db instance on disk.
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemStore builds an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (m *MemStore) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *MemStore) Put(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *MemStore) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

func (m *MemStore) Scan(prefix []byte, fromKey []byte, limit int) ([]KVPair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for k := range m.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			if fromKey != nil && k < string(fromKey) {
				continue
			}
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var out []KVPair
	for _, k := range keys {
		out = append(out, KVPair{Key: []byte(k), Value: append([]byte(nil), m.data[k]...)})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MemStore) WriteBatch(ops []Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range ops {
		if op.Value == nil {
			delete(m.data, string(op.Key))
			continue
		}
		m.data[string(op.Key)] = append([]byte(nil), op.Value...)
	}
	return nil
}

func (m *MemStore) Close() error { return nil }

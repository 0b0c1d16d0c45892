package kv

import (
	"bytes"

	dbm "github.com/cometbft/cometbft-db"
)

// Backend selects the underlying cometbft-db engine. goleveldb is the
// default; boltdb trades LSM write amplification for bbolt's single-file
// mmap'd B+tree when DYT_KV_BACKEND=boltdb.
type Backend string

const (
	BackendGoLevelDB Backend = "goleveldb"
	BackendBoltDB    Backend = "boltdb"
)

func (b Backend) dbmType() dbm.BackendType {
	switch b {
	case BackendBoltDB:
		return dbm.BoltDBBackend
	default:
		return dbm.GoLevelDBBackend
	}
}

// CometStore is a Store backed by github.com/cometbft/cometbft-db. It is
// the production KV implementation: atomic batch writes and crash
// safety are both provided by cometbft-db's backends without the node
// needing to reimplement a write-ahead log.
type CometStore struct {
	db dbm.DB
}

// Open opens (creating if absent) a cometbft-db database named "dytallix"
// under dir using the requested backend.
func Open(dir string, backend Backend) (*CometStore, error) {
	db, err := dbm.NewDB("dytallix", backend.dbmType(), dir)
	if err != nil {
		return nil, err
	}
	return &CometStore{db: db}, nil
}

func (s *CometStore) Get(key []byte) ([]byte, error) {
	v, err := s.db.Get(key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrNotFound
	}
	return v, nil
}

func (s *CometStore) Put(key, value []byte) error {
	return s.db.SetSync(key, value)
}

func (s *CometStore) Delete(key []byte) error {
	return s.db.DeleteSync(key)
}

func (s *CometStore) Scan(prefix []byte, fromKey []byte, limit int) ([]KVPair, error) {
	start := prefix
	if fromKey != nil {
		start = fromKey
	}
	end := prefixUpperBound(prefix)
	it, err := s.db.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []KVPair
	for ; it.Valid(); it.Next() {
		k := it.Key()
		if !bytes.HasPrefix(k, prefix) {
			continue
		}
		key := append([]byte(nil), k...)
		val := append([]byte(nil), it.Value()...)
		out = append(out, KVPair{Key: key, Value: val})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, it.Error()
}

// WriteBatch commits every op atomically via the backend's native batch
// type. This is the only path the block producer uses to persist a
// committed block: a batch failure here means none of the ops land,
// and the producer rolls its in-memory state back instead.
func (s *CometStore) WriteBatch(ops []Op) error {
	b := s.db.NewBatch()
	defer b.Close()
	for _, op := range ops {
		if op.Value == nil {
			if err := b.Delete(op.Key); err != nil {
				return err
			}
			continue
		}
		if err := b.Set(op.Key, op.Value); err != nil {
			return err
		}
	}
	return b.WriteSync()
}

func (s *CometStore) Close() error { return s.db.Close() }

// prefixUpperBound returns the smallest key that is strictly greater than
// every key with the given prefix, for use as an exclusive iterator end.
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	// prefix is all 0xff bytes: no finite upper bound, iterate to the end.
	return nil
}

package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreGetMissingReturnsNotFound(t *testing.T) {
	s := NewMemStore()
	_, err := s.Get([]byte("nope"))
	assert.Equal(t, ErrNotFound, err)
}

func TestMemStorePutGetRoundTrips(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Put([]byte("acct:dyt1alice"), []byte("payload")))
	v, err := s.Get([]byte("acct:dyt1alice"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(v))
}

func TestMemStoreScanFiltersByPrefixInAscendingOrder(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Put([]byte("acct:b"), []byte("2")))
	require.NoError(t, s.Put([]byte("acct:a"), []byte("1")))
	require.NoError(t, s.Put([]byte("tx:c"), []byte("3")))

	pairs, err := s.Scan([]byte("acct:"), nil, 0)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "acct:a", string(pairs[0].Key))
	assert.Equal(t, "acct:b", string(pairs[1].Key))
}

func TestMemStoreWriteBatchIsAllOrNothingOnSuccess(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.WriteBatch([]Op{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
	}))
	va, err := s.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(va))
	vb, err := s.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, "2", string(vb))
}

func TestMemStoreWriteBatchDeletesOnNilValue(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Put([]byte("a"), []byte("1")))
	require.NoError(t, s.WriteBatch([]Op{{Key: []byte("a"), Value: nil}}))
	_, err := s.Get([]byte("a"))
	assert.Equal(t, ErrNotFound, err)
}

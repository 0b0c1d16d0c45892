package oraclestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DytallixHQ/dytallix-node/pkg/kv"
	"github.com/DytallixHQ/dytallix-node/pkg/types"
)

func TestGetMissingReturnsNotFound(t *testing.T) {
	s := New(kv.NewMemStore())
	_, err := s.Get(types.Hash{1})
	assert.Equal(t, ErrNotFound, err)
}

func TestPutGetRoundTrips(t *testing.T) {
	s := New(kv.NewMemStore())
	rec := &types.OracleRecord{TxHash: types.Hash{2}, Score: 0.42}
	require.NoError(t, s.Put(rec))

	got, err := s.Get(types.Hash{2})
	require.NoError(t, err)
	assert.Equal(t, 0.42, got.Score)
}

func TestPutOverwritesPriorPost(t *testing.T) {
	s := New(kv.NewMemStore())
	hash := types.Hash{3}
	require.NoError(t, s.Put(&types.OracleRecord{TxHash: hash, Score: 0.1}))
	require.NoError(t, s.Put(&types.OracleRecord{TxHash: hash, Score: 0.9}))

	got, err := s.Get(hash)
	require.NoError(t, err)
	assert.Equal(t, 0.9, got.Score)
}

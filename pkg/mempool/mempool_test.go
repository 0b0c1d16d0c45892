package mempool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DytallixHQ/dytallix-node/pkg/types"
)

func txWithHash(b byte) *types.Transaction {
	var h types.Hash
	h[0] = b
	return &types.Transaction{Hash: h}
}

func TestAdmitAndDrainPreservesOrder(t *testing.T) {
	m := New(0)
	require.NoError(t, m.Admit(txWithHash(1)))
	require.NoError(t, m.Admit(txWithHash(2)))
	require.NoError(t, m.Admit(txWithHash(3)))
	assert.Equal(t, 3, m.Size())

	drained := m.Drain(2)
	require.Len(t, drained, 2)
	assert.Equal(t, byte(1), drained[0].Hash[0])
	assert.Equal(t, byte(2), drained[1].Hash[0])
	assert.Equal(t, 1, m.Size())
}

func TestAdmitDuplicateRejected(t *testing.T) {
	m := New(0)
	tx := txWithHash(1)
	require.NoError(t, m.Admit(tx))
	assert.Equal(t, ErrDuplicate, m.Admit(tx))
}

func TestAdmitFullRejected(t *testing.T) {
	m := New(1)
	require.NoError(t, m.Admit(txWithHash(1)))
	assert.Equal(t, ErrMempoolFull, m.Admit(txWithHash(2)))
}

func TestDrainRemovesFromHasIndex(t *testing.T) {
	m := New(0)
	tx := txWithHash(1)
	require.NoError(t, m.Admit(tx))
	m.Drain(10)
	assert.False(t, m.Has(tx.Hash))
}

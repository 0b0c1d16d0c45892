package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DytallixHQ/dytallix-node/pkg/types"
)

func TestApplyTransferDebitsFeeAndCredits(t *testing.T) {
	s := New()
	alice := types.Address("dyt1alice")
	bob := types.Address("dyt1bob")
	s.CreditGenesis(alice, types.NewAmount(1000))

	amount := types.NewAmount(10)
	fee := types.NewAmount(1)
	require.NoError(t, s.ApplyTransfer(alice, bob, amount, fee))

	assert.Equal(t, "989", s.Get(alice).Balance.String())
	assert.Equal(t, "10", s.Get(bob).Balance.String())
}

func TestApplyTransferInsufficientBalance(t *testing.T) {
	s := New()
	alice := types.Address("dyt1alice")
	bob := types.Address("dyt1bob")
	s.CreditGenesis(alice, types.NewAmount(5))

	err := s.ApplyTransfer(alice, bob, types.NewAmount(10), types.NewAmount(1))
	assert.Equal(t, ErrInsufficientBalance, err)
	assert.Equal(t, "5", s.Get(alice).Balance.String())
}

func TestSnapshotRestore(t *testing.T) {
	s := New()
	alice := types.Address("dyt1alice")
	s.CreditGenesis(alice, types.NewAmount(100))

	snap := s.Snapshot()
	require.NoError(t, s.ApplyTransfer(alice, "dyt1bob", types.NewAmount(50), types.ZeroAmount()))
	assert.Equal(t, "50", s.Get(alice).Balance.String())

	s.Restore(snap)
	assert.Equal(t, "100", s.Get(alice).Balance.String())
}

func TestIncrNonce(t *testing.T) {
	s := New()
	alice := types.Address("dyt1alice")
	s.IncrNonce(alice)
	s.IncrNonce(alice)
	assert.Equal(t, uint64(2), s.Get(alice).Nonce)
}

package ledger

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestTransferMovesBalance(t *testing.T) {
	l := New()
	require.NoError(t, l.Mint("alice", NativeAsset, math.NewInt(1000)))

	err := l.Transfer("alice", "bob", NativeAsset, math.NewInt(400))
	require.NoError(t, err)

	require.Equal(t, math.NewInt(600), l.BalanceOf("alice", NativeAsset))
	require.Equal(t, math.NewInt(400), l.BalanceOf("bob", NativeAsset))
}

func TestTransferInsufficientFunds(t *testing.T) {
	l := New()
	require.NoError(t, l.Mint("alice", NativeAsset, math.NewInt(100)))

	err := l.Transfer("alice", "bob", NativeAsset, math.NewInt(101))
	require.ErrorIs(t, err, ErrInsufficientFunds)

	require.Equal(t, math.NewInt(100), l.BalanceOf("alice", NativeAsset))
	require.True(t, l.BalanceOf("bob", NativeAsset).IsZero())
}

func TestTransferRejectsNonPositiveAmount(t *testing.T) {
	l := New()
	require.NoError(t, l.Mint("alice", NativeAsset, math.NewInt(100)))

	require.ErrorIs(t, l.Transfer("alice", "bob", NativeAsset, math.ZeroInt()), ErrInvalidAmount)
	require.ErrorIs(t, l.Transfer("alice", "bob", NativeAsset, math.NewInt(-5)), ErrInvalidAmount)
}

func TestApplyIsAllOrNothing(t *testing.T) {
	l := New()
	require.NoError(t, l.Mint("alice", NativeAsset, math.NewInt(100)))

	err := l.Apply(
		Entry{From: "alice", To: "bob", Asset: NativeAsset, Amount: math.NewInt(80)},
		Entry{From: "alice", To: "carol", Asset: NativeAsset, Amount: math.NewInt(30)},
	)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// First leg must not have been applied.
	require.Equal(t, math.NewInt(100), l.BalanceOf("alice", NativeAsset))
	require.True(t, l.BalanceOf("bob", NativeAsset).IsZero())
	require.True(t, l.BalanceOf("carol", NativeAsset).IsZero())
}

func TestApplySeesEarlierLegs(t *testing.T) {
	l := New()
	require.NoError(t, l.Mint("alice", NativeAsset, math.NewInt(50)))

	// bob can forward funds he only receives within the same batch.
	err := l.Apply(
		Entry{From: "alice", To: "bob", Asset: NativeAsset, Amount: math.NewInt(50)},
		Entry{From: "bob", To: "carol", Asset: NativeAsset, Amount: math.NewInt(50)},
	)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(50), l.BalanceOf("carol", NativeAsset))
	require.True(t, l.BalanceOf("bob", NativeAsset).IsZero())
}

func TestPullConsumesAllowance(t *testing.T) {
	l := New()
	require.NoError(t, l.Mint("alice", "usdc", math.NewInt(500)))
	require.NoError(t, l.Approve("alice", "factory", "usdc", math.NewInt(300)))

	require.NoError(t, l.Pull("factory", "alice", "escrow/0", "usdc", math.NewInt(200)))
	require.Equal(t, math.NewInt(100), l.Allowance("alice", "factory", "usdc"))
	require.Equal(t, math.NewInt(200), l.BalanceOf("escrow/0", "usdc"))

	err := l.Pull("factory", "alice", "escrow/0", "usdc", math.NewInt(200))
	require.ErrorIs(t, err, ErrInsufficientAllowance)
}

func TestPullInsufficientBalance(t *testing.T) {
	l := New()
	require.NoError(t, l.Mint("alice", "usdc", math.NewInt(100)))
	require.NoError(t, l.Approve("alice", "factory", "usdc", math.NewInt(300)))

	err := l.Pull("factory", "alice", "escrow/0", "usdc", math.NewInt(200))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	// Allowance is untouched when the pull fails.
	require.Equal(t, math.NewInt(300), l.Allowance("alice", "factory", "usdc"))
}

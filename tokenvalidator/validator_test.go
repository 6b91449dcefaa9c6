package tokenvalidator

import (
	"testing"
	"time"

	"contest-platform/ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const owner = "owner"

func usdcInfo() TokenInfo {
	return TokenInfo{
		Asset:        "usdc",
		Name:         "USD Coin",
		Symbol:       "USDC",
		Decimals:     6,
		IsStablecoin: true,
		PriceUSD:     decimal.NewFromInt(1),
		LiquidityUSD: decimal.NewFromInt(5_000_000),
	}
}

func newValidator(t *testing.T) (*Validator, *time.Time) {
	t.Helper()
	current := time.Unix(1_700_000_000, 0)
	v := New(owner, func() time.Time { return current })
	return v, &current
}

func TestNativeAlwaysValid(t *testing.T) {
	v, _ := newValidator(t)
	require.True(t, v.IsValidToken(ledger.NativeAsset))
}

func TestUnregisteredTokenInvalid(t *testing.T) {
	v, _ := newValidator(t)
	require.False(t, v.IsValidToken("usdc"))
	require.ErrorIs(t, v.ValidateToken("usdc"), ErrUnknownToken)
}

func TestRegisterAndValidate(t *testing.T) {
	v, _ := newValidator(t)

	require.ErrorIs(t, v.Register("stranger", usdcInfo()), ErrOnlyOwner)
	require.NoError(t, v.Register(owner, usdcInfo()))

	require.True(t, v.IsValidToken("usdc"))
	require.True(t, v.IsStablecoin("usdc"))

	info, ok := v.GetTokenInfo("usdc")
	require.True(t, ok)
	require.True(t, info.HasLiquidity)
	require.False(t, info.LastValidated.IsZero())
}

func TestRegisterRejectsBadInput(t *testing.T) {
	v, _ := newValidator(t)

	bad := usdcInfo()
	bad.Asset = ""
	require.ErrorIs(t, v.Register(owner, bad), ErrInvalidToken)

	bad = usdcInfo()
	bad.Asset = ledger.NativeAsset
	require.ErrorIs(t, v.Register(owner, bad), ErrInvalidToken)

	bad = usdcInfo()
	bad.Symbol = ""
	require.ErrorIs(t, v.Register(owner, bad), ErrInvalidToken)

	bad = usdcInfo()
	bad.LiquidityUSD = decimal.NewFromInt(-1)
	require.ErrorIs(t, v.Register(owner, bad), ErrInvalidToken)
}

func TestThinLiquidityFailsValidation(t *testing.T) {
	v, _ := newValidator(t)

	thin := usdcInfo()
	thin.Asset = "memecoin"
	thin.Symbol = "MEME"
	thin.IsStablecoin = false
	thin.LiquidityUSD = decimal.NewFromInt(500)
	require.NoError(t, v.Register(owner, thin))

	require.False(t, v.IsValidToken("memecoin"))
	require.ErrorIs(t, v.ValidateToken("memecoin"), ErrInvalidToken)
}

func TestStaleDataFailsValidation(t *testing.T) {
	v, clock := newValidator(t)
	require.NoError(t, v.Register(owner, usdcInfo()))
	require.True(t, v.IsValidToken("usdc"))

	*clock = clock.Add(DefaultRevalidateAfter + time.Hour)
	require.False(t, v.IsValidToken("usdc"))

	// Re-registering refreshes the stamp.
	require.NoError(t, v.Register(owner, usdcInfo()))
	require.True(t, v.IsValidToken("usdc"))
}

func TestDenyListWinsOverRegistration(t *testing.T) {
	v, _ := newValidator(t)
	require.NoError(t, v.Register(owner, usdcInfo()))

	require.ErrorIs(t, v.Deny("stranger", "usdc", "exploit"), ErrOnlyOwner)
	require.NoError(t, v.Deny(owner, "usdc", "exploit reported"))
	require.ErrorIs(t, v.Deny(owner, "usdc", "again"), ErrAlreadyDenied)

	require.False(t, v.IsValidToken("usdc"))
	require.ErrorIs(t, v.ValidateToken("usdc"), ErrTokenDenied)

	require.NoError(t, v.Allow(owner, "usdc"))
	require.True(t, v.IsValidToken("usdc"))
}

func TestRemove(t *testing.T) {
	v, _ := newValidator(t)
	require.NoError(t, v.Register(owner, usdcInfo()))

	require.ErrorIs(t, v.Remove(owner, "dai"), ErrUnknownToken)
	require.NoError(t, v.Remove(owner, "usdc"))
	require.False(t, v.IsValidToken("usdc"))
	require.Empty(t, v.Tokens())
}

package tokenvalidator

import (
	"sync"
	"time"

	"contest-platform/ledger"
	"contest-platform/logging"

	"github.com/shopspring/decimal"
)

// DefaultMinLiquidityUSD is the liquidity floor below which a token is
// considered too thin to safely custody prizes in.
var DefaultMinLiquidityUSD = decimal.NewFromInt(10_000)

// DefaultRevalidateAfter is how long token data stays fresh. Older entries
// fail validation until re-registered.
const DefaultRevalidateAfter = 30 * 24 * time.Hour

// TokenInfo describes one registered prize asset.
type TokenInfo struct {
	Asset           string          `json:"asset"`
	Name            string          `json:"name"`
	Symbol          string          `json:"symbol"`
	Decimals        int             `json:"decimals"`
	HasLiquidity    bool            `json:"has_liquidity"`
	IsStablecoin    bool            `json:"is_stablecoin"`
	IsWrappedNative bool            `json:"is_wrapped_native"`
	PriceUSD        decimal.Decimal `json:"price_usd"`
	LiquidityUSD    decimal.Decimal `json:"liquidity_usd"`
	LastValidated   time.Time       `json:"last_validated"`
}

// Validator keeps the registry of assets accepted as prize tokens plus a deny
// list. The native asset is always valid and needs no registration.
type Validator struct {
	mu              sync.Mutex
	owner           string
	minLiquidityUSD decimal.Decimal
	revalidateAfter time.Duration
	now             func() time.Time

	tokens map[string]TokenInfo
	denied map[string]string // asset -> reason
}

// New builds a validator with the default liquidity floor and staleness
// window.
func New(owner string, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{
		owner:           owner,
		minLiquidityUSD: DefaultMinLiquidityUSD,
		revalidateAfter: DefaultRevalidateAfter,
		now:             now,
		tokens:          make(map[string]TokenInfo),
		denied:          make(map[string]string),
	}
}

// Register adds or refreshes a token. Owner only. LastValidated is stamped
// here; callers never supply it.
func (v *Validator) Register(caller string, info TokenInfo) error {
	if caller != v.owner {
		return ErrOnlyOwner
	}
	if info.Asset == "" || info.Asset == ledger.NativeAsset {
		return ErrInvalidToken.Wrap("asset id empty or reserved")
	}
	if info.Symbol == "" {
		return ErrInvalidToken.Wrap("missing symbol")
	}
	if info.Decimals < 0 || info.Decimals > 36 {
		return ErrInvalidToken.Wrapf("decimals %d out of range", info.Decimals)
	}
	if info.PriceUSD.IsNegative() || info.LiquidityUSD.IsNegative() {
		return ErrInvalidToken.Wrap("negative USD figures")
	}

	info.HasLiquidity = info.LiquidityUSD.GreaterThanOrEqual(v.minLiquidityUSD)
	info.LastValidated = v.now()

	v.mu.Lock()
	v.tokens[info.Asset] = info
	v.mu.Unlock()

	logging.Info("Token registered", logging.Tokens,
		"asset", info.Asset, "symbol", info.Symbol,
		"liquidity_usd", info.LiquidityUSD.String(), "has_liquidity", info.HasLiquidity)
	return nil
}

// Remove drops a token from the registry. Owner only.
func (v *Validator) Remove(caller, asset string) error {
	if caller != v.owner {
		return ErrOnlyOwner
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.tokens[asset]; !ok {
		return ErrUnknownToken.Wrap(asset)
	}
	delete(v.tokens, asset)
	return nil
}

// Deny puts an asset on the deny list. Deny wins over registration.
func (v *Validator) Deny(caller, asset, reason string) error {
	if caller != v.owner {
		return ErrOnlyOwner
	}
	if asset == "" || asset == ledger.NativeAsset {
		return ErrInvalidToken.Wrap("asset id empty or reserved")
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.denied[asset]; ok {
		return ErrAlreadyDenied
	}
	v.denied[asset] = reason
	logging.Warn("Token deny-listed", logging.Tokens, "asset", asset, "reason", reason)
	return nil
}

// Allow lifts a deny-list entry. The token still needs a live registration to
// validate.
func (v *Validator) Allow(caller, asset string) error {
	if caller != v.owner {
		return ErrOnlyOwner
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.denied, asset)
	return nil
}

// IsValidToken reports whether an asset may hold prize custody right now. The
// native asset always passes; everything else must be registered, off the deny
// list, liquid enough, and recently validated.
func (v *Validator) IsValidToken(asset string) bool {
	return v.ValidateToken(asset) == nil
}

// ValidateToken is IsValidToken with the reason.
func (v *Validator) ValidateToken(asset string) error {
	if asset == ledger.NativeAsset {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if reason, ok := v.denied[asset]; ok {
		return ErrTokenDenied.Wrap(reason)
	}
	info, ok := v.tokens[asset]
	if !ok {
		return ErrUnknownToken.Wrap(asset)
	}
	if !info.HasLiquidity {
		return ErrInvalidToken.Wrapf("liquidity %s USD below floor %s",
			info.LiquidityUSD.String(), v.minLiquidityUSD.String())
	}
	if v.now().Sub(info.LastValidated) > v.revalidateAfter {
		return ErrInvalidToken.Wrapf("data stale since %s", info.LastValidated.Format(time.RFC3339))
	}
	return nil
}

// IsStablecoin reports whether a registered token is flagged as a stablecoin.
func (v *Validator) IsStablecoin(asset string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tokens[asset].IsStablecoin
}

// GetTokenInfo returns the registry entry for an asset.
func (v *Validator) GetTokenInfo(asset string) (TokenInfo, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	info, ok := v.tokens[asset]
	return info, ok
}

// Tokens returns a snapshot of the registry.
func (v *Validator) Tokens() []TokenInfo {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]TokenInfo, 0, len(v.tokens))
	for _, info := range v.tokens {
		out = append(out, info)
	}
	return out
}

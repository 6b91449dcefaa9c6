package ledger

import (
	"sync"

	"contest-platform/logging"

	"cosmossdk.io/math"
)

// NativeAsset is the sentinel asset id for the platform's native currency.
// Fungible tokens use their registry identifier instead.
const NativeAsset = "native"

// Entry is one leg of a balance movement.
type Entry struct {
	From   string
	To     string
	Asset  string
	Amount math.Int
}

// Ledger is the authoritative asset book. Every operation commits its whole
// delta or none of it; a single mutex serializes all movements.
type Ledger struct {
	mu         sync.Mutex
	balances   map[string]map[string]math.Int
	allowances map[string]map[string]map[string]math.Int
}

func New() *Ledger {
	return &Ledger{
		balances:   make(map[string]map[string]math.Int),
		allowances: make(map[string]map[string]map[string]math.Int),
	}
}

func (l *Ledger) balanceOf(account, asset string) math.Int {
	assets, ok := l.balances[account]
	if !ok {
		return math.ZeroInt()
	}
	bal, ok := assets[asset]
	if !ok {
		return math.ZeroInt()
	}
	return bal
}

func (l *Ledger) setBalance(account, asset string, amount math.Int) {
	assets, ok := l.balances[account]
	if !ok {
		assets = make(map[string]math.Int)
		l.balances[account] = assets
	}
	assets[asset] = amount
}

// BalanceOf returns the current balance of an account for one asset.
func (l *Ledger) BalanceOf(account, asset string) math.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balanceOf(account, asset)
}

// Mint credits freshly created units to an account. Used for genesis funding
// and by tests; there is no burn path.
func (l *Ledger) Mint(account, asset string, amount math.Int) error {
	if account == "" {
		return ErrEmptyAccount
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setBalance(account, asset, l.balanceOf(account, asset).Add(amount))
	return nil
}

// Transfer moves amount of asset between two accounts.
func (l *Ledger) Transfer(from, to, asset string, amount math.Int) error {
	return l.Apply(Entry{From: from, To: to, Asset: asset, Amount: amount})
}

// Apply commits a batch of entries atomically: every debit is checked against
// the balances as they stand after the preceding entries, and if any leg
// fails nothing is applied.
func (l *Ledger) Apply(entries ...Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	staged := make(map[string]map[string]math.Int)
	stagedBalance := func(account, asset string) math.Int {
		if assets, ok := staged[account]; ok {
			if bal, ok := assets[asset]; ok {
				return bal
			}
		}
		return l.balanceOf(account, asset)
	}
	stage := func(account, asset string, amount math.Int) {
		assets, ok := staged[account]
		if !ok {
			assets = make(map[string]math.Int)
			staged[account] = assets
		}
		assets[asset] = amount
	}

	for _, e := range entries {
		if e.From == "" || e.To == "" {
			return ErrEmptyAccount
		}
		if !e.Amount.IsPositive() {
			return ErrInvalidAmount
		}
		fromBal := stagedBalance(e.From, e.Asset)
		if fromBal.LT(e.Amount) {
			return ErrInsufficientFunds.Wrapf("account %s has %s %s, needs %s",
				e.From, fromBal, e.Asset, e.Amount)
		}
		stage(e.From, e.Asset, fromBal.Sub(e.Amount))
		stage(e.To, e.Asset, stagedBalance(e.To, e.Asset).Add(e.Amount))
	}

	for account, assets := range staged {
		for asset, bal := range assets {
			l.setBalance(account, asset, bal)
		}
	}
	logging.Debug("Applied ledger batch", logging.Ledger, "entries", len(entries))
	return nil
}

func (l *Ledger) allowanceOf(owner, spender, asset string) math.Int {
	spenders, ok := l.allowances[owner]
	if !ok {
		return math.ZeroInt()
	}
	assets, ok := spenders[spender]
	if !ok {
		return math.ZeroInt()
	}
	amount, ok := assets[asset]
	if !ok {
		return math.ZeroInt()
	}
	return amount
}

// Approve lets spender pull up to amount of asset from owner's account.
// Overwrites any previous allowance for the pair.
func (l *Ledger) Approve(owner, spender, asset string, amount math.Int) error {
	if owner == "" || spender == "" {
		return ErrEmptyAccount
	}
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	spenders, ok := l.allowances[owner]
	if !ok {
		spenders = make(map[string]map[string]math.Int)
		l.allowances[owner] = spenders
	}
	assets, ok := spenders[spender]
	if !ok {
		assets = make(map[string]math.Int)
		spenders[spender] = assets
	}
	assets[asset] = amount
	return nil
}

// Allowance returns the remaining approved amount for (owner, spender, asset).
func (l *Ledger) Allowance(owner, spender, asset string) math.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allowanceOf(owner, spender, asset)
}

// Pull moves amount from owner to the given destination on behalf of spender,
// consuming the allowance. Debit, credit and allowance change commit together.
func (l *Ledger) Pull(spender, owner, to, asset string, amount math.Int) error {
	if spender == "" || owner == "" || to == "" {
		return ErrEmptyAccount
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	allowed := l.allowanceOf(owner, spender, asset)
	if allowed.LT(amount) {
		return ErrInsufficientAllowance.Wrapf("spender %s allowed %s %s of %s, needs %s",
			spender, allowed, asset, owner, amount)
	}
	fromBal := l.balanceOf(owner, asset)
	if fromBal.LT(amount) {
		return ErrInsufficientFunds.Wrapf("account %s has %s %s, needs %s",
			owner, fromBal, asset, amount)
	}

	l.allowances[owner][spender][asset] = allowed.Sub(amount)
	l.setBalance(owner, asset, fromBal.Sub(amount))
	l.setBalance(to, asset, l.balanceOf(to, asset).Add(amount))
	return nil
}

package feemanager

import (
	"strconv"
	"sync"

	"contest-platform/events"
	"contest-platform/internal/metrics"
	"contest-platform/logging"

	"cosmossdk.io/math"
)

// MaxFeeBP caps any network fee at 20%.
const MaxFeeBP = 2000

// Bank moves collected fees out to the treasury.
type Bank interface {
	Transfer(from, to, asset string, amount math.Int) error
	BalanceOf(account, asset string) math.Int
}

// EventSink receives emitted records.
type EventSink interface {
	Emit(events.Event)
}

// NetworkFee is the platform cut for one network, in basis points.
type NetworkFee struct {
	BP   int
	Name string
}

// NetworkInfo is the public view of a network's fee configuration.
type NetworkInfo struct {
	NetworkID   uint64 `json:"network_id"`
	Name        string `json:"name"`
	FeeBP       int    `json:"fee_bp"`
	IsSupported bool   `json:"is_supported"`
}

// Manager owns per-network fee rates, the accrued fee balances and the creator
// ban list. Fees for unknown networks are zero, never an error; the platform
// would rather earn nothing than block a contest.
type Manager struct {
	mu       sync.Mutex
	owner    string
	factory  string
	account  string
	treasury string
	bank     Bank
	sink     EventSink

	networks map[uint64]NetworkFee
	accrued  map[string]math.Int // asset -> collected but not withdrawn
	banned   map[string]string   // creator -> ban reason
}

func defaultNetworks() map[uint64]NetworkFee {
	return map[uint64]NetworkFee{
		1:        {BP: 300, Name: "ethereum"},
		137:      {BP: 250, Name: "polygon"},
		42161:    {BP: 200, Name: "arbitrum"},
		11155111: {BP: 100, Name: "sepolia"},
		31337:    {BP: 200, Name: "localhost"},
	}
}

// NewManager seeds the default network table. The factory address is set later
// via SetFactory because the factory needs the manager at construction time.
func NewManager(owner, account, treasury string, bank Bank, sink EventSink) *Manager {
	return &Manager{
		owner:    owner,
		account:  account,
		treasury: treasury,
		bank:     bank,
		sink:     sink,
		networks: defaultNetworks(),
		accrued:  make(map[string]math.Int),
		banned:   make(map[string]string),
	}
}

// SetFactory records the one address allowed to report fee collections.
func (m *Manager) SetFactory(factory string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factory = factory
}

// Account returns the ledger account fees accrue into.
func (m *Manager) Account() string { return m.account }

// CalculateFee returns the platform cut for a prize on the given network.
// Unknown networks charge nothing.
func (m *Manager) CalculateFee(networkID uint64, prize math.Int) math.Int {
	m.mu.Lock()
	fee, ok := m.networks[networkID]
	m.mu.Unlock()
	if !ok || fee.BP == 0 {
		return math.ZeroInt()
	}
	return prize.Mul(math.NewInt(int64(fee.BP))).Quo(math.NewInt(10000))
}

// FeeBP returns the raw basis-point rate for a network.
func (m *Manager) FeeBP(networkID uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.networks[networkID].BP
}

// GetNetworkInfo returns the fee configuration for one network.
func (m *Manager) GetNetworkInfo(networkID uint64) NetworkInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	fee, ok := m.networks[networkID]
	return NetworkInfo{
		NetworkID:   networkID,
		Name:        fee.Name,
		FeeBP:       fee.BP,
		IsSupported: ok,
	}
}

// SetNetworkFee updates or adds a network's rate. Owner only, capped at
// MaxFeeBP.
func (m *Manager) SetNetworkFee(caller string, networkID uint64, bp int, name string) error {
	if caller != m.owner {
		return ErrOnlyOwner
	}
	if bp < 0 {
		return ErrNegativeFee
	}
	if bp > MaxFeeBP {
		return ErrFeeTooHigh.Wrapf("%d bp exceeds maximum %d", bp, MaxFeeBP)
	}

	m.mu.Lock()
	old := m.networks[networkID]
	if name == "" {
		name = old.Name
	}
	m.networks[networkID] = NetworkFee{BP: bp, Name: name}
	m.mu.Unlock()

	logging.Info("Network fee updated", logging.Fees,
		"network_id", networkID, "old_bp", old.BP, "new_bp", bp)
	m.sink.Emit(events.NetworkFeeUpdated{NetworkID: networkID, OldBP: old.BP, NewBP: bp})
	return nil
}

// CollectFee records a fee the factory already moved into the manager account.
// The ledger movement happens inside the factory's atomic creation batch; this
// only books the accrual and emits the record.
func (m *Manager) CollectFee(caller string, contestID uint64, creator, asset string, amount math.Int) error {
	m.mu.Lock()
	if caller != m.factory {
		m.mu.Unlock()
		return ErrOnlyFactory
	}
	if !amount.IsPositive() {
		m.mu.Unlock()
		return nil
	}
	current, ok := m.accrued[asset]
	if !ok {
		current = math.ZeroInt()
	}
	m.accrued[asset] = current.Add(amount)
	m.mu.Unlock()

	logging.Info("Fee collected", logging.Fees,
		"contest_id", contestID, "asset", asset, "amount", amount.String())
	if value, err := strconv.ParseFloat(amount.String(), 64); err == nil {
		metrics.FeesCollected.WithLabelValues(asset).Add(value)
	}
	m.sink.Emit(events.FeeCollected{
		ContestID: contestID,
		Creator:   creator,
		Asset:     asset,
		Amount:    amount,
	})
	return nil
}

// AvailableFees returns how much of an asset has accrued and not been
// withdrawn.
func (m *Manager) AvailableFees(asset string) math.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	amount, ok := m.accrued[asset]
	if !ok {
		return math.ZeroInt()
	}
	return amount
}

// WithdrawFees moves accrued fees of an asset to the treasury. Owner only. A
// nil or zero amount withdraws the full accrued balance; anything else must be
// positive and within what has accrued. The accrual is debited before the
// transfer and restored if the transfer fails.
func (m *Manager) WithdrawFees(caller, asset string, amount math.Int) (math.Int, error) {
	if caller != m.owner {
		return math.ZeroInt(), ErrOnlyOwner
	}
	if !amount.IsNil() && amount.IsNegative() {
		return math.ZeroInt(), ErrInvalidFeeInput.Wrapf("negative amount %s", amount.String())
	}

	m.mu.Lock()
	available, ok := m.accrued[asset]
	if !ok || !available.IsPositive() {
		m.mu.Unlock()
		return math.ZeroInt(), ErrNothingAccrued
	}
	if amount.IsNil() || amount.IsZero() {
		amount = available
	} else if amount.GT(available) {
		m.mu.Unlock()
		return math.ZeroInt(), ErrInvalidFeeInput.Wrapf(
			"requested %s exceeds accrued %s", amount.String(), available.String())
	}
	m.accrued[asset] = available.Sub(amount)
	m.mu.Unlock()

	if err := m.bank.Transfer(m.account, m.treasury, asset, amount); err != nil {
		m.mu.Lock()
		m.accrued[asset] = m.accrued[asset].Add(amount)
		m.mu.Unlock()
		return math.ZeroInt(), ErrTransferFailed.Wrapf("withdraw to %s: %v", m.treasury, err)
	}

	logging.Info("Fees withdrawn", logging.Fees,
		"asset", asset, "amount", amount.String(), "treasury", m.treasury)
	return amount, nil
}

// BanCreator blocks an address from creating contests.
func (m *Manager) BanCreator(caller, creator, reason string) error {
	if caller != m.owner {
		return ErrOnlyOwner
	}
	if creator == "" {
		return ErrInvalidAddress
	}

	m.mu.Lock()
	if _, ok := m.banned[creator]; ok {
		m.mu.Unlock()
		return ErrAlreadyBanned
	}
	m.banned[creator] = reason
	m.mu.Unlock()

	logging.Warn("Creator banned", logging.Fees, "creator", creator, "reason", reason)
	m.sink.Emit(events.CreatorBanned{Creator: creator, Reason: reason})
	return nil
}

// UnbanCreator lifts a ban.
func (m *Manager) UnbanCreator(caller, creator string) error {
	if caller != m.owner {
		return ErrOnlyOwner
	}

	m.mu.Lock()
	if _, ok := m.banned[creator]; !ok {
		m.mu.Unlock()
		return ErrNotBanned
	}
	delete(m.banned, creator)
	m.mu.Unlock()

	logging.Info("Creator unbanned", logging.Fees, "creator", creator)
	m.sink.Emit(events.CreatorUnbanned{Creator: creator})
	return nil
}

// IsCreatorBanned reports whether an address is on the ban list.
func (m *Manager) IsCreatorBanned(creator string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.banned[creator]
	return ok
}

// BanReason returns the recorded reason for a banned creator.
func (m *Manager) BanReason(creator string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reason, ok := m.banned[creator]
	return reason, ok
}

package factory

import (
	"fmt"
	"sync"
	"time"

	"contest-platform/badges"
	"contest-platform/escrow"
	"contest-platform/events"
	"contest-platform/feemanager"
	"contest-platform/ledger"
	"contest-platform/logging"
	"contest-platform/tokenvalidator"

	"cosmossdk.io/math"
)

const (
	// MinDuration and MaxDuration bound how long a contest may run.
	MinDuration = time.Hour
	MaxDuration = 365 * 24 * time.Hour
	// CreationCooldown is the minimum gap between contests from one creator.
	CreationCooldown = time.Hour
	// HighFeeWarningBP is the rate above which creation emits an advisory
	// warning. Creation still proceeds.
	HighFeeWarningBP = 1000
)

// Bank is the ledger surface the factory needs: atomic multi-leg payment
// batches, allowance pulls for token prizes, and balance reads.
type Bank interface {
	Apply(entries ...ledger.Entry) error
	Pull(spender, owner, to, asset string, amount math.Int) error
	Transfer(from, to, asset string, amount math.Int) error
	BalanceOf(account, asset string) math.Int
}

// EventSink receives emitted records.
type EventSink interface {
	Emit(events.Event)
}

// CreateParams is everything a creator supplies when opening a contest.
// A zero StartTime starts the contest immediately; a set one schedules it and
// must lie strictly in the future, with the contest inactive until then.
// For native-currency prizes Value is the attached payment and must cover
// prize plus fee; for token prizes Value must be zero and the factory pulls
// prize plus fee from the creator's allowance instead.
type CreateParams struct {
	Creator              string
	Token                string
	TotalPrize           math.Int
	Template             escrow.Template
	CustomDistribution   []escrow.PrizeSlot
	Jury                 []string
	StartTime            time.Time
	Duration             time.Duration
	Metadata             string
	HasNonMonetaryPrizes bool
	Value                math.Int
}

// Factory creates contests and owns platform-level controls: the emergency
// stop, the per-creator cooldown and recovery of stranded funds. Every
// contest lives in its own escrow with its own ledger account.
type Factory struct {
	mu        sync.Mutex
	owner     string
	account   string
	recovery  string
	networkID uint64
	bank      Bank
	fees      *feemanager.Manager
	tokens    *tokenvalidator.Validator
	badges    *badges.Tracker
	sink      EventSink
	now       func() time.Time

	emergencyStop bool
	nextID        uint64
	escrows       []*escrow.Escrow
	byID          map[uint64]*escrow.Escrow
	lastCreation  map[string]time.Time
}

// Config wires a factory. Account is the factory's own ledger account, used as
// the caller identity on escrow emergency paths and as the landing spot for
// stray funds.
type Config struct {
	Owner     string
	Account   string
	Recovery  string
	NetworkID uint64
	Bank      Bank
	Fees      *feemanager.Manager
	Tokens    *tokenvalidator.Validator
	Badges    *badges.Tracker
	Sink      EventSink
	Now       func() time.Time
}

func New(cfg Config) *Factory {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	f := &Factory{
		owner:        cfg.Owner,
		account:      cfg.Account,
		recovery:     cfg.Recovery,
		networkID:    cfg.NetworkID,
		bank:         cfg.Bank,
		fees:         cfg.Fees,
		tokens:       cfg.Tokens,
		badges:       cfg.Badges,
		sink:         cfg.Sink,
		now:          cfg.Now,
		nextID:       1,
		byID:         make(map[uint64]*escrow.Escrow),
		lastCreation: make(map[string]time.Time),
	}
	cfg.Fees.SetFactory(cfg.Account)
	return f
}

// Account returns the factory's own ledger account.
func (f *Factory) Account() string { return f.account }

// NetworkID returns the network this factory charges fees for.
func (f *Factory) NetworkID() uint64 { return f.networkID }

// CreateContest validates the request, collects the prize and the platform
// fee, and spins up a funded escrow. The cooldown check, the id assignment,
// the payment and the registry insert share one critical section: ids advance
// only on success and no two creations from one creator can interleave past
// the cooldown. A contest either exists fully funded or not at all.
func (f *Factory) CreateContest(params CreateParams) (*escrow.Escrow, error) {
	if f.EmergencyStopped() {
		return nil, ErrEmergencyMode
	}

	if params.Creator == "" {
		return nil, ErrInvalidCreator
	}
	if params.Value.IsNil() {
		params.Value = math.ZeroInt()
	}
	if f.fees.IsCreatorBanned(params.Creator) {
		return nil, ErrCreatorBanned
	}
	if !params.TotalPrize.IsPositive() {
		return nil, ErrPrizeNotPositive
	}
	if params.Duration < MinDuration || params.Duration > MaxDuration {
		return nil, ErrInvalidDuration.Wrapf("duration %s outside [%s, %s]",
			params.Duration, MinDuration, MaxDuration)
	}

	now := f.now()
	start := params.StartTime
	if start.IsZero() {
		start = now
	} else if !start.After(now) {
		return nil, ErrInvalidStartTime.Wrapf("start %s is not after %s",
			start.Format(time.RFC3339), now.Format(time.RFC3339))
	}
	end := start.Add(params.Duration)

	if err := f.tokens.ValidateToken(params.Token); err != nil {
		return nil, ErrInvalidToken.Wrapf("%s: %v", params.Token, err)
	}
	distribution, err := escrow.ResolveDistribution(params.Template, params.CustomDistribution)
	if err != nil {
		return nil, err
	}

	fee := f.fees.CalculateFee(f.networkID, params.TotalPrize)
	needed := params.TotalPrize.Add(fee)

	f.mu.Lock()
	if f.emergencyStop {
		f.mu.Unlock()
		return nil, ErrEmergencyMode
	}
	if last, ok := f.lastCreation[params.Creator]; ok {
		if now.Sub(last) < CreationCooldown {
			f.mu.Unlock()
			return nil, ErrWaitBetweenContests.Wrapf("next creation allowed at %s",
				last.Add(CreationCooldown).Format(time.RFC3339))
		}
	}

	id := f.nextID
	account := fmt.Sprintf("escrow/%d", id)
	if err := f.collectPayment(params, account, fee, needed); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.nextID++
	f.lastCreation[params.Creator] = now

	esc := escrow.New(escrow.Params{
		ContestID:            id,
		Creator:              params.Creator,
		Token:                params.Token,
		TotalPrize:           params.TotalPrize,
		Template:             params.Template,
		Distribution:         distribution,
		Jury:                 params.Jury,
		StartTime:            start,
		EndTime:              end,
		Metadata:             params.Metadata,
		HasNonMonetaryPrizes: params.HasNonMonetaryPrizes,
	}, account, f.account, f.bank, f.sink, f.now)
	f.escrows = append(f.escrows, esc)
	f.byID[id] = esc
	f.mu.Unlock()

	if fee.IsPositive() {
		if err := f.fees.CollectFee(f.account, id, params.Creator, params.Token, fee); err != nil {
			logging.Error("Fee accrual failed", logging.Factory, "contest_id", id, "error", err)
		}
	}
	if bp := f.fees.FeeBP(f.networkID); bp > HighFeeWarningBP {
		f.sink.Emit(events.NetworkWarning{
			NetworkID: f.networkID,
			FeeBP:     bp,
			Message:   "network fee above advisory threshold",
		})
	}
	if params.Token == ledger.NativeAsset && params.Value.GT(needed) {
		f.sink.Emit(events.ExcessRefunded{
			Creator: params.Creator,
			Amount:  params.Value.Sub(needed),
		})
	}

	f.badges.RecordContestCreated(params.Creator, params.Token, params.TotalPrize)

	logging.Info("Contest created", logging.Factory,
		"contest_id", id, "creator", params.Creator, "token", params.Token,
		"prize", params.TotalPrize.String(), "fee", fee.String())
	f.sink.Emit(events.ContestCreated{
		ContestID:     id,
		Creator:       params.Creator,
		EscrowAccount: account,
		Token:         params.Token,
		TotalPrize:    params.TotalPrize,
		Fee:           fee,
		Template:      int(params.Template),
		StartTime:     start.Unix(),
		EndTime:       end.Unix(),
	})
	return esc, nil
}

// collectPayment moves prize and fee into custody. Native prizes are paid from
// the attached value; only prize plus fee ever leave the creator's balance, so
// any declared excess stays put and the refund is a no-op on the ledger.
func (f *Factory) collectPayment(params CreateParams, escrowAccount string, fee, needed math.Int) error {
	if params.Token == ledger.NativeAsset {
		if params.Value.LT(needed) {
			return ErrInsufficientValue.Wrapf("attached %s, need %s", params.Value, needed)
		}
		entries := []ledger.Entry{
			{From: params.Creator, To: escrowAccount, Asset: params.Token, Amount: params.TotalPrize},
		}
		if fee.IsPositive() {
			entries = append(entries, ledger.Entry{
				From: params.Creator, To: f.fees.Account(), Asset: params.Token, Amount: fee,
			})
		}
		if err := f.bank.Apply(entries...); err != nil {
			return ErrPaymentFailed.Wrapf("native payment: %v", err)
		}
		return nil
	}

	if params.Value.IsPositive() {
		return ErrValueNotNeeded
	}
	// Pull the whole amount through the creator's allowance, then peel the fee
	// off the fresh escrow account. The second leg cannot lack funds.
	if err := f.bank.Pull(f.account, params.Creator, escrowAccount, params.Token, needed); err != nil {
		return ErrPaymentFailed.Wrapf("token payment: %v", err)
	}
	if fee.IsPositive() {
		if err := f.bank.Transfer(escrowAccount, f.fees.Account(), params.Token, fee); err != nil {
			return ErrPaymentFailed.Wrapf("fee split: %v", err)
		}
	}
	return nil
}

// Contest returns the escrow for a contest id.
func (f *Factory) Contest(id uint64) (*escrow.Escrow, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	esc, ok := f.byID[id]
	return esc, ok
}

// GetEscrow returns the n-th created escrow, zero-indexed.
func (f *Factory) GetEscrow(index int) (*escrow.Escrow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 0 || index >= len(f.escrows) {
		return nil, ErrContestNotFound.Wrapf("index %d of %d", index, len(f.escrows))
	}
	return f.escrows[index], nil
}

// ActiveCount returns how many contests are running right now: started, not
// yet ended, neither finalized nor cancelled.
func (f *Factory) ActiveCount() int {
	escrows := f.Escrows()
	n := 0
	for _, esc := range escrows {
		if esc.GetContestInfo().IsActive {
			n++
		}
	}
	return n
}

// EscrowsCount returns how many contests have been created.
func (f *Factory) EscrowsCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.escrows)
}

// LastID returns the most recently assigned contest id, zero before the first.
func (f *Factory) LastID() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nextID - 1
}

// Escrows returns a snapshot of all escrows in creation order.
func (f *Factory) Escrows() []*escrow.Escrow {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*escrow.Escrow, len(f.escrows))
	copy(out, f.escrows)
	return out
}

// CancelContest delegates to the escrow and books the cancellation against the
// creator's stats when it succeeds.
func (f *Factory) CancelContest(caller string, id uint64, reason string) error {
	esc, ok := f.Contest(id)
	if !ok {
		return ErrContestNotFound.Wrapf("contest %d", id)
	}
	if err := esc.Cancel(caller, reason); err != nil {
		return err
	}
	f.badges.RecordContestCancelled(esc.Params().Creator)
	return nil
}

// SetEmergencyStop flips the platform-wide creation halt. Owner only. Existing
// contests keep running; only creation is gated.
func (f *Factory) SetEmergencyStop(caller string, stop bool) error {
	if caller != f.owner {
		return ErrOnlyOwner
	}
	f.mu.Lock()
	f.emergencyStop = stop
	f.mu.Unlock()
	logging.Warn("Emergency stop changed", logging.Factory, "stopped", stop)
	return nil
}

// EmergencyStopped reports whether creation is halted.
func (f *Factory) EmergencyStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.emergencyStop
}

// EmergencyInfo describes whether a contest qualifies for a stale sweep.
type EmergencyInfo struct {
	ContestID            uint64   `json:"contest_id"`
	IsStale              bool     `json:"is_stale"`
	DaysSinceEnd         int64    `json:"days_since_end"`
	CanEmergencyWithdraw bool     `json:"can_emergency_withdraw"`
	Balance              math.Int `json:"balance"`
}

// GetEmergencyInfo reports the stale-sweep status of a contest.
func (f *Factory) GetEmergencyInfo(id uint64) (EmergencyInfo, error) {
	esc, ok := f.Contest(id)
	if !ok {
		return EmergencyInfo{}, ErrContestNotFound.Wrapf("contest %d", id)
	}
	info := esc.GetContestInfo()
	days := int64(0)
	if info.IsEnded {
		days = int64(f.now().Sub(info.EndTime).Hours() / 24)
	}
	stale := esc.IsStale()
	return EmergencyInfo{
		ContestID:            id,
		IsStale:              stale,
		DaysSinceEnd:         days,
		CanEmergencyWithdraw: stale && info.Balance.IsPositive(),
		Balance:              info.Balance,
	}, nil
}

// EmergencyWithdrawFromEscrow sweeps a stale contest's custody to the recovery
// address. Owner only; the factory account is the caller the escrow trusts.
func (f *Factory) EmergencyWithdrawFromEscrow(caller string, id uint64, reason string) (math.Int, error) {
	if caller != f.owner {
		return math.ZeroInt(), ErrOnlyOwner
	}
	esc, ok := f.Contest(id)
	if !ok {
		return math.ZeroInt(), ErrContestNotFound.Wrapf("contest %d", id)
	}
	return esc.EmergencyWithdraw(f.account, f.recovery, reason)
}

// RecoverFactoryFunds sweeps any balance stranded on the factory's own account
// to the recovery address. Owner only. The factory never holds funds in normal
// operation, so anything here arrived by mistake.
func (f *Factory) RecoverFactoryFunds(caller, asset string) (math.Int, error) {
	if caller != f.owner {
		return math.ZeroInt(), ErrOnlyOwner
	}
	amount := f.bank.BalanceOf(f.account, asset)
	if !amount.IsPositive() {
		return math.ZeroInt(), ErrNothingToRecover
	}
	if err := f.bank.Transfer(f.account, f.recovery, asset, amount); err != nil {
		return math.ZeroInt(), ErrPaymentFailed.Wrapf("recovery sweep: %v", err)
	}
	logging.Warn("Factory funds recovered", logging.Factory,
		"asset", asset, "amount", amount.String())
	f.sink.Emit(events.FactoryFundsRecovered{Asset: asset, Amount: amount})
	return amount, nil
}

package escrow

import (
	"sync"
	"time"

	"contest-platform/events"
	"contest-platform/logging"

	"cosmossdk.io/math"
)

// StaleThreshold is how long after endTime an unresolved contest must sit
// before the factory may sweep it.
const StaleThreshold = 180 * 24 * time.Hour

// Bank is the slice of the ledger an escrow needs: moving custody out and
// reading its own balance. Transfers are fallible external hand-offs; every
// state commit that matters happens before calling into them.
type Bank interface {
	Transfer(from, to, asset string, amount math.Int) error
	BalanceOf(account, asset string) math.Int
}

// EventSink receives emitted records.
type EventSink interface {
	Emit(events.Event)
}

// Params are fixed at init and never change afterwards.
type Params struct {
	ContestID            uint64
	Creator              string
	Token                string // ledger asset id; ledger.NativeAsset for the native currency
	TotalPrize           math.Int
	Template             Template
	Distribution         []PrizeSlot
	Jury                 []string
	StartTime            time.Time
	EndTime              time.Time
	Metadata             string
	HasNonMonetaryPrizes bool
}

type Winner struct {
	Address string `json:"address"`
	Place   int    `json:"place"`
}

// Escrow holds custody for one contest and owns its lifecycle state. The
// factory funds the escrow account before calling New; from then on nothing
// debits the account except the claim, cancel and emergency paths below.
type Escrow struct {
	mu      sync.Mutex
	params  Params
	account string
	factory string
	bank    Bank
	sink    EventSink
	now     func() time.Time

	finalized bool
	cancelled bool
	winners   []Winner
	placeOf   map[string]int
	claimed   map[string]bool
}

// New wires up a freshly funded escrow. An empty jury set is normalized to
// {creator} here, exactly once; the jury is immutable afterwards.
func New(params Params, account, factory string, bank Bank, sink EventSink, now func() time.Time) *Escrow {
	if now == nil {
		now = time.Now
	}
	if len(params.Jury) == 0 {
		params.Jury = []string{params.Creator}
	}
	return &Escrow{
		params:  params,
		account: account,
		factory: factory,
		bank:    bank,
		sink:    sink,
		now:     now,
		placeOf: make(map[string]int),
		claimed: make(map[string]bool),
	}
}

// Account returns the ledger account holding this contest's custody.
func (e *Escrow) Account() string { return e.account }

// Params returns the immutable contest parameters.
func (e *Escrow) Params() Params { return e.params }

// IsJury reports whether addr may declare winners (creator included when the
// jury was defaulted at init).
func (e *Escrow) IsJury(addr string) bool {
	for _, j := range e.params.Jury {
		if j == addr {
			return true
		}
	}
	return false
}

// Jury returns a copy of the jury set.
func (e *Escrow) Jury() []string {
	out := make([]string, len(e.params.Jury))
	copy(out, e.params.Jury)
	return out
}

// Distribution returns a copy of the prize table.
func (e *Escrow) Distribution() []PrizeSlot {
	out := make([]PrizeSlot, len(e.params.Distribution))
	copy(out, e.params.Distribution)
	return out
}

// Info is a point-in-time snapshot of the contest state.
type Info struct {
	ContestID   uint64    `json:"contest_id"`
	Creator     string    `json:"creator"`
	Token       string    `json:"token"`
	TotalPrize  math.Int  `json:"total_prize"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Metadata    string    `json:"metadata"`
	IsActive    bool      `json:"is_active"`
	IsEnded     bool      `json:"is_ended"`
	IsFinalized bool      `json:"is_finalized"`
	IsCancelled bool      `json:"is_cancelled"`
	Balance     math.Int  `json:"balance"`
}

func (e *Escrow) GetContestInfo() Info {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	ended := !now.Before(e.params.EndTime)
	active := !now.Before(e.params.StartTime) && !ended && !e.finalized && !e.cancelled
	return Info{
		ContestID:   e.params.ContestID,
		Creator:     e.params.Creator,
		Token:       e.params.Token,
		TotalPrize:  e.params.TotalPrize,
		StartTime:   e.params.StartTime,
		EndTime:     e.params.EndTime,
		Metadata:    e.params.Metadata,
		IsActive:    active,
		IsEnded:     ended,
		IsFinalized: e.finalized,
		IsCancelled: e.cancelled,
		Balance:     e.bank.BalanceOf(e.account, e.params.Token),
	}
}

// Winners returns the declared winner list in declaration order.
func (e *Escrow) Winners() []Winner {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Winner, len(e.winners))
	copy(out, e.winners)
	return out
}

// HasClaimed reports whether addr has already collected their prize.
func (e *Escrow) HasClaimed(addr string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.claimed[addr]
}

// DeclareWinners finalizes the contest. Only a jury member or the creator may
// call it, only after endTime, and only once — finalization is one-way.
// Places need not cover every slot but must not repeat.
func (e *Escrow) DeclareWinners(caller string, winners []string, places []int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finalized {
		return ErrAlreadyFinalized
	}
	if e.cancelled {
		return ErrAlreadyCancelled
	}
	if e.now().Before(e.params.EndTime) {
		return ErrContestStillActive
	}
	if caller != e.params.Creator && !e.IsJury(caller) {
		return ErrOnlyJuryOrCreator
	}
	if len(winners) != len(places) {
		return ErrMismatchedArrays
	}
	if len(winners) == 0 {
		return ErrMismatchedArrays.Wrap("empty winner list")
	}

	slots := make(map[int]bool, len(e.params.Distribution))
	for _, slot := range e.params.Distribution {
		slots[slot.Place] = true
	}
	usedPlaces := make(map[int]bool, len(places))
	usedWinners := make(map[string]bool, len(winners))
	for i, place := range places {
		if !slots[place] {
			return ErrInvalidPlace.Wrapf("place %d has no distribution slot", place)
		}
		if usedPlaces[place] {
			return ErrInvalidPlace.Wrapf("place %d assigned twice", place)
		}
		if winners[i] == "" {
			return ErrInvalidPlace.Wrapf("empty winner for place %d", place)
		}
		if usedWinners[winners[i]] {
			return ErrInvalidPlace.Wrapf("winner %s assigned twice", winners[i])
		}
		usedPlaces[place] = true
		usedWinners[winners[i]] = true
	}

	for i, addr := range winners {
		e.winners = append(e.winners, Winner{Address: addr, Place: places[i]})
		e.placeOf[addr] = places[i]
	}
	e.finalized = true

	logging.Info("Winners declared", logging.Escrow,
		"contest_id", e.params.ContestID, "winners", len(winners))
	e.sink.Emit(events.WinnersDeclared{
		ContestID: e.params.ContestID,
		Winners:   append([]string(nil), winners...),
		Places:    append([]int(nil), places...),
	})
	return nil
}

// ClaimPrize pays out the caller's slot. The claimed flag is committed before
// the transfer so a reentrant call observes it and fails; if the transfer
// itself fails the flag is rolled back and the whole claim reverts, leaving a
// retry possible.
func (e *Escrow) ClaimPrize(caller string) (math.Int, error) {
	e.mu.Lock()
	if !e.finalized {
		e.mu.Unlock()
		return math.ZeroInt(), ErrNotFinalized
	}
	place, ok := e.placeOf[caller]
	if !ok {
		e.mu.Unlock()
		return math.ZeroInt(), ErrNotAWinner
	}
	if e.claimed[caller] {
		e.mu.Unlock()
		return math.ZeroInt(), ErrAlreadyClaimed
	}

	var percentageBP int
	for _, slot := range e.params.Distribution {
		if slot.Place == place {
			percentageBP = slot.PercentageBP
			break
		}
	}
	payout := PayoutFor(e.params.TotalPrize, percentageBP)
	e.claimed[caller] = true
	e.mu.Unlock()

	if err := e.bank.Transfer(e.account, caller, e.params.Token, payout); err != nil {
		e.mu.Lock()
		e.claimed[caller] = false
		e.mu.Unlock()
		logging.Error("Prize transfer failed, claim rolled back", logging.Escrow,
			"contest_id", e.params.ContestID, "winner", caller, "error", err)
		return math.ZeroInt(), ErrTransferFailed.Wrapf("winner %s: %v", caller, err)
	}

	logging.Info("Prize claimed", logging.Escrow,
		"contest_id", e.params.ContestID, "winner", caller, "amount", payout.String())
	e.sink.Emit(events.PrizeClaimed{
		ContestID: e.params.ContestID,
		Winner:    caller,
		Place:     place,
		Amount:    payout,
	})
	return payout, nil
}

// Cancel refunds the full custody balance to the creator and terminates the
// contest. Only the creator may cancel, and never after finalization.
func (e *Escrow) Cancel(caller, reason string) error {
	e.mu.Lock()
	if caller != e.params.Creator {
		e.mu.Unlock()
		return ErrOnlyCreator
	}
	if e.finalized {
		e.mu.Unlock()
		return ErrAlreadyFinalized
	}
	if e.cancelled {
		e.mu.Unlock()
		return ErrAlreadyCancelled
	}
	refund := e.bank.BalanceOf(e.account, e.params.Token)
	e.cancelled = true
	e.mu.Unlock()

	if refund.IsPositive() {
		if err := e.bank.Transfer(e.account, e.params.Creator, e.params.Token, refund); err != nil {
			e.mu.Lock()
			e.cancelled = false
			e.mu.Unlock()
			return ErrTransferFailed.Wrapf("refund to %s: %v", e.params.Creator, err)
		}
	}

	logging.Info("Contest cancelled", logging.Escrow,
		"contest_id", e.params.ContestID, "reason", reason, "refund", refund.String())
	e.sink.Emit(events.ContestCancelled{ContestID: e.params.ContestID, Reason: reason})
	return nil
}

// IsStale reports whether the contest has ended, was never resolved, and has
// sat past the stale threshold.
func (e *Escrow) IsStale() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finalized || e.cancelled {
		return false
	}
	return e.now().After(e.params.EndTime.Add(StaleThreshold))
}

// EmergencyWithdraw sweeps the remaining custody to the recovery address. Only
// the factory may call it; addresses holding any other permission go through
// the factory, never here.
func (e *Escrow) EmergencyWithdraw(caller, recovery, reason string) (math.Int, error) {
	e.mu.Lock()
	if caller != e.factory {
		e.mu.Unlock()
		return math.ZeroInt(), ErrOnlyFactory
	}
	if e.finalized {
		e.mu.Unlock()
		return math.ZeroInt(), ErrAlreadyFinalized
	}
	if e.cancelled {
		e.mu.Unlock()
		return math.ZeroInt(), ErrAlreadyCancelled
	}
	if !e.now().After(e.params.EndTime.Add(StaleThreshold)) {
		e.mu.Unlock()
		return math.ZeroInt(), ErrNotStale
	}
	amount := e.bank.BalanceOf(e.account, e.params.Token)
	e.cancelled = true
	e.mu.Unlock()

	if amount.IsPositive() {
		if err := e.bank.Transfer(e.account, recovery, e.params.Token, amount); err != nil {
			e.mu.Lock()
			e.cancelled = false
			e.mu.Unlock()
			return math.ZeroInt(), ErrTransferFailed.Wrapf("sweep to %s: %v", recovery, err)
		}
	}

	logging.Warn("Emergency withdrawal", logging.Escrow,
		"contest_id", e.params.ContestID, "amount", amount.String(), "reason", reason)
	e.sink.Emit(events.EmergencyWithdrawal{
		ContestID: e.params.ContestID,
		Amount:    amount,
		Recovery:  recovery,
		Reason:    reason,
	})
	return amount, nil
}

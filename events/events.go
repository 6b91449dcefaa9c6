package events

import (
	"time"

	"cosmossdk.io/math"
)

// Event is one emitted record. Records are consumed by off-chain indexers and
// the websocket stream; nothing in the core reads them back.
type Event interface {
	EventType() string
}

type ContestCreated struct {
	ContestID     uint64   `json:"contest_id"`
	Creator       string   `json:"creator"`
	EscrowAccount string   `json:"escrow_account"`
	Token         string   `json:"token"`
	TotalPrize    math.Int `json:"total_prize"`
	Fee           math.Int `json:"fee"`
	Template      int      `json:"template"`
	StartTime     int64    `json:"start_time"`
	EndTime       int64    `json:"end_time"`
}

func (ContestCreated) EventType() string { return "contest_created" }

type WinnersDeclared struct {
	ContestID uint64   `json:"contest_id"`
	Winners   []string `json:"winners"`
	Places    []int    `json:"places"`
}

func (WinnersDeclared) EventType() string { return "winners_declared" }

type PrizeClaimed struct {
	ContestID uint64   `json:"contest_id"`
	Winner    string   `json:"winner"`
	Place     int      `json:"place"`
	Amount    math.Int `json:"amount"`
}

func (PrizeClaimed) EventType() string { return "prize_claimed" }

type ContestCancelled struct {
	ContestID uint64 `json:"contest_id"`
	Reason    string `json:"reason"`
}

func (ContestCancelled) EventType() string { return "contest_cancelled" }

type EmergencyWithdrawal struct {
	ContestID uint64   `json:"contest_id"`
	Amount    math.Int `json:"amount"`
	Recovery  string   `json:"recovery"`
	Reason    string   `json:"reason"`
}

func (EmergencyWithdrawal) EventType() string { return "emergency_withdrawal" }

type ExcessRefunded struct {
	Creator string   `json:"creator"`
	Amount  math.Int `json:"amount"`
}

func (ExcessRefunded) EventType() string { return "excess_refunded" }

// NetworkWarning is advisory only; creation proceeds regardless.
type NetworkWarning struct {
	NetworkID uint64 `json:"network_id"`
	FeeBP     int    `json:"fee_bp"`
	Message   string `json:"message"`
}

func (NetworkWarning) EventType() string { return "network_warning" }

type FeeCollected struct {
	ContestID uint64   `json:"contest_id"`
	Creator   string   `json:"creator"`
	Asset     string   `json:"asset"`
	Amount    math.Int `json:"amount"`
}

func (FeeCollected) EventType() string { return "fee_collected" }

type NetworkFeeUpdated struct {
	NetworkID uint64 `json:"network_id"`
	OldBP     int    `json:"old_bp"`
	NewBP     int    `json:"new_bp"`
}

func (NetworkFeeUpdated) EventType() string { return "network_fee_updated" }

type CreatorBanned struct {
	Creator string `json:"creator"`
	Reason  string `json:"reason"`
}

func (CreatorBanned) EventType() string { return "creator_banned" }

type CreatorUnbanned struct {
	Creator string `json:"creator"`
}

func (CreatorUnbanned) EventType() string { return "creator_unbanned" }

type FactoryFundsRecovered struct {
	Asset  string   `json:"asset"`
	Amount math.Int `json:"amount"`
}

func (FactoryFundsRecovered) EventType() string { return "factory_funds_recovered" }

type BadgeAwarded struct {
	Creator string `json:"creator"`
	Code    string `json:"code"`
}

func (BadgeAwarded) EventType() string { return "badge_awarded" }

// Record wraps an event with its envelope as it appears on the stream.
type Record struct {
	ID        string    `json:"id"`
	EmittedAt time.Time `json:"emitted_at"`
	Type      string    `json:"type"`
	Event     Event     `json:"event"`
}

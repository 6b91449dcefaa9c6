package public

import (
	"time"

	"contest-platform/escrow"

	"cosmossdk.io/math"
)

// PrizeSlotDto mirrors escrow.PrizeSlot on the wire.
type PrizeSlotDto struct {
	Place        int    `json:"place"`
	PercentageBP int    `json:"percentage_bp"`
	Label        string `json:"label"`
}

type CreateContestRequest struct {
	Creator              string         `json:"creator"`
	Token                string         `json:"token"`
	TotalPrize           string         `json:"total_prize"`
	Template             int            `json:"template"`
	CustomDistribution   []PrizeSlotDto `json:"custom_distribution,omitempty"`
	Jury                 []string       `json:"jury,omitempty"`
	Duration             string         `json:"duration"`
	StartTime            string         `json:"start_time,omitempty"`
	Metadata             string         `json:"metadata,omitempty"`
	HasNonMonetaryPrizes bool           `json:"has_non_monetary_prizes,omitempty"`
	Value                string         `json:"value,omitempty"`
}

type CreateContestResponse struct {
	ContestID     uint64 `json:"contest_id"`
	EscrowAccount string `json:"escrow_account"`
}

type DeclareWinnersRequest struct {
	Caller  string   `json:"caller"`
	Winners []string `json:"winners"`
	Places  []int    `json:"places"`
}

type ClaimPrizeRequest struct {
	Caller string `json:"caller"`
}

type ClaimPrizeResponse struct {
	ContestID uint64   `json:"contest_id"`
	Winner    string   `json:"winner"`
	Amount    math.Int `json:"amount"`
}

type CancelContestRequest struct {
	Caller string `json:"caller"`
	Reason string `json:"reason,omitempty"`
}

type ContestDto struct {
	ContestID    uint64         `json:"contest_id"`
	Creator      string         `json:"creator"`
	Token        string         `json:"token"`
	TotalPrize   math.Int       `json:"total_prize"`
	Template     int            `json:"template"`
	Distribution []PrizeSlotDto `json:"distribution"`
	Jury         []string       `json:"jury"`
	StartTime    time.Time      `json:"start_time"`
	EndTime      time.Time      `json:"end_time"`
	Metadata     string         `json:"metadata"`
	IsActive     bool           `json:"is_active"`
	IsEnded      bool           `json:"is_ended"`
	IsFinalized  bool           `json:"is_finalized"`
	IsCancelled  bool           `json:"is_cancelled"`
	Balance      math.Int       `json:"balance"`
}

type WinnerDto struct {
	Address string `json:"address"`
	Place   int    `json:"place"`
	Claimed bool   `json:"claimed"`
}

type ContestsDto struct {
	Contests []ContestDto `json:"contests"`
	Total    int          `json:"total"`
}

type FeeQuoteDto struct {
	NetworkID uint64   `json:"network_id"`
	Name      string   `json:"name"`
	FeeBP     int      `json:"fee_bp"`
	Prize     math.Int `json:"prize,omitempty"`
	Fee       math.Int `json:"fee,omitempty"`
}

func contestDto(esc *escrow.Escrow) ContestDto {
	info := esc.GetContestInfo()
	params := esc.Params()
	distribution := make([]PrizeSlotDto, 0, len(params.Distribution))
	for _, slot := range esc.Distribution() {
		distribution = append(distribution, PrizeSlotDto{
			Place:        slot.Place,
			PercentageBP: slot.PercentageBP,
			Label:        slot.Label,
		})
	}
	return ContestDto{
		ContestID:    info.ContestID,
		Creator:      info.Creator,
		Token:        info.Token,
		TotalPrize:   info.TotalPrize,
		Template:     int(params.Template),
		Distribution: distribution,
		Jury:         esc.Jury(),
		StartTime:    info.StartTime,
		EndTime:      info.EndTime,
		Metadata:     info.Metadata,
		IsActive:     info.IsActive,
		IsEnded:      info.IsEnded,
		IsFinalized:  info.IsFinalized,
		IsCancelled:  info.IsCancelled,
		Balance:      info.Balance,
	}
}

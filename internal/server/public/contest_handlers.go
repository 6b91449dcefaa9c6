package public

import (
	"net/http"
	"strconv"
	"time"

	"contest-platform/escrow"
	"contest-platform/factory"
	"contest-platform/internal/metrics"
	"contest-platform/logging"

	"cosmossdk.io/math"
	"github.com/labstack/echo/v4"
)

func (s *Server) createContest(c echo.Context) error {
	var req CreateContestRequest
	if err := c.Bind(&req); err != nil {
		return ErrInvalidBody
	}

	prize, ok := math.NewIntFromString(req.TotalPrize)
	if !ok {
		return ErrInvalidAmount
	}
	value := math.ZeroInt()
	if req.Value != "" {
		value, ok = math.NewIntFromString(req.Value)
		if !ok {
			return ErrInvalidAmount
		}
	}
	duration, err := time.ParseDuration(req.Duration)
	if err != nil {
		return ErrInvalidDuration
	}
	var start time.Time
	if req.StartTime != "" {
		start, err = time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			return ErrInvalidStartTime
		}
	}

	custom := make([]escrow.PrizeSlot, 0, len(req.CustomDistribution))
	for _, slot := range req.CustomDistribution {
		custom = append(custom, escrow.PrizeSlot{
			Place:        slot.Place,
			PercentageBP: slot.PercentageBP,
			Label:        slot.Label,
		})
	}

	logging.Debug("POST contest", logging.Server, "creator", req.Creator, "token", req.Token)

	esc, err := s.factory.CreateContest(factory.CreateParams{
		Creator:              req.Creator,
		Token:                req.Token,
		TotalPrize:           prize,
		Template:             escrow.Template(req.Template),
		CustomDistribution:   custom,
		Jury:                 req.Jury,
		Duration:             duration,
		StartTime:            start,
		Metadata:             req.Metadata,
		HasNonMonetaryPrizes: req.HasNonMonetaryPrizes,
		Value:                value,
	})
	if err != nil {
		metrics.RequestsRejected.WithLabelValues("create_contest").Inc()
		return translateError(err)
	}

	metrics.ContestsCreated.Inc()
	return c.JSON(http.StatusCreated, CreateContestResponse{
		ContestID:     esc.Params().ContestID,
		EscrowAccount: esc.Account(),
	})
}

func (s *Server) contestFromPath(c echo.Context) (*escrow.Escrow, error) {
	idParam := c.Param("id")
	if idParam == "" {
		return nil, ErrContestIdRequired
	}
	id, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		return nil, ErrContestIdRequired
	}
	esc, ok := s.factory.Contest(id)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Contest not found")
	}
	return esc, nil
}

func (s *Server) getContests(c echo.Context) error {
	escrows := s.factory.Escrows()
	contests := make([]ContestDto, len(escrows))
	for i, esc := range escrows {
		contests[i] = contestDto(esc)
	}
	return c.JSON(http.StatusOK, ContestsDto{Contests: contests, Total: len(contests)})
}

func (s *Server) getContestById(c echo.Context) error {
	esc, err := s.contestFromPath(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contestDto(esc))
}

func (s *Server) getContestDistribution(c echo.Context) error {
	esc, err := s.contestFromPath(c)
	if err != nil {
		return err
	}
	slots := esc.Distribution()
	distribution := make([]PrizeSlotDto, len(slots))
	for i, slot := range slots {
		distribution[i] = PrizeSlotDto{
			Place:        slot.Place,
			PercentageBP: slot.PercentageBP,
			Label:        slot.Label,
		}
	}
	return c.JSON(http.StatusOK, distribution)
}

func (s *Server) getContestWinners(c echo.Context) error {
	esc, err := s.contestFromPath(c)
	if err != nil {
		return err
	}
	declared := esc.Winners()
	winners := make([]WinnerDto, len(declared))
	for i, w := range declared {
		winners[i] = WinnerDto{
			Address: w.Address,
			Place:   w.Place,
			Claimed: esc.HasClaimed(w.Address),
		}
	}
	return c.JSON(http.StatusOK, winners)
}

func (s *Server) declareWinners(c echo.Context) error {
	esc, err := s.contestFromPath(c)
	if err != nil {
		return err
	}
	var req DeclareWinnersRequest
	if err := c.Bind(&req); err != nil {
		return ErrInvalidBody
	}

	if err := esc.DeclareWinners(req.Caller, req.Winners, req.Places); err != nil {
		metrics.RequestsRejected.WithLabelValues("declare_winners").Inc()
		return translateError(err)
	}
	metrics.ContestsFinalized.Inc()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) claimPrize(c echo.Context) error {
	esc, err := s.contestFromPath(c)
	if err != nil {
		return err
	}
	var req ClaimPrizeRequest
	if err := c.Bind(&req); err != nil {
		return ErrInvalidBody
	}
	if req.Caller == "" {
		return ErrAddressRequired
	}

	amount, err := esc.ClaimPrize(req.Caller)
	if err != nil {
		metrics.RequestsRejected.WithLabelValues("claim_prize").Inc()
		return translateError(err)
	}
	metrics.PrizesClaimed.Inc()
	return c.JSON(http.StatusOK, ClaimPrizeResponse{
		ContestID: esc.Params().ContestID,
		Winner:    req.Caller,
		Amount:    amount,
	})
}

func (s *Server) cancelContest(c echo.Context) error {
	esc, err := s.contestFromPath(c)
	if err != nil {
		return err
	}
	var req CancelContestRequest
	if err := c.Bind(&req); err != nil {
		return ErrInvalidBody
	}

	if err := s.factory.CancelContest(req.Caller, esc.Params().ContestID, req.Reason); err != nil {
		metrics.RequestsRejected.WithLabelValues("cancel_contest").Inc()
		return translateError(err)
	}
	metrics.ContestsCancelled.Inc()
	return c.NoContent(http.StatusNoContent)
}

package public

import (
	"errors"
	"net/http"

	"contest-platform/escrow"
	"contest-platform/factory"

	"github.com/labstack/echo/v4"
)

var (
	ErrContestIdRequired = echo.NewHTTPError(http.StatusBadRequest, "Contest id is required")
	ErrAddressRequired   = echo.NewHTTPError(http.StatusBadRequest, "Address is required")
	ErrInvalidBody       = echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	ErrInvalidAmount     = echo.NewHTTPError(http.StatusBadRequest, "Invalid amount")
	ErrInvalidDuration   = echo.NewHTTPError(http.StatusBadRequest, "Invalid duration")
	ErrInvalidStartTime  = echo.NewHTTPError(http.StatusBadRequest, "Invalid start time")
)

// translateError maps domain errors onto HTTP statuses: bad input 400,
// wrong caller 403, wrong lifecycle state 409, cooldown 429, payment 402,
// unknown contest 404.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	switch {
	case errors.Is(err, factory.ErrContestNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, factory.ErrWaitBetweenContests):
		return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
	case errors.Is(err, factory.ErrInsufficientValue),
		errors.Is(err, factory.ErrPaymentFailed):
		return echo.NewHTTPError(http.StatusPaymentRequired, err.Error())
	case errors.Is(err, factory.ErrEmergencyMode),
		errors.Is(err, factory.ErrCreatorBanned),
		errors.Is(err, factory.ErrOnlyOwner),
		errors.Is(err, escrow.ErrOnlyCreator),
		errors.Is(err, escrow.ErrOnlyJuryOrCreator),
		errors.Is(err, escrow.ErrOnlyFactory),
		errors.Is(err, escrow.ErrNotAWinner):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, escrow.ErrContestStillActive),
		errors.Is(err, escrow.ErrAlreadyFinalized),
		errors.Is(err, escrow.ErrAlreadyCancelled),
		errors.Is(err, escrow.ErrNotFinalized),
		errors.Is(err, escrow.ErrAlreadyClaimed),
		errors.Is(err, escrow.ErrNotStale):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, factory.ErrPrizeNotPositive),
		errors.Is(err, factory.ErrInvalidDuration),
		errors.Is(err, factory.ErrInvalidStartTime),
		errors.Is(err, factory.ErrInvalidToken),
		errors.Is(err, factory.ErrValueNotNeeded),
		errors.Is(err, factory.ErrInvalidCreator),
		errors.Is(err, escrow.ErrInvalidDistribution),
		errors.Is(err, escrow.ErrUnknownTemplate),
		errors.Is(err, escrow.ErrMismatchedArrays),
		errors.Is(err, escrow.ErrInvalidPlace):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}

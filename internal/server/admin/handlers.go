package admin

import (
	"errors"
	"net/http"
	"strconv"

	"contest-platform/escrow"
	"contest-platform/factory"
	"contest-platform/feemanager"
	"contest-platform/internal/metrics"
	"contest-platform/logging"
	"contest-platform/tokenvalidator"

	"cosmossdk.io/math"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidBody      = echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	ErrInvalidContestId = echo.NewHTTPError(http.StatusBadRequest, "Invalid contest id")
	ErrInvalidNetworkId = echo.NewHTTPError(http.StatusBadRequest, "Invalid network id")
	ErrAssetRequired    = echo.NewHTTPError(http.StatusBadRequest, "Asset is required")
	ErrAddressRequired  = echo.NewHTTPError(http.StatusBadRequest, "Address is required")
	ErrInvalidAmount    = echo.NewHTTPError(http.StatusBadRequest, "Invalid amount")
)

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, factory.ErrContestNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, escrow.ErrNotStale),
		errors.Is(err, escrow.ErrAlreadyFinalized),
		errors.Is(err, escrow.ErrAlreadyCancelled):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, feemanager.ErrFeeTooHigh),
		errors.Is(err, feemanager.ErrNegativeFee),
		errors.Is(err, feemanager.ErrInvalidAddress),
		errors.Is(err, feemanager.ErrInvalidFeeInput),
		errors.Is(err, tokenvalidator.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, feemanager.ErrAlreadyBanned),
		errors.Is(err, feemanager.ErrNotBanned),
		errors.Is(err, feemanager.ErrNothingAccrued),
		errors.Is(err, factory.ErrNothingToRecover),
		errors.Is(err, tokenvalidator.ErrAlreadyDenied):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, tokenvalidator.ErrUnknownToken):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return err
	}
}

func (s *Server) setEmergencyStop(c echo.Context) error {
	var req EmergencyStopRequest
	if err := c.Bind(&req); err != nil {
		return ErrInvalidBody
	}
	if err := s.factory.SetEmergencyStop(s.owner, req.Stop); err != nil {
		return translateError(err)
	}
	return c.JSON(http.StatusOK, struct {
		Stopped bool `json:"stopped"`
	}{Stopped: s.factory.EmergencyStopped()})
}

func contestIdFromPath(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, ErrInvalidContestId
	}
	return id, nil
}

func (s *Server) getEmergencyInfo(c echo.Context) error {
	id, err := contestIdFromPath(c)
	if err != nil {
		return err
	}
	info, err := s.factory.GetEmergencyInfo(id)
	if err != nil {
		return translateError(err)
	}
	return c.JSON(http.StatusOK, info)
}

func (s *Server) emergencyWithdraw(c echo.Context) error {
	id, err := contestIdFromPath(c)
	if err != nil {
		return err
	}
	var req EmergencyWithdrawRequest
	if err := c.Bind(&req); err != nil {
		return ErrInvalidBody
	}

	esc, ok := s.factory.Contest(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Contest not found")
	}
	amount, err := s.factory.EmergencyWithdrawFromEscrow(s.owner, id, req.Reason)
	if err != nil {
		return translateError(err)
	}
	metrics.EmergencyWithdrawals.Inc()
	return c.JSON(http.StatusOK, AmountResponse{Asset: esc.Params().Token, Amount: amount})
}

func (s *Server) banCreator(c echo.Context) error {
	address := c.Param("address")
	if address == "" {
		return ErrAddressRequired
	}
	var req BanRequest
	if err := c.Bind(&req); err != nil {
		return ErrInvalidBody
	}
	if err := s.fees.BanCreator(s.owner, address, req.Reason); err != nil {
		return translateError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) unbanCreator(c echo.Context) error {
	address := c.Param("address")
	if address == "" {
		return ErrAddressRequired
	}
	if err := s.fees.UnbanCreator(s.owner, address); err != nil {
		return translateError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) setNetworkFee(c echo.Context) error {
	networkID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ErrInvalidNetworkId
	}
	var req SetNetworkFeeRequest
	if err := c.Bind(&req); err != nil {
		return ErrInvalidBody
	}
	if err := s.fees.SetNetworkFee(s.owner, networkID, req.FeeBP, req.Name); err != nil {
		return translateError(err)
	}
	return c.JSON(http.StatusOK, s.fees.GetNetworkInfo(networkID))
}

func (s *Server) getAvailableFees(c echo.Context) error {
	asset := c.Param("asset")
	if asset == "" {
		return ErrAssetRequired
	}
	return c.JSON(http.StatusOK, AmountResponse{
		Asset:  asset,
		Amount: s.fees.AvailableFees(asset),
	})
}

func (s *Server) withdrawFees(c echo.Context) error {
	asset := c.Param("asset")
	if asset == "" {
		return ErrAssetRequired
	}
	var req WithdrawFeesRequest
	if err := c.Bind(&req); err != nil {
		return ErrInvalidBody
	}
	// An empty or missing amount withdraws everything accrued for the asset.
	requested := math.ZeroInt()
	if req.Amount != "" {
		var ok bool
		requested, ok = math.NewIntFromString(req.Amount)
		if !ok {
			return ErrInvalidAmount
		}
	}
	amount, err := s.fees.WithdrawFees(s.owner, asset, requested)
	if err != nil {
		return translateError(err)
	}
	logging.Info("Fees withdrawn via admin API", logging.Server,
		"asset", asset, "amount", amount.String())
	return c.JSON(http.StatusOK, AmountResponse{Asset: asset, Amount: amount})
}

func (s *Server) registerToken(c echo.Context) error {
	var req RegisterTokenRequest
	if err := c.Bind(&req); err != nil {
		return ErrInvalidBody
	}
	price, err := decimal.NewFromString(req.PriceUSD)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid price_usd")
	}
	liquidity, err := decimal.NewFromString(req.LiquidityUSD)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid liquidity_usd")
	}

	err = s.tokens.Register(s.owner, tokenvalidator.TokenInfo{
		Asset:           req.Asset,
		Name:            req.Name,
		Symbol:          req.Symbol,
		Decimals:        req.Decimals,
		IsStablecoin:    req.IsStablecoin,
		IsWrappedNative: req.IsWrappedNative,
		PriceUSD:        price,
		LiquidityUSD:    liquidity,
	})
	if err != nil {
		return translateError(err)
	}
	return c.NoContent(http.StatusCreated)
}

func (s *Server) removeToken(c echo.Context) error {
	asset := c.Param("asset")
	if asset == "" {
		return ErrAssetRequired
	}
	if err := s.tokens.Remove(s.owner, asset); err != nil {
		return translateError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) denyToken(c echo.Context) error {
	asset := c.Param("asset")
	if asset == "" {
		return ErrAssetRequired
	}
	var req DenyTokenRequest
	if err := c.Bind(&req); err != nil {
		return ErrInvalidBody
	}
	if err := s.tokens.Deny(s.owner, asset, req.Reason); err != nil {
		return translateError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) allowToken(c echo.Context) error {
	asset := c.Param("asset")
	if asset == "" {
		return ErrAssetRequired
	}
	if err := s.tokens.Allow(s.owner, asset); err != nil {
		return translateError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) recoverFactoryFunds(c echo.Context) error {
	var req RecoverRequest
	if err := c.Bind(&req); err != nil {
		return ErrInvalidBody
	}
	if req.Asset == "" {
		return ErrAssetRequired
	}
	amount, err := s.factory.RecoverFactoryFunds(s.owner, req.Asset)
	if err != nil {
		return translateError(err)
	}
	return c.JSON(http.StatusOK, AmountResponse{Asset: req.Asset, Amount: amount})
}

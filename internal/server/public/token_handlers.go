package public

import (
	"net/http"
	"strconv"

	"contest-platform/logging"

	"cosmossdk.io/math"
	"github.com/labstack/echo/v4"
)

func (s *Server) getTokens(c echo.Context) error {
	return c.JSON(http.StatusOK, s.tokens.Tokens())
}

func (s *Server) getTokenByAsset(c echo.Context) error {
	asset := c.Param("asset")
	if asset == "" {
		return ErrAddressRequired
	}

	info, ok := s.tokens.GetTokenInfo(asset)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Token not registered")
	}
	return c.JSON(http.StatusOK, struct {
		Info    any    `json:"info"`
		IsValid bool   `json:"is_valid"`
		Reason  string `json:"reason,omitempty"`
	}{
		Info:    info,
		IsValid: s.tokens.IsValidToken(asset),
		Reason:  validationReason(s.tokens.ValidateToken(asset)),
	})
}

func validationReason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// getNetworkFee quotes the platform fee for a network, optionally for a
// concrete prize via ?prize=.
func (s *Server) getNetworkFee(c echo.Context) error {
	idParam := c.Param("id")
	networkID, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid network id")
	}

	info := s.fees.GetNetworkInfo(networkID)
	quote := FeeQuoteDto{
		NetworkID: info.NetworkID,
		Name:      info.Name,
		FeeBP:     info.FeeBP,
	}

	if prizeParam := c.QueryParam("prize"); prizeParam != "" {
		prize, ok := math.NewIntFromString(prizeParam)
		if !ok || !prize.IsPositive() {
			return ErrInvalidAmount
		}
		quote.Prize = prize
		quote.Fee = s.fees.CalculateFee(networkID, prize)
		logging.Debug("Fee quoted", logging.Server,
			"network_id", networkID, "prize", prize.String(), "fee", quote.Fee.String())
	}
	return c.JSON(http.StatusOK, quote)
}

func (s *Server) getCreatorBadges(c echo.Context) error {
	address := c.Param("address")
	if address == "" {
		return ErrAddressRequired
	}
	return c.JSON(http.StatusOK, s.badges.Badges(address))
}

func (s *Server) getCreatorStats(c echo.Context) error {
	address := c.Param("address")
	if address == "" {
		return ErrAddressRequired
	}
	return c.JSON(http.StatusOK, s.badges.Stats(address))
}

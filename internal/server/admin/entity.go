package admin

import "cosmossdk.io/math"

type EmergencyStopRequest struct {
	Stop bool `json:"stop"`
}

type EmergencyWithdrawRequest struct {
	Reason string `json:"reason"`
}

type AmountResponse struct {
	Asset  string   `json:"asset"`
	Amount math.Int `json:"amount"`
}

type WithdrawFeesRequest struct {
	Amount string `json:"amount,omitempty"`
}

type BanRequest struct {
	Reason string `json:"reason"`
}

type SetNetworkFeeRequest struct {
	FeeBP int    `json:"fee_bp"`
	Name  string `json:"name,omitempty"`
}

type RegisterTokenRequest struct {
	Asset           string `json:"asset"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Decimals        int    `json:"decimals"`
	IsStablecoin    bool   `json:"is_stablecoin"`
	IsWrappedNative bool   `json:"is_wrapped_native"`
	PriceUSD        string `json:"price_usd"`
	LiquidityUSD    string `json:"liquidity_usd"`
}

type DenyTokenRequest struct {
	Reason string `json:"reason"`
}

type RecoverRequest struct {
	Asset string `json:"asset"`
}

package feemanager

import "cosmossdk.io/errors"

const codespace = "feemanager"

var (
	ErrOnlyOwner       = errors.Register(codespace, 2, "only owner can call this")
	ErrOnlyFactory     = errors.Register(codespace, 3, "only factory can call this")
	ErrFeeTooHigh      = errors.Register(codespace, 4, "fee too high")
	ErrNothingAccrued  = errors.Register(codespace, 6, "no fees accrued")
	ErrAlreadyBanned   = errors.Register(codespace, 7, "creator already banned")
	ErrNotBanned       = errors.Register(codespace, 8, "creator not banned")
	ErrInvalidAddress  = errors.Register(codespace, 9, "invalid address")
	ErrTransferFailed  = errors.Register(codespace, 10, "fee transfer failed")
	ErrNegativeFee     = errors.Register(codespace, 12, "negative fee")
	ErrInvalidFeeInput = errors.Register(codespace, 13, "invalid fee input")
)

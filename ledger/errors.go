package ledger

import "cosmossdk.io/errors"

const codespace = "ledger"

var (
	ErrInvalidAmount         = errors.Register(codespace, 2, "amount must be positive")
	ErrInsufficientFunds     = errors.Register(codespace, 3, "insufficient funds")
	ErrInsufficientAllowance = errors.Register(codespace, 4, "insufficient allowance")
	ErrEmptyAccount          = errors.Register(codespace, 5, "account must not be empty")
)

package tokenvalidator

import "cosmossdk.io/errors"

const codespace = "tokenvalidator"

var (
	ErrOnlyOwner     = errors.Register(codespace, 2, "only owner can call this")
	ErrUnknownToken  = errors.Register(codespace, 3, "token not registered")
	ErrTokenDenied   = errors.Register(codespace, 4, "token is deny-listed")
	ErrInvalidToken  = errors.Register(codespace, 5, "invalid token")
	ErrAlreadyDenied = errors.Register(codespace, 6, "token already deny-listed")
)

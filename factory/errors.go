package factory

import "cosmossdk.io/errors"

const codespace = "factory"

var (
	ErrOnlyOwner           = errors.Register(codespace, 2, "only owner can call this")
	ErrEmergencyMode       = errors.Register(codespace, 3, "factory in emergency mode")
	ErrCreatorBanned       = errors.Register(codespace, 4, "creator is banned")
	ErrWaitBetweenContests = errors.Register(codespace, 5, "wait between contests")
	ErrPrizeNotPositive    = errors.Register(codespace, 6, "prize must be positive")
	ErrInvalidDuration     = errors.Register(codespace, 7, "invalid contest duration")
	ErrInvalidToken        = errors.Register(codespace, 8, "token not allowed for prizes")
	ErrInsufficientValue   = errors.Register(codespace, 9, "insufficient native value")
	ErrValueNotNeeded      = errors.Register(codespace, 10, "no native value needed for token contest")
	ErrContestNotFound     = errors.Register(codespace, 11, "contest does not exist")
	ErrPaymentFailed       = errors.Register(codespace, 12, "prize payment failed")
	ErrInvalidCreator      = errors.Register(codespace, 13, "invalid creator address")
	ErrNothingToRecover    = errors.Register(codespace, 14, "nothing to recover")
	ErrInvalidStartTime    = errors.Register(codespace, 15, "start time must be in the future")
)

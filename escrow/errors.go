package escrow

import "cosmossdk.io/errors"

const codespace = "escrow"

var (
	ErrInvalidDistribution = errors.Register(codespace, 2, "invalid prize distribution")
	ErrUnknownTemplate     = errors.Register(codespace, 3, "unknown prize template")
	ErrContestStillActive  = errors.Register(codespace, 4, "contest still active")
	ErrOnlyJuryOrCreator   = errors.Register(codespace, 5, "only jury or creator")
	ErrOnlyCreator         = errors.Register(codespace, 6, "only creator can call this")
	ErrOnlyFactory         = errors.Register(codespace, 7, "only factory can call this")
	ErrMismatchedArrays    = errors.Register(codespace, 8, "mismatched arrays")
	ErrInvalidPlace        = errors.Register(codespace, 9, "invalid place")
	ErrAlreadyFinalized    = errors.Register(codespace, 10, "contest already finalized")
	ErrAlreadyCancelled    = errors.Register(codespace, 11, "contest already cancelled")
	ErrNotFinalized        = errors.Register(codespace, 12, "contest not finalized")
	ErrNotAWinner          = errors.Register(codespace, 13, "not a winner")
	ErrAlreadyClaimed      = errors.Register(codespace, 14, "prize already claimed")
	ErrTransferFailed      = errors.Register(codespace, 15, "prize transfer failed")
	ErrNotStale            = errors.Register(codespace, 16, "contest not stale yet")
)

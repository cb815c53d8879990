package usecase

import "errors"

// Sentinel errors at the service boundary. Handlers translate these with
// errors.Is/As; seat conflicts additionally carry the contested seat via
// *repository.SeatClaimedError.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("reservation not found")
	ErrInvalidState = errors.New("transition not allowed from current status")
	ErrTransient    = errors.New("temporary storage failure")
)

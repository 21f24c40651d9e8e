package apperrors

import "errors"

var (
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrIntentNotFound        = errors.New("payment intent not found")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrDuplicateTicketNumber = errors.New("duplicate ticket number")
	ErrPayloadMismatch       = errors.New("code payload does not match ledger record")
	ErrProviderUnavailable   = errors.New("payment provider unavailable")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInternalServerError   = errors.New("internal server error")
)

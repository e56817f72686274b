package services

import "errors"

// Error taxonomy shared by the service layer. Handlers translate these into
// HTTP status codes: validation/state/stock errors become 400, missing
// records 404, everything else 500.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientStock = errors.New("insufficient stock")
)

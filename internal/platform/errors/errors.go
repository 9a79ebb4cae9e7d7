package apperrors

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrOutsideRoot  = errors.New("path outside data root")
	ErrNoPeakSlot   = errors.New("no peak slot")
)

package models

import "errors"

var (
	// ErrStoreUnavailable wraps every transport or credential failure of the sheet.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrRecordNotFound   = errors.New("record not found")
	ErrColumnNotFound   = errors.New("column not found")
	ErrInvalidDate      = errors.New("invalid date")
)

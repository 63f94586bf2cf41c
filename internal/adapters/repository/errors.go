package repository

import "errors"

// Sentinel kinds for gateway errors.
var (
	ErrBackend     = errors.New("persistence backend failure")
	ErrCircuitOpen = errors.New("persistence circuit open")
	ErrInvalidKey  = errors.New("invalid key")
)

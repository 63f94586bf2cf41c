package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrInvalidUpdate = errors.New("invalid partner update")
)

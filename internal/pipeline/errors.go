package pipeline

import "errors"

// Sentinel errors returned by the import pipeline.
var (
	ErrEmptyImport = errors.New("import contains no partners")
	ErrScoring     = errors.New("scoring failed")
	ErrQueueFull   = errors.New("rescoring queue rejected job")
)

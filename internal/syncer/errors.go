package syncer

import "errors"

// Sentinel errors returned by the scheduler.
var (
	ErrOffline        = errors.New("sync suppressed: offline")
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrClosed         = errors.New("scheduler closed")
)

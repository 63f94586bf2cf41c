package model

import "time"

// ChangeType enumerates journaled mutations.
type ChangeType string

const (
	ChangePartnerAdded   ChangeType = "partner_added"
	ChangePartnerUpdated ChangeType = "partner_updated"
	ChangePartnerDeleted ChangeType = "partner_deleted"
	ChangeBulkImport     ChangeType = "bulk_import"
)

// DataChangeEvent is one journal entry.
type DataChangeEvent struct {
	ID        string         `json:"id"`
	Type      ChangeType     `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
	UserID    string         `json:"userId,omitempty"`
}

// SyncState is the state of the sync scheduler.
type SyncState string

const (
	SyncIdle    SyncState = "idle"
	SyncSyncing SyncState = "syncing"
	SyncError   SyncState = "error"
	SyncOffline SyncState = "offline"
)

// Ordinal maps the state onto a gauge value.
func (s SyncState) Ordinal() float64 {
	switch s {
	case SyncSyncing:
		return 1
	case SyncError:
		return 2
	case SyncOffline:
		return 3
	default:
		return 0
	}
}

// SyncStatus is broadcast to sync subscribers on every change.
type SyncStatus struct {
	Status         SyncState  `json:"status"`
	LastSync       *time.Time `json:"lastSync"`
	PendingChanges int        `json:"pendingChanges"`
	Error          string     `json:"error,omitempty"`
}

// Clone returns a copy that shares no pointers with s.
func (s SyncStatus) Clone() SyncStatus {
	c := s
	if s.LastSync != nil {
		t := *s.LastSync
		c.LastSync = &t
	}
	return c
}

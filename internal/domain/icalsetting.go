package domain

import "time"

// SyncStatus represents the result of the last iCal sync pass for a space
type SyncStatus string

const (
	SyncStatusNever            SyncStatus = "never"
	SyncStatusCompleted        SyncStatus = "completed"
	SyncStatusConflictDetected SyncStatus = "conflict_detected"
	SyncStatusFailed           SyncStatus = "failed"
)

// SpaceIcalSetting per-space external calendar configuration (one-to-one with a space)
type SpaceIcalSetting struct {
	SpaceID        int64
	ImportIcalURLs []string
	ExportIcalURL  *string

	// IsSyncInProgress serializes sync per space: a second sync request
	// observes the flag and no-ops instead of queueing
	IsSyncInProgress bool

	LastSyncAttempt *time.Time
	SyncStatus      SyncStatus
	LastSyncError   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasImports returns true if at least one import URL is configured
func (s *SpaceIcalSetting) HasImports() bool {
	return len(s.ImportIcalURLs) > 0
}

package shared

import (
	"github.com/joe/move-files/internal/activity"
	"github.com/joe/move-files/internal/moveengine"
)

// ============================================================================
// Engine Messages
// Sent by the EventBridge when an engine observer fires
// ============================================================================

// StatusChangedMsg carries a status transition
type StatusChangedMsg struct {
	Status moveengine.SyncStatus
}

// StatsRecordedMsg carries the stats of a run that just finished
type StatsRecordedMsg struct {
	Stats moveengine.SyncStats
}

// ActivityMsg carries the activity log after a change, newest first
type ActivityMsg struct {
	Entries []activity.Entry
}

// ============================================================================
// Command Results
// Returned by the commands the dashboard runs in the background
// ============================================================================

// RunFinishedMsg is sent when a manual run returns. Stats is nil when the
// run was refused or dropped.
type RunFinishedMsg struct {
	Stats *moveengine.SyncStats
}

// MonitorToggledMsg is sent after monitoring was started or stopped
type MonitorToggledMsg struct {
	Monitoring bool
	Err        error
}

// FolderSelectedMsg is sent after a folder was opened
type FolderSelectedMsg struct {
	Role   moveengine.Role
	Folder moveengine.FolderPath
	Err    error
}

// PendingMsg reports what is still waiting in the source folder
type PendingMsg struct {
	Summary moveengine.PendingSummary
	Err     error
}

// IntervalChangedMsg is sent after the polling interval was saved
type IntervalChangedMsg struct {
	Seconds int
	Err     error
}

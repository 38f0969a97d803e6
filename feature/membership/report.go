package membership

import (
	"time"

	"roster-sync/core/reconcile"
)

// Report is the outcome of one run.
type Report struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`
	// StartedAt is when the snapshots started loading (UTC).
	StartedAt time.Time `json:"started_at"`
	// FinishedAt is when reconciliation returned (UTC).
	FinishedAt time.Time `json:"finished_at"`
	// DryRun reports whether operations were only simulated.
	DryRun bool `json:"dry_run"`
	// SourceCount and MirrorCount are the snapshot sizes.
	SourceCount int `json:"source_count"`
	MirrorCount int `json:"mirror_count"`
	// Result holds the warnings and operations.
	Result *reconcile.Result `json:"result"`
	// Error is set when the run aborted. Applied then lists the operations
	// the mailing list accepted before the failure.
	Error   string                `json:"error,omitempty"`
	Applied []reconcile.Operation `json:"applied,omitempty"`
	// Archive is the object name the report was archived under, if any.
	Archive string `json:"archive,omitempty"`
}

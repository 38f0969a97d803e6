// Package membership keeps the mailing list in sync with the roster.
//
// The Service loads both snapshots concurrently, runs the reconcile engine
// against the mailing list and wraps the outcome in a Report. Live runs are
// serialized; plans (dry runs) requested concurrently share a single run.
//
// # Reports
//
// When object storage is configured, every report is archived as JSON under
// "<prefix>/<started at, RFC3339>-<run id>.json" by the ReportArchive. Reports are
// audit output only; no run reads them back.
//
// # Routes
//
//   - GET  /membership/plan: Dry-run report.
//   - POST /membership/sync?confirm=true: Live run.
//   - GET  /membership/drift: Read-only comparison.
//   - GET  /membership/reports: Archived report names, newest first.
//   - GET  /membership/reports/:name: One archived report.
//
// A run rejected by the mailing list answers 502 with the failing operation;
// conflicting records in a snapshot answer 409.
package membership

// Package sqlsource loads the roster from a MySQL or SQLite table through GORM.
//
// Before reading, the configured id, email, tag and metadata columns are checked
// against the table schema so a typo in the mapping fails the run instead of
// silently producing empty fields. Multi-valued tag cells are not supported by
// plain columns; each tag column contributes at most one tag per row.
package sqlsource

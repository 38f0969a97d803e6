// Package utils provides common utility functions for roster-sync.
// It includes loose type conversion for cells decoded from JSON or SQL rows.
package utils

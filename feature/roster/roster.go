package roster

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"roster-sync/core/reconcile"
	"roster-sync/core/utils"
)

// Row is one raw roster row.
type Row struct {
	// ID is the row identifier.
	ID string
	// Cells maps column names to decoded cell values.
	Cells map[string]any
}

// Columns names the columns a row is read from.
type Columns struct {
	Email    string
	Tags     []string
	Metadata []string
	Active   string
}

// All returns every referenced column, without duplicates.
func (c Columns) All() []string {
	seen := make(map[string]struct{})
	var all []string
	add := func(names ...string) {
		for _, n := range names {
			if _, ok := seen[n]; ok || n == "" {
				continue
			}
			seen[n] = struct{}{}
			all = append(all, n)
		}
	}
	add(c.Email)
	add(c.Tags...)
	add(c.Metadata...)
	add(c.Active)
	return all
}

// Source loads raw roster rows.
type Source interface {
	LoadRows(ctx context.Context) ([]Row, error)
}

// ValidationError reports a cell that cannot be mapped.
type ValidationError struct {
	RowID  string
	Column string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %s, column %q: %s", e.RowID, e.Column, e.Reason)
}

// Load reads every row of src and converts it into source records.
func Load(ctx context.Context, src Source, cols Columns) ([]reconcile.SourceRecord, error) {
	rows, err := src.LoadRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster rows: %w", err)
	}
	return ToRecords(rows, cols)
}

// ToRecords converts rows into source records. A row listing several addresses
// yields one record per address; the n-th address (n >= 2) gets the id "<id>-<n>".
// Rows without an address yield nothing; a row with an address but no id is a ValidationError.
func ToRecords(rows []Row, cols Columns) ([]reconcile.SourceRecord, error) {
	var records []reconcile.SourceRecord
	for _, row := range rows {
		if cols.Active != "" && !utils.ToBool(row.Cells[cols.Active]) {
			continue
		}

		tags := rowTags(row, cols.Tags)
		metadata, err := rowMetadata(row, cols.Metadata)
		if err != nil {
			return nil, err
		}

		emails := splitEmails(utils.ToString(row.Cells[cols.Email]))
		if len(emails) > 0 && row.ID == "" {
			return nil, &ValidationError{RowID: row.ID, Column: cols.Email, Reason: "row with an email has no id"}
		}

		for n, email := range emails {
			id := row.ID
			if n > 0 {
				id = fmt.Sprintf("%s-%d", row.ID, n+1)
			}
			records = append(records, reconcile.NewSourceRecord(id, email, tags, metadata))
		}
	}
	return records, nil
}

func splitEmails(cell string) []string {
	var emails []string
	for _, part := range strings.Split(cell, ";") {
		if email := strings.TrimSpace(part); email != "" {
			emails = append(emails, email)
		}
	}
	return emails
}

func rowTags(row Row, columns []string) reconcile.Tags {
	var tags []string
	for _, col := range columns {
		for _, v := range cellValues(row.Cells[col]) {
			tags = append(tags, col+": "+v)
		}
	}
	return reconcile.NewTags(tags...)
}

func rowMetadata(row Row, columns []string) (reconcile.Metadata, error) {
	md := reconcile.Metadata{}
	for _, col := range columns {
		cell := row.Cells[col]
		if _, ok := cell.([]any); ok {
			return nil, &ValidationError{RowID: row.ID, Column: col, Reason: "metadata columns must hold a single value"}
		}
		md[col] = scalar(cell)
	}
	return md, nil
}

// cellValues flattens a cell into its values: multi-select arrays, single-select
// objects and links ({"value": ...}) and plain scalars. Empty values are dropped.
func cellValues(cell any) []string {
	switch v := cell.(type) {
	case nil:
		return nil
	case []any:
		var values []string
		for _, item := range v {
			values = append(values, cellValues(item)...)
		}
		return values
	case []string:
		var values []string
		for _, item := range v {
			if item != "" {
				values = append(values, item)
			}
		}
		return values
	default:
		if s := scalar(v); s != "" {
			return []string{s}
		}
		return nil
	}
}

// scalar renders a single cell value, unwrapping {"value": ...} objects.
func scalar(cell any) string {
	if obj, ok := cell.(map[string]any); ok {
		if v, ok := obj["value"]; ok {
			return scalar(v)
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+utils.ToString(obj[k]))
		}
		return strings.Join(parts, ",")
	}
	return utils.ToString(cell)
}

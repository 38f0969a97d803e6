package reconcile

import (
	"fmt"
	"sort"
)

// Drift is a read-only comparison of the source and mirror snapshots.
type Drift struct {
	// Extra lists identifiers present in the mirror but not in the source.
	Extra []string `json:"extra"`

	// Missing lists identifiers present in the source but not in the mirror.
	Missing []string `json:"missing"`

	// Issues maps identifiers present on both sides to their field differences.
	Issues map[string][]string `json:"issues"`

	// Unlinked lists the emails of mirror records without an identifier.
	Unlinked []string `json:"unlinked"`

	// DuplicateEmails lists source emails shared by several rows.
	DuplicateEmails []string `json:"duplicate_emails"`
}

// InSync reports whether the snapshots match.
func (d *Drift) InSync() bool {
	return len(d.Extra) == 0 && len(d.Missing) == 0 && len(d.Issues) == 0 && len(d.Unlinked) == 0
}

// IssueIDs returns the identifiers with issues, ascending.
func (d *Drift) IssueIDs() []string {
	ids := make([]string, 0, len(d.Issues))
	for id := range d.Issues {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ComputeDrift compares the deduplicated source with the mirror without planning operations.
// Records sharing an identifier are compared through the first one in load order.
func ComputeDrift(source []SourceRecord, mirror []MirrorRecord) (*Drift, error) {
	duplicateEmails, dir, err := Deduplicate(source)
	if err != nil {
		return nil, fmt.Errorf("failed to index source records: %w", err)
	}
	idx, err := newMirrorIndex(mirror)
	if err != nil {
		return nil, fmt.Errorf("failed to index mirror records: %w", err)
	}

	drift := &Drift{
		Extra:           []string{},
		Missing:         []string{},
		Issues:          map[string][]string{},
		Unlinked:        []string{},
		DuplicateEmails: []string{},
	}
	drift.DuplicateEmails = append(drift.DuplicateEmails, duplicateEmails...)

	for _, rec := range idx.Unlinked() {
		drift.Unlinked = append(drift.Unlinked, rec.Email)
	}

	for _, id := range idx.IDs() {
		if _, ok := dir.Get(id); !ok {
			drift.Extra = append(drift.Extra, id)
		}
	}
	sort.Strings(drift.Extra)

	for _, src := range dir.Records() {
		targets := idx.ByID(src.ID)
		if len(targets) == 0 {
			drift.Missing = append(drift.Missing, src.ID)
			continue
		}
		if issues := compareRecords(src, targets[0]); len(issues) > 0 {
			drift.Issues[src.ID] = issues
		}
	}
	sort.Strings(drift.Missing)

	return drift, nil
}

// compareRecords lists the differences between a source record and its mirror record.
func compareRecords(src SourceRecord, rec MirrorRecord) []string {
	var issues []string

	if src.Email != rec.Email {
		issues = append(issues, fmt.Sprintf("Wrong email: %s != %s", src.Email, rec.Email))
	}

	var missingTags, extraTags []string
	for _, t := range src.Tags {
		if !rec.Tags.Contains(t) {
			missingTags = append(missingTags, "Missing tag "+t)
		}
	}
	for _, t := range rec.Tags {
		if !src.Tags.Contains(t) {
			extraTags = append(extraTags, "Extra tag "+t)
		}
	}
	sort.Strings(missingTags)
	sort.Strings(extraTags)
	issues = append(issues, missingTags...)
	issues = append(issues, extraTags...)

	for _, k := range src.Metadata.SortedKeys() {
		if v, ok := rec.Metadata[k]; !ok || v != src.Metadata[k] {
			issues = append(issues, fmt.Sprintf("Missing metadata %q = %q", k, src.Metadata[k]))
		}
	}
	for _, k := range rec.Metadata.SortedKeys() {
		if v, ok := src.Metadata[k]; !ok || v != rec.Metadata[k] {
			issues = append(issues, fmt.Sprintf("Extra metadata %q = %q", k, rec.Metadata[k]))
		}
	}

	return issues
}

package reconcile

import "fmt"

// Deduplicate collapses source records sharing one email into the first record
// in load order. Records without an email are dropped before grouping.
//
// duplicateEmails lists every collapsed email once, in order of first appearance.
// A record with an email but no identifier fails with ErrMissingID.
// Surviving records that still share an identifier are reported as a DuplicateKeyError.
func Deduplicate(records []SourceRecord) (duplicateEmails []string, dir *SourceDirectory, err error) {
	subscribers := make([]SourceRecord, 0, len(records))
	for _, r := range records {
		if r.Email == "" {
			continue
		}
		// An empty id would collide with unlinked mirror records
		if r.ID == "" {
			return nil, nil, fmt.Errorf("%w: email=%q", ErrMissingID, r.Email)
		}
		subscribers = append(subscribers, r)
	}

	groups := Group(subscribers, func(r SourceRecord) string { return r.Email })

	kept := make([]SourceRecord, 0, len(groups))
	seen := make(map[string]struct{}, len(groups))
	for _, r := range subscribers {
		if _, ok := seen[r.Email]; ok {
			continue
		}
		seen[r.Email] = struct{}{}

		group := groups[r.Email]
		if len(group) > 1 {
			duplicateEmails = append(duplicateEmails, r.Email)
		}
		kept = append(kept, group[0])
	}

	dir, err = NewSourceDirectory(kept)
	if err != nil {
		return nil, nil, err
	}
	return duplicateEmails, dir, nil
}

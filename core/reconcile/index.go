package reconcile

// Group buckets values by key. Each bucket keeps the input order.
func Group[K comparable, V any](values []V, key func(V) K) map[K][]V {
	groups := make(map[K][]V)
	for _, v := range values {
		k := key(v)
		groups[k] = append(groups[k], v)
	}
	return groups
}

// UniqueGroup indexes values by a key expected to be unique.
// It fails with a DuplicateKeyError naming the first colliding key in input order.
func UniqueGroup[V any](values []V, key func(V) string) (map[string]V, error) {
	groups := Group(values, key)

	result := make(map[string]V, len(groups))
	for _, v := range values {
		k := key(v)
		if group := groups[k]; len(group) != 1 {
			records := make([]any, 0, len(group))
			for _, r := range group {
				records = append(records, r)
			}
			return nil, &DuplicateKeyError{Key: k, Records: records}
		}
		result[k] = v
	}
	return result, nil
}

// SourceDirectory is the deduplicated source roster indexed by identifier and email.
type SourceDirectory struct {
	records []SourceRecord
	byID    map[string]SourceRecord
	byEmail map[string]SourceRecord
}

// NewSourceDirectory indexes records that already have unique identifiers and emails.
func NewSourceDirectory(records []SourceRecord) (*SourceDirectory, error) {
	byID, err := UniqueGroup(records, func(r SourceRecord) string { return r.ID })
	if err != nil {
		return nil, err
	}
	byEmail, err := UniqueGroup(records, func(r SourceRecord) string { return r.Email })
	if err != nil {
		return nil, err
	}
	return &SourceDirectory{records: records, byID: byID, byEmail: byEmail}, nil
}

// Get returns the record with the given identifier.
func (d *SourceDirectory) Get(id string) (SourceRecord, bool) {
	r, ok := d.byID[id]
	return r, ok
}

// GetByEmail returns the record with the given email.
func (d *SourceDirectory) GetByEmail(email string) (SourceRecord, bool) {
	r, ok := d.byEmail[email]
	return r, ok
}

// Records returns the records in load order.
func (d *SourceDirectory) Records() []SourceRecord {
	return d.records
}

// Len returns the number of records.
func (d *SourceDirectory) Len() int {
	return len(d.records)
}

// mirrorIndex is the working copy of the mirror used during one run.
// records keeps load order; replacing a record keeps its position.
type mirrorIndex struct {
	records []MirrorRecord
	byID    map[string][]MirrorRecord
	byEmail map[string]MirrorRecord
}

func newMirrorIndex(records []MirrorRecord) (*mirrorIndex, error) {
	idx := &mirrorIndex{records: append([]MirrorRecord(nil), records...)}
	if err := idx.rebuild(); err != nil {
		return nil, err
	}
	return idx, nil
}

// rebuild recomputes both lookups from records.
func (m *mirrorIndex) rebuild() error {
	byEmail, err := UniqueGroup(m.records, func(r MirrorRecord) string { return r.Email })
	if err != nil {
		return err
	}
	m.byEmail = byEmail
	m.byID = Group(m.records, func(r MirrorRecord) string { return r.ID })
	return nil
}

// ByID returns every record carrying the identifier, in load order.
func (m *mirrorIndex) ByID(id string) []MirrorRecord {
	return m.byID[id]
}

// ByEmail returns the record stored at the email.
func (m *mirrorIndex) ByEmail(email string) (MirrorRecord, bool) {
	r, ok := m.byEmail[email]
	return r, ok
}

// Unlinked returns records without an identifier, in load order.
func (m *mirrorIndex) Unlinked() []MirrorRecord {
	return m.byID[""]
}

// IDs returns the distinct non-empty identifiers present.
func (m *mirrorIndex) IDs() []string {
	ids := make([]string, 0, len(m.byID))
	for id := range m.byID {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Records returns the current records in load order.
func (m *mirrorIndex) Records() []MirrorRecord {
	return m.records
}

// with returns a new index holding the state after op, leaving m untouched.
func (m *mirrorIndex) with(op Operation) (*mirrorIndex, error) {
	next := make([]MirrorRecord, 0, len(m.records)+1)

	switch op := op.(type) {
	case AddSubscriber:
		next = append(next, m.records...)
		next = append(next, NewMirrorRecord(op.Email, op.Tags, op.Metadata))

	case EditSubscriber:
		found := false
		for _, r := range m.records {
			if r.Email != op.OldEmail {
				next = append(next, r)
				continue
			}
			found = true
			next = append(next, applyEdit(r, op))
		}
		if !found {
			return nil, ErrRecordNotFound
		}

	case DeleteSubscriber:
		found := false
		for _, r := range m.records {
			if r.Email == op.Email {
				found = true
				continue
			}
			next = append(next, r)
		}
		if !found {
			return nil, ErrRecordNotFound
		}
	}

	idx := &mirrorIndex{records: next}
	if err := idx.rebuild(); err != nil {
		return nil, err
	}
	return idx, nil
}

// applyEdit returns a new record with the edit's specified fields replaced.
func applyEdit(r MirrorRecord, op EditSubscriber) MirrorRecord {
	email, tags, metadata := r.Email, r.Tags, r.Metadata
	if op.NewEmail != nil {
		email = *op.NewEmail
	}
	if op.Tags != nil {
		tags = *op.Tags
	}
	if op.Metadata != nil {
		metadata = *op.Metadata
	}
	return NewMirrorRecord(email, tags, metadata)
}

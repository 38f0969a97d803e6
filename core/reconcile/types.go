package reconcile

import (
	"maps"
	"slices"
	"sort"
)

// IDKey is the metadata key that links a mirror record back to its source row.
const IDKey = "id"

// Tags is a set of tag strings, kept sorted and free of duplicates.
type Tags []string

// NewTags builds a normalized tag set from the given values.
func NewTags(values ...string) Tags {
	tags := make(Tags, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		tags = append(tags, v)
	}
	sort.Strings(tags)
	return tags
}

// Equal reports whether both sets hold the same tags.
func (t Tags) Equal(other Tags) bool {
	return slices.Equal(NewTags(t...), NewTags(other...))
}

// Contains reports whether the tag is in the set.
func (t Tags) Contains(tag string) bool {
	return slices.Contains(t, tag)
}

// Metadata is a flat string-to-string mapping carried by every record.
type Metadata map[string]string

// Equal reports whether both mappings hold the same entries.
// A nil mapping equals an empty one.
func (m Metadata) Equal(other Metadata) bool {
	return maps.Equal(m, other)
}

// Clone returns an independent copy of the mapping.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return Metadata{}
	}
	return maps.Clone(m)
}

// SortedKeys returns the mapping keys in ascending order.
func (m Metadata) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SourceRecord is one entry of the authoritative roster.
// A roster row holding several addresses yields one record per address.
type SourceRecord struct {
	// ID is the identifier unique within the source after deduplication.
	ID string `json:"id"`

	// Email is the subscriber address. Records with an empty email are not subscribers.
	Email string `json:"email"`

	// Tags is the desired tag set.
	Tags Tags `json:"tags"`

	// Metadata is the desired metadata. It always carries IDKey mirroring ID.
	Metadata Metadata `json:"metadata"`
}

// NewSourceRecord builds a source record, stamping the identifier into its metadata.
func NewSourceRecord(id, email string, tags Tags, metadata Metadata) SourceRecord {
	md := metadata.Clone()
	md[IDKey] = id
	return SourceRecord{
		ID:       id,
		Email:    email,
		Tags:     NewTags(tags...),
		Metadata: md,
	}
}

// MirrorRecord is one subscriber of the mirrored list.
type MirrorRecord struct {
	// ID is taken from Metadata[IDKey]. Empty means the subscriber was created
	// directly in the mirror rather than by a sync.
	ID string `json:"id,omitempty"`

	// Email is the mirror's primary key.
	Email string `json:"email"`

	// Tags is the current tag set.
	Tags Tags `json:"tags"`

	// Metadata is the current metadata.
	Metadata Metadata `json:"metadata"`
}

// NewMirrorRecord builds a mirror record and derives its identifier from metadata.
func NewMirrorRecord(email string, tags Tags, metadata Metadata) MirrorRecord {
	md := metadata.Clone()
	return MirrorRecord{
		ID:       md[IDKey],
		Email:    email,
		Tags:     NewTags(tags...),
		Metadata: md,
	}
}

// Linked reports whether the record carries an identifier.
func (r MirrorRecord) Linked() bool {
	return r.ID != ""
}

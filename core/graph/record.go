package graph

// Connector-assigned metadata fields injected into fetched records and
// stripped again before anything is written upstream. The pipeline owns
// the underscore prefix; the Graph schema never uses it.
const (
	// MetadataPrefix marks fields owned by the connector, not the Graph API.
	MetadataPrefix = "_"
	// FieldID carries the record's upstream primary key.
	FieldID = "_id"
	// FieldUpdated carries the delta cursor active when the record's page
	// was fetched.
	FieldUpdated = "_updated"
	// FieldDeleted marks a record for deactivation instead of update.
	FieldDeleted = "_deleted"
)

// removedAnnotation is set by the Graph delta feed on deleted objects.
const removedAnnotation = "@removed"

// Record is one upstream entity. The field schema belongs to the Graph API
// and is opaque to the connector apart from the id fields and the injected
// metadata above.
type Record map[string]any

// ID returns the record's primary key, or the empty string.
func (r Record) ID() string {
	v, _ := r["id"].(string)
	return v
}

// Deleted reports whether the record carries the soft-delete marker.
func (r Record) Deleted() bool {
	v, _ := r[FieldDeleted].(bool)
	return v
}

// tag injects the connector metadata into a freshly fetched record:
// the identity copied from the upstream primary key, the active delta
// cursor, and the soft-delete marker for @removed delta entries.
func (r Record) tag(delta string) {
	if id := r.ID(); id != "" {
		r[FieldID] = id
	}
	if delta != "" {
		r[FieldUpdated] = delta
	}
	if _, removed := r[removedAnnotation]; removed {
		r[FieldDeleted] = true
	}
}

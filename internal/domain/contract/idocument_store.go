package contract

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// MaxInValues is the store's published cardinality cap for a single
// membership (IN) filter. Lookups over more ids must be chunked.
const MaxInValues = 10

// FilterOp is a comparison operator usable in a Filter.
type FilterOp string

const (
	OpEqual          FilterOp = "=="
	OpIn             FilterOp = "in"
	OpGreaterOrEqual FilterOp = ">="
	OpLessThan       FilterOp = "<"
)

// Filter is a single field condition. Field may be a dotted path into an
// embedded document.
type Filter struct {
	Field string
	Op    FilterOp
	Value interface{}
}

// QuerySpec describes a query against one collection.
type QuerySpec struct {
	Filters []Filter
	OrderBy string
	Limit   int64
}

// serverTimestamp, arrayUnion and arrayRemove are sentinel values recognized
// inside an UpdateFields field map. Implementations translate them into the
// store's native atomic operators.
type serverTimestamp struct{}

type arrayUnion struct{ Values []interface{} }

type arrayRemove struct{ Values []interface{} }

// ServerTimestamp returns a sentinel that the store replaces with a
// server-assigned time at write.
func ServerTimestamp() interface{} { return serverTimestamp{} }

// ArrayUnion returns a sentinel that atomically adds values to an array
// field, skipping values already present.
func ArrayUnion(values ...interface{}) interface{} { return arrayUnion{Values: values} }

// ArrayRemove returns a sentinel that atomically removes values from an
// array field.
func ArrayRemove(values ...interface{}) interface{} { return arrayRemove{Values: values} }

// IsServerTimestamp reports whether v is the ServerTimestamp sentinel.
func IsServerTimestamp(v interface{}) bool { _, ok := v.(serverTimestamp); return ok }

// AsArrayUnion returns the values of an ArrayUnion sentinel.
func AsArrayUnion(v interface{}) ([]interface{}, bool) {
	u, ok := v.(arrayUnion)
	if !ok {
		return nil, false
	}
	return u.Values, true
}

// AsArrayRemove returns the values of an ArrayRemove sentinel.
func AsArrayRemove(v interface{}) ([]interface{}, bool) {
	r, ok := v.(arrayRemove)
	if !ok {
		return nil, false
	}
	return r.Values, true
}

// Snapshot is one observed state of a document. Exists is false when the
// document is absent (missing or deleted). Err is set at most once, as the
// final snapshot before the channel closes.
type Snapshot struct {
	ID     string
	Exists bool
	Raw    bson.Raw
	Err    error
}

// Decode unmarshals the snapshot document into dest.
func (s Snapshot) Decode(dest interface{}) error {
	return bson.Unmarshal(s.Raw, dest)
}

// IWriteBatch stages mutations that commit atomically: either every staged
// operation is applied or none is.
type IWriteBatch interface {
	Set(collection, id string, doc interface{})
	UpdateFields(collection, id string, fields map[string]interface{})
	Delete(collection, id string)
	Commit(ctx context.Context) error
}

// IDocumentStore is the narrow capability surface this service needs from a
// document database. Repositories are written against it so they can be
// exercised with the in-memory implementation.
type IDocumentStore interface {
	// NewID allocates a new document id.
	NewID() string
	// Get reads the document into dest. A missing document returns
	// (false, nil), not an error.
	Get(ctx context.Context, collection, id string, dest interface{}) (bool, error)
	// Insert writes a full document at id and fails if one already exists.
	Insert(ctx context.Context, collection, id string, doc interface{}) error
	// Merge writes doc at id with merge semantics: fields present in doc are
	// overwritten, missing fields are preserved. Creates the document if
	// absent.
	Merge(ctx context.Context, collection, id string, doc interface{}) error
	// UpdateFields writes the named fields of an existing document. Values
	// may be ServerTimestamp, ArrayUnion or ArrayRemove sentinels. Field
	// names may be dotted paths.
	UpdateFields(ctx context.Context, collection, id string, fields map[string]interface{}) error
	// Delete removes the document. Deleting an absent document is not an
	// error.
	Delete(ctx context.Context, collection, id string) error
	// Find decodes all matching documents into results, which must be a
	// pointer to a slice.
	Find(ctx context.Context, collection string, spec QuerySpec, results interface{}) error
	// Count returns the number of matching documents.
	Count(ctx context.Context, collection string, spec QuerySpec) (int64, error)
	// Batch starts an atomic write batch.
	Batch() IWriteBatch
	// Watch streams snapshots of one document, starting with its current
	// state. The channel closes when ctx is done or the stream fails.
	Watch(ctx context.Context, collection, id string) (<-chan Snapshot, error)
}

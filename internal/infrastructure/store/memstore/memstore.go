package memstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mikiasgoitom/Parley/internal/domain/contract"
)

var (
	ErrDuplicateID = errors.New("memstore: document already exists")
	ErrNotFound    = errors.New("memstore: document not found")
)

// Store is an in-memory contract.IDocumentStore. It keeps documents as bson
// maps so struct tags behave exactly as they do against the real store, which
// makes it a faithful stand-in for repository tests and local development.
type Store struct {
	mu            sync.Mutex
	collections   map[string]map[string]bson.M
	watchers      map[string]map[int]chan contract.Snapshot
	nextWatcherID int
	commitErr     error
}

// New creates an empty store.
func New() *Store {
	return &Store{
		collections: make(map[string]map[string]bson.M),
		watchers:    make(map[string]map[int]chan contract.Snapshot),
	}
}

var _ contract.IDocumentStore = (*Store)(nil)

// FailNextCommit makes the next batch Commit return err without applying any
// staged operation. Used to exercise batch atomicity in tests.
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitErr = err
}

// NewID allocates a new document id.
func (s *Store) NewID() string {
	return uuid.New().String()
}

func (s *Store) collection(name string) map[string]bson.M {
	col, ok := s.collections[name]
	if !ok {
		col = make(map[string]bson.M)
		s.collections[name] = col
	}
	return col
}

// Get reads one document by id. A missing document is (false, nil).
func (s *Store) Get(ctx context.Context, collection, id string, dest interface{}) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	doc, ok := s.collection(collection)[id]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return false, err
	}
	if err := bson.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Insert writes a full document at id, failing when one already exists.
func (s *Store) Insert(ctx context.Context, collection, id string, doc interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := toDocument(doc)
	if err != nil {
		return err
	}
	m["_id"] = id

	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collection(collection)
	if _, exists := col[id]; exists {
		return ErrDuplicateID
	}
	col[id] = m
	s.notifyLocked(collection, id, m)
	return nil
}

// Merge upserts doc at id, overwriting only the fields doc carries.
func (s *Store) Merge(ctx context.Context, collection, id string, doc interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := toDocument(doc)
	if err != nil {
		return err
	}
	delete(m, "_id")

	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collection(collection)
	merged := bson.M{"_id": id}
	if existing, ok := col[id]; ok {
		merged = clone(existing)
	}
	for field, value := range m {
		merged[field] = value
	}
	col[id] = merged
	s.notifyLocked(collection, id, merged)
	return nil
}

// UpdateFields partially updates an existing document.
func (s *Store) UpdateFields(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collection(collection)
	existing, ok := col[id]
	if !ok {
		return ErrNotFound
	}
	updated := clone(existing)
	if err := applyFields(updated, fields); err != nil {
		return err
	}
	col[id] = updated
	s.notifyLocked(collection, id, updated)
	return nil
}

// Delete removes one document. Deleting an absent document is a no-op.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collection(collection)
	if _, ok := col[id]; !ok {
		return nil
	}
	delete(col, id)
	s.notifyLocked(collection, id, nil)
	return nil
}

// Find decodes all matching documents into results, honoring order and limit.
func (s *Store) Find(ctx context.Context, collection string, spec contract.QuerySpec, results interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	var matched []bson.M
	for _, doc := range s.collection(collection) {
		if matches(doc, spec.Filters) {
			matched = append(matched, doc)
		}
	}
	s.mu.Unlock()

	if spec.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			a, _ := getPath(matched[i], spec.OrderBy)
			b, _ := getPath(matched[j], spec.OrderBy)
			cmp, ok := compareValues(a, b)
			return ok && cmp < 0
		})
	}
	if spec.Limit > 0 && int64(len(matched)) > spec.Limit {
		matched = matched[:spec.Limit]
	}
	return decodeAll(matched, results)
}

// Count returns the number of matching documents.
func (s *Store) Count(ctx context.Context, collection string, spec contract.QuerySpec) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, doc := range s.collection(collection) {
		if matches(doc, spec.Filters) {
			n++
			if spec.Limit > 0 && n >= spec.Limit {
				break
			}
		}
	}
	return n, nil
}

// Watch streams snapshots of one document, starting with its current state.
func (s *Store) Watch(ctx context.Context, collection, id string) (<-chan contract.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := make(chan contract.Snapshot, 16)
	key := watchKey(collection, id)

	s.mu.Lock()
	subs, ok := s.watchers[key]
	if !ok {
		subs = make(map[int]chan contract.Snapshot)
		s.watchers[key] = subs
	}
	watcherID := s.nextWatcherID
	s.nextWatcherID++
	subs[watcherID] = ch

	doc, exists := s.collection(collection)[id]
	ch <- snapshotOf(id, doc, exists)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if subs, ok := s.watchers[key]; ok {
			delete(subs, watcherID)
		}
		close(ch)
		s.mu.Unlock()
	}()
	return ch, nil
}

// notifyLocked fans a new document state out to watchers. Callers hold s.mu.
// A watcher that cannot keep up with its buffer misses intermediate states.
func (s *Store) notifyLocked(collection, id string, doc bson.M) {
	subs, ok := s.watchers[watchKey(collection, id)]
	if !ok {
		return
	}
	snap := snapshotOf(id, doc, doc != nil)
	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func watchKey(collection, id string) string {
	return collection + "\x00" + id
}

func snapshotOf(id string, doc bson.M, exists bool) contract.Snapshot {
	snap := contract.Snapshot{ID: id, Exists: exists}
	if exists {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return contract.Snapshot{ID: id, Err: err}
		}
		snap.Raw = raw
	}
	return snap
}

// Batch starts an atomic write batch.
func (s *Store) Batch() contract.IWriteBatch {
	return &writeBatch{store: s}
}

type stagedOp struct {
	kind   string // "set", "update", "delete"
	col    string
	id     string
	doc    interface{}
	fields map[string]interface{}
}

type writeBatch struct {
	store *Store
	ops   []stagedOp
}

func (b *writeBatch) Set(collection, id string, doc interface{}) {
	b.ops = append(b.ops, stagedOp{kind: "set", col: collection, id: id, doc: doc})
}

func (b *writeBatch) UpdateFields(collection, id string, fields map[string]interface{}) {
	b.ops = append(b.ops, stagedOp{kind: "update", col: collection, id: id, fields: fields})
}

func (b *writeBatch) Delete(collection, id string) {
	b.ops = append(b.ops, stagedOp{kind: "delete", col: collection, id: id})
}

// Commit applies every staged operation atomically: the batch is evaluated on
// a working view first and only written back when every operation succeeds.
func (b *writeBatch) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.commitErr != nil {
		err := s.commitErr
		s.commitErr = nil
		return err
	}

	// Working view: staged states keyed by collection/id. A nil entry marks a
	// staged delete.
	view := make(map[string]bson.M)
	staged := make(map[string]bool)
	lookup := func(col, id string) (bson.M, bool) {
		key := watchKey(col, id)
		if staged[key] {
			doc := view[key]
			return doc, doc != nil
		}
		doc, ok := s.collection(col)[id]
		return doc, ok
	}
	stage := func(col, id string, doc bson.M) {
		key := watchKey(col, id)
		view[key] = doc
		staged[key] = true
	}

	type change struct {
		col, id string
		doc     bson.M
	}
	var order []change

	for _, op := range b.ops {
		switch op.kind {
		case "set":
			m, err := toDocument(op.doc)
			if err != nil {
				return err
			}
			m["_id"] = op.id
			stage(op.col, op.id, m)
			order = append(order, change{op.col, op.id, m})
		case "update":
			existing, ok := lookup(op.col, op.id)
			if !ok {
				return fmt.Errorf("%w: %s/%s", ErrNotFound, op.col, op.id)
			}
			updated := clone(existing)
			if err := applyFields(updated, op.fields); err != nil {
				return err
			}
			stage(op.col, op.id, updated)
			order = append(order, change{op.col, op.id, updated})
		case "delete":
			stage(op.col, op.id, nil)
			order = append(order, change{op.col, op.id, nil})
		}
	}

	for _, c := range order {
		col := s.collection(c.col)
		if c.doc == nil {
			delete(col, c.id)
		} else {
			col[c.id] = c.doc
		}
		s.notifyLocked(c.col, c.id, c.doc)
	}
	return nil
}

// toDocument converts a value into a bson map.
func toDocument(doc interface{}) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func clone(doc bson.M) bson.M {
	copied, err := toDocument(doc)
	if err != nil {
		// A stored document always round-trips; reaching this means the store
		// itself put something unmarshalable in, which is a bug.
		panic(err)
	}
	return copied
}

// normalize round-trips a value through bson so comparisons see the same
// representation the storage layer keeps (e.g. typed strings become string,
// times become primitive.DateTime).
func normalize(value interface{}) interface{} {
	raw, err := bson.Marshal(bson.M{"v": value})
	if err != nil {
		return value
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return value
	}
	return m["v"]
}

// applyFields mutates doc in place, resolving dotted paths and sentinels.
func applyFields(doc bson.M, fields map[string]interface{}) error {
	for field, value := range fields {
		switch {
		case contract.IsServerTimestamp(value):
			setPath(doc, field, primitive.NewDateTimeFromTime(time.Now().UTC()))
			continue
		}
		if values, ok := contract.AsArrayUnion(value); ok {
			arr := currentArray(doc, field)
			for _, v := range values {
				nv := normalize(v)
				if !arrayContains(arr, nv) {
					arr = append(arr, nv)
				}
			}
			setPath(doc, field, arr)
			continue
		}
		if values, ok := contract.AsArrayRemove(value); ok {
			arr := currentArray(doc, field)
			kept := make(primitive.A, 0, len(arr))
			for _, existing := range arr {
				removed := false
				for _, v := range values {
					if reflect.DeepEqual(existing, normalize(v)) {
						removed = true
						break
					}
				}
				if !removed {
					kept = append(kept, existing)
				}
			}
			setPath(doc, field, kept)
			continue
		}
		setPath(doc, field, normalize(value))
	}
	return nil
}

func currentArray(doc bson.M, field string) primitive.A {
	value, ok := getPath(doc, field)
	if !ok {
		return primitive.A{}
	}
	arr, ok := value.(primitive.A)
	if !ok {
		return primitive.A{}
	}
	return arr
}

func arrayContains(arr primitive.A, value interface{}) bool {
	for _, existing := range arr {
		if reflect.DeepEqual(existing, value) {
			return true
		}
	}
	return false
}

// getPath resolves a dotted field path inside a document.
func getPath(doc bson.M, path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	current := interface{}(doc)
	for _, part := range parts {
		m, ok := current.(bson.M)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// setPath writes a dotted field path, creating intermediate documents.
func setPath(doc bson.M, path string, value interface{}) {
	parts := strings.Split(path, ".")
	current := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(bson.M)
		if !ok {
			next = bson.M{}
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

func matches(doc bson.M, filters []contract.Filter) bool {
	for _, f := range filters {
		value, ok := getPath(doc, f.Field)
		switch f.Op {
		case contract.OpEqual:
			if !ok || !reflect.DeepEqual(value, normalize(f.Value)) {
				return false
			}
		case contract.OpIn:
			if !ok {
				return false
			}
			candidates, isArr := normalize(f.Value).(primitive.A)
			if !isArr || !arrayContains(candidates, value) {
				return false
			}
		case contract.OpGreaterOrEqual:
			cmp, cmpOK := compareValues(value, normalize(f.Value))
			if !ok || !cmpOK || cmp < 0 {
				return false
			}
		case contract.OpLessThan:
			cmp, cmpOK := compareValues(value, normalize(f.Value))
			if !ok || !cmpOK || cmp >= 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compareValues orders two bson-normalized scalars of the same kind.
func compareValues(a, b interface{}) (int, bool) {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case primitive.DateTime:
		bv, ok := b.(primitive.DateTime)
		if !ok {
			return 0, false
		}
		return compareInt64(int64(av), int64(bv)), true
	case int32:
		if bv, ok := b.(int32); ok {
			return compareInt64(int64(av), int64(bv)), true
		}
		return 0, false
	case int64:
		if bv, ok := b.(int64); ok {
			return compareInt64(av, bv), true
		}
		return 0, false
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// decodeAll unmarshals matched documents into results, a pointer to a slice
// of structs or struct pointers.
func decodeAll(docs []bson.M, results interface{}) error {
	v := reflect.ValueOf(results)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Slice {
		return errors.New("memstore: results must be a pointer to a slice")
	}
	slice := v.Elem()
	elemType := slice.Type().Elem()
	isPtr := elemType.Kind() == reflect.Ptr
	baseType := elemType
	if isPtr {
		baseType = elemType.Elem()
	}

	out := reflect.MakeSlice(slice.Type(), 0, len(docs))
	for _, doc := range docs {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return err
		}
		target := reflect.New(baseType)
		if err := bson.Unmarshal(raw, target.Interface()); err != nil {
			return err
		}
		if isPtr {
			out = reflect.Append(out, target)
		} else {
			out = reflect.Append(out, target.Elem())
		}
	}
	slice.Set(out)
	return nil
}

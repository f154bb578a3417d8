package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mikiasgoitom/Parley/internal/domain/contract"
)

// ErrNotFound is returned by UpdateFields when the target document is missing.
var ErrNotFound = errors.New("mongostore: document not found")

// Store implements contract.IDocumentStore on a MongoDB database.
//
// Batch commits run inside a transaction, so the deployment must be a replica
// set (or a sharded cluster).
type Store struct {
	db *mongo.Database
}

// New wraps a database handle.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

var _ contract.IDocumentStore = (*Store)(nil)

// NewID allocates a new document id.
func (s *Store) NewID() string {
	return primitive.NewObjectID().Hex()
}

// Get reads one document by id. A missing document is (false, nil).
func (s *Store) Get(ctx context.Context, collection, id string, dest interface{}) (bool, error) {
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(dest)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert writes a full document at id, failing on a duplicate key.
func (s *Store) Insert(ctx context.Context, collection, id string, doc interface{}) error {
	m, err := toDocument(doc)
	if err != nil {
		return err
	}
	m["_id"] = id
	_, err = s.db.Collection(collection).InsertOne(ctx, m)
	return err
}

// Merge upserts doc at id with merge semantics: only the fields doc carries
// are written.
func (s *Store) Merge(ctx context.Context, collection, id string, doc interface{}) error {
	m, err := toDocument(doc)
	if err != nil {
		return err
	}
	delete(m, "_id")
	_, err = s.db.Collection(collection).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": m},
		options.Update().SetUpsert(true),
	)
	return err
}

// UpdateFields partially updates an existing document, translating sentinel
// values into their native operators.
func (s *Store) UpdateFields(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	update := buildUpdate(fields)
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one document. Deleting an absent document is a no-op.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Find decodes all matching documents into results.
func (s *Store) Find(ctx context.Context, collection string, spec contract.QuerySpec, results interface{}) error {
	opts := options.Find()
	if spec.OrderBy != "" {
		opts.SetSort(bson.D{{Key: spec.OrderBy, Value: 1}})
	}
	if spec.Limit > 0 {
		opts.SetLimit(spec.Limit)
	}
	cursor, err := s.db.Collection(collection).Find(ctx, filterToBSON(spec.Filters), opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, results)
}

// Count returns the number of matching documents.
func (s *Store) Count(ctx context.Context, collection string, spec contract.QuerySpec) (int64, error) {
	opts := options.Count()
	if spec.Limit > 0 {
		opts.SetLimit(spec.Limit)
	}
	return s.db.Collection(collection).CountDocuments(ctx, filterToBSON(spec.Filters), opts)
}

// Batch starts an atomic write batch backed by a transaction.
func (s *Store) Batch() contract.IWriteBatch {
	return &writeBatch{store: s}
}

type batchOp struct {
	apply func(ctx context.Context) error
}

type writeBatch struct {
	store *Store
	ops   []batchOp
}

func (b *writeBatch) Set(collection, id string, doc interface{}) {
	b.ops = append(b.ops, batchOp{apply: func(ctx context.Context) error {
		m, err := toDocument(doc)
		if err != nil {
			return err
		}
		m["_id"] = id
		_, err = b.store.db.Collection(collection).ReplaceOne(
			ctx, bson.M{"_id": id}, m, options.Replace().SetUpsert(true))
		return err
	}})
}

func (b *writeBatch) UpdateFields(collection, id string, fields map[string]interface{}) {
	update := buildUpdate(fields)
	b.ops = append(b.ops, batchOp{apply: func(ctx context.Context) error {
		res, err := b.store.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, update)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}
		return nil
	}})
}

func (b *writeBatch) Delete(collection, id string) {
	b.ops = append(b.ops, batchOp{apply: func(ctx context.Context) error {
		_, err := b.store.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
		return err
	}})
}

// Commit applies every staged operation inside one transaction.
func (b *writeBatch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	session, err := b.store.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		for _, op := range b.ops {
			if err := op.apply(sessCtx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// Watch streams snapshots of a single document via a change stream. The
// current state is emitted first, then every subsequent change; a delete
// emits an absent snapshot.
func (s *Store) Watch(ctx context.Context, collection, id string) (<-chan contract.Snapshot, error) {
	coll := s.db.Collection(collection)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: id}}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := coll.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, err
	}

	ch := make(chan contract.Snapshot, 1)
	go func() {
		defer close(ch)
		defer stream.Close(context.Background())

		raw, err := coll.FindOne(ctx, bson.M{"_id": id}).Raw()
		switch {
		case err == mongo.ErrNoDocuments:
			if !send(ctx, ch, contract.Snapshot{ID: id}) {
				return
			}
		case err != nil:
			send(ctx, ch, contract.Snapshot{ID: id, Err: err})
			return
		default:
			if !send(ctx, ch, contract.Snapshot{ID: id, Exists: true, Raw: raw}) {
				return
			}
		}

		for stream.Next(ctx) {
			var ev struct {
				OperationType string   `bson:"operationType"`
				FullDocument  bson.Raw `bson:"fullDocument"`
			}
			if err := stream.Decode(&ev); err != nil {
				send(ctx, ch, contract.Snapshot{ID: id, Err: err})
				return
			}
			switch ev.OperationType {
			case "delete":
				if !send(ctx, ch, contract.Snapshot{ID: id}) {
					return
				}
			default:
				if ev.FullDocument == nil {
					continue
				}
				if !send(ctx, ch, contract.Snapshot{ID: id, Exists: true, Raw: ev.FullDocument}) {
					return
				}
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			send(ctx, ch, contract.Snapshot{ID: id, Err: err})
		}
	}()
	return ch, nil
}

func send(ctx context.Context, ch chan<- contract.Snapshot, snap contract.Snapshot) bool {
	select {
	case ch <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}

// toDocument converts a struct into a bson map so the store can control the
// _id field explicitly.
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

// buildUpdate splits a field map into the native update operators, resolving
// the sentinel values.
func buildUpdate(fields map[string]interface{}) bson.M {
	set := bson.M{}
	currentDate := bson.M{}
	addToSet := bson.M{}
	pull := bson.M{}

	for field, value := range fields {
		switch {
		case contract.IsServerTimestamp(value):
			currentDate[field] = true
		default:
			if values, ok := contract.AsArrayUnion(value); ok {
				addToSet[field] = bson.M{"$each": values}
				continue
			}
			if values, ok := contract.AsArrayRemove(value); ok {
				pull[field] = bson.M{"$in": values}
				continue
			}
			set[field] = value
		}
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(currentDate) > 0 {
		update["$currentDate"] = currentDate
	}
	if len(addToSet) > 0 {
		update["$addToSet"] = addToSet
	}
	if len(pull) > 0 {
		update["$pull"] = pull
	}
	return update
}

// filterToBSON translates QuerySpec filters into a bson filter document.
// Range operators on the same field are merged so prefix queries work.
func filterToBSON(filters []contract.Filter) bson.M {
	m := bson.M{}
	for _, f := range filters {
		switch f.Op {
		case contract.OpEqual:
			m[f.Field] = f.Value
		case contract.OpIn:
			m[f.Field] = bson.M{"$in": f.Value}
		case contract.OpGreaterOrEqual:
			mergeRange(m, f.Field, "$gte", f.Value)
		case contract.OpLessThan:
			mergeRange(m, f.Field, "$lt", f.Value)
		}
	}
	return m
}

func mergeRange(m bson.M, field, op string, value interface{}) {
	if existing, ok := m[field].(bson.M); ok {
		existing[op] = value
		return
	}
	m[field] = bson.M{op: value}
}

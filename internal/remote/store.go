// Package remote is the adapter to the shared document store: a keyed
// collection holding one document per list ID. It exposes read, full
// replace, field-level merge and a query-by-field primitive, and it
// classifies store errors so callers can apply backoff. Retry policy
// lives entirely in the caller.
package remote

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ferndale/pantryd/internal/model"
)

const defaultCollection = "lists"

// Store wraps one keyed document collection.
type Store struct {
	coll *mongo.Collection
}

// Connect dials the remote store and returns a Store over the lists
// collection of the given database.
func Connect(ctx context.Context, uri, database string) (*Store, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect remote store: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping remote store: %w", err)
	}

	store := &Store{coll: client.Database(database).Collection(defaultCollection)}
	return store, client.Disconnect, nil
}

// NewStore wraps an existing collection. Used by tests and tools.
func NewStore(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// Read fetches the raw document for a list ID. The payload is returned
// unsanitized; callers run it through the sanitizer before using it.
func (s *Store) Read(ctx context.Context, listID string) (map[string]any, error) {
	var raw bson.M
	err := s.coll.FindOne(ctx, bson.M{"_id": listID}).Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("read list %s: %w", listID, classify(err))
	}
	return map[string]any(raw), nil
}

// Write replaces the whole document for a list ID, creating it if absent.
func (s *Store) Write(ctx context.Context, listID string, doc model.ListDocument) error {
	fields, err := docFields(doc)
	if err != nil {
		return fmt.Errorf("write list %s: %w", listID, err)
	}
	fields["_id"] = listID

	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": listID}, fields, opts); err != nil {
		return fmt.Errorf("write list %s: %w", listID, classify(err))
	}
	return nil
}

// Patch merges a subset of fields into the document without touching the
// rest, narrowing the window in which concurrent writers clobber each
// other's fields.
func (s *Store) Patch(ctx context.Context, listID string, fields map[string]any) error {
	stripped, _ := StripNil(fields).(map[string]any)
	if len(stripped) == 0 {
		return nil
	}

	opts := options.Update().SetUpsert(true)
	if _, err := s.coll.UpdateOne(ctx, bson.M{"_id": listID}, bson.M{"$set": stripped}, opts); err != nil {
		return fmt.Errorf("patch list %s: %w", listID, classify(err))
	}
	return nil
}

// Exists reports whether a document exists for the list ID.
func (s *Store) Exists(ctx context.Context, listID string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": listID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("exists list %s: %w", listID, classify(err))
	}
	return n > 0, nil
}

// QueryByField returns the raw documents whose field matches value, e.g.
// every list a given user is a member of.
func (s *Store) QueryByField(ctx context.Context, field string, value any) ([]map[string]any, error) {
	cur, err := s.coll.Find(ctx, bson.M{field: value})
	if err != nil {
		return nil, fmt.Errorf("query %s=%v: %w", field, value, classify(err))
	}
	defer cur.Close(ctx)

	var docs []map[string]any
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode query result: %w", err)
		}
		docs = append(docs, map[string]any(raw))
	}
	return docs, cur.Err()
}

// docFields flattens a typed document to a map so the nil-strip pass can
// run over it. Stripping is distinct from sanitization and runs after it.
func docFields(doc model.ListDocument) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	stripped, _ := StripNil(map[string]any(fields)).(map[string]any)
	return bson.M(stripped), nil
}

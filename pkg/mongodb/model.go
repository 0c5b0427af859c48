package mongodb

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BuildFunc prepares a document before it is written: it applies defaults
// and rejects invalid input.
type BuildFunc func(doc bson.M) (bson.M, error)

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithBuilder sets the function that applies defaults and validation.
func WithBuilder(fn BuildFunc) ModelOption {
	return func(m *Model) {
		if fn != nil {
			m.build = fn
		}
	}
}

// Model is a schemaless document model over one collection.
type Model struct {
	coll  *mongo.Collection
	build BuildFunc
}

// Model returns a document model for the named collection.
func (d *Database) Model(collection string, opts ...ModelOption) *Model {
	return NewModel(d.Collection(collection), opts...)
}

// NewModel wraps an existing collection handle.
func NewModel(coll *mongo.Collection, opts ...ModelOption) *Model {
	m := &Model{coll: coll}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// New constructs a document from doc without persisting it.
// The input map is copied. Documents without an "_id" take their "slug",
// or a random UUID when there is no slug either.
func (m *Model) New(doc bson.M) (bson.M, error) {
	out := make(bson.M, len(doc)+1)
	maps.Copy(out, doc)

	if m.build != nil {
		var err error
		if out, err = m.build(out); err != nil {
			return nil, err
		}
	}

	if _, ok := out["_id"]; !ok {
		if slug, ok := out["slug"].(string); ok && slug != "" {
			out["_id"] = slug
		} else {
			out["_id"] = uuid.NewString()
		}
	}
	return out, nil
}

func (m *Model) Count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := m.coll.CountDocuments(ctx, orEmpty(filter))
	if err != nil {
		return 0, fmt.Errorf("cannot count %s: %w", m.coll.Name(), err)
	}
	return n, nil
}

func (m *Model) Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error) {
	cursor, err := m.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("cannot aggregate %s: %w", m.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", m.coll.Name(), err)
	}
	return docs, nil
}

// FindOne returns nil, nil when nothing matches.
func (m *Model) FindOne(ctx context.Context, filter, projection bson.M) (bson.M, error) {
	opts := options.FindOne()
	if len(projection) > 0 {
		opts.SetProjection(projection)
	}

	var doc bson.M
	err := m.coll.FindOne(ctx, orEmpty(filter), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot find %s: %w", m.coll.Name(), err)
	}
	return doc, nil
}

// Insert persists a document built with New.
func (m *Model) Insert(ctx context.Context, doc bson.M) (bson.M, error) {
	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("cannot insert into %s: %w", m.coll.Name(), err)
	}
	return doc, nil
}

// Replace swaps the matching document for doc, inserting it when nothing
// matches, and returns the stored state.
func (m *Model) Replace(ctx context.Context, filter, doc bson.M) (bson.M, error) {
	opts := options.FindOneAndReplace().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out bson.M
	if err := m.coll.FindOneAndReplace(ctx, orEmpty(filter), doc, opts).Decode(&out); err != nil {
		return nil, fmt.Errorf("cannot replace in %s: %w", m.coll.Name(), err)
	}
	return out, nil
}

// Delete removes the matching document and returns it, or nil when nothing matched.
func (m *Model) Delete(ctx context.Context, filter bson.M) (bson.M, error) {
	var out bson.M
	err := m.coll.FindOneAndDelete(ctx, orEmpty(filter)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot delete from %s: %w", m.coll.Name(), err)
	}
	return out, nil
}

func orEmpty(filter bson.M) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return filter
}

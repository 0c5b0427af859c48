package content_test

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var errStore = errors.New("store failure")

// fakeModel is an in-memory Model keyed by "_id". It records every
// aggregation pipeline and returns aggregateResult for all of them.
type fakeModel struct {
	mu              sync.Mutex
	docs            map[any]bson.M
	pipelines       []mongo.Pipeline
	aggregateResult []bson.M
	counts          int
	aggregates      int
	finds           int
	failDelete      any
	failInsert      bool
	seq             int

	// afterFind runs once FindOne has read the store, outside the lock.
	afterFind func()
}

func newFakeModel() *fakeModel {
	return &fakeModel{docs: map[any]bson.M{}}
}

func (m *fakeModel) New(doc bson.M) (bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := maps.Clone(doc)
	if out == nil {
		out = bson.M{}
	}
	if _, ok := out["_id"]; !ok {
		if slug, ok := out["slug"].(string); ok && slug != "" {
			out["_id"] = slug
		} else {
			m.seq++
			out["_id"] = fmt.Sprintf("gen-%d", m.seq)
		}
	}
	return out, nil
}

func (m *fakeModel) Count(_ context.Context, _ bson.M) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts++
	return int64(len(m.docs)), nil
}

func (m *fakeModel) Aggregate(_ context.Context, pipeline mongo.Pipeline) ([]bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aggregates++
	m.pipelines = append(m.pipelines, pipeline)
	if m.aggregateResult == nil {
		return []bson.M{}, nil
	}
	return m.aggregateResult, nil
}

func (m *fakeModel) FindOne(_ context.Context, filter, _ bson.M) (bson.M, error) {
	m.mu.Lock()
	m.finds++
	doc := m.lookup(filter)
	m.mu.Unlock()

	if m.afterFind != nil {
		m.afterFind()
	}
	return doc, nil
}

func (m *fakeModel) lookup(filter bson.M) bson.M {
	key, ok := m.key(filter)
	if !ok {
		return nil
	}
	return maps.Clone(m.docs[key])
}

// key resolves an "_id" filter, by equality or {"$in": [...]}, to a stored key.
func (m *fakeModel) key(filter bson.M) (any, bool) {
	in, ok := filter["_id"].(bson.M)
	if !ok {
		_, found := m.docs[filter["_id"]]
		return filter["_id"], found
	}
	ids, _ := in["$in"].([]any)
	for _, id := range ids {
		if _, found := m.docs[id]; found {
			return id, true
		}
	}
	return nil, false
}

func (m *fakeModel) Insert(_ context.Context, doc bson.M) (bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsert {
		return nil, errStore
	}
	if _, ok := m.docs[doc["_id"]]; ok {
		return nil, fmt.Errorf("duplicate key %v", doc["_id"])
	}
	m.docs[doc["_id"]] = maps.Clone(doc)
	return doc, nil
}

func (m *fakeModel) Replace(_ context.Context, filter, doc bson.M) (bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[filter["_id"]] = maps.Clone(doc)
	return maps.Clone(doc), nil
}

func (m *fakeModel) Delete(_ context.Context, filter bson.M) (bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete != nil && filter["_id"] == m.failDelete {
		return nil, errStore
	}
	id, ok := m.key(filter)
	if !ok {
		return nil, nil
	}
	doc := m.docs[id]
	delete(m.docs, id)
	return doc, nil
}

func (m *fakeModel) seed(docs ...bson.M) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range docs {
		m.docs[d["_id"]] = d
	}
}

func (m *fakeModel) lastPipeline() mongo.Pipeline {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pipelines) == 0 {
		return nil
	}
	return m.pipelines[len(m.pipelines)-1]
}

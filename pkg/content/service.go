package content

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// DefaultPageSize is used when Config.PageSize is zero.
const DefaultPageSize = 25

// pageAll disables pagination in GetPage.
const pageAll = "all"

// Model is the document store behind a Service.
// mongodb.Model implements it.
type Model interface {
	// New builds a document from doc, applying defaults and identity,
	// without persisting it.
	New(doc bson.M) (bson.M, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error)
	// FindOne returns nil, nil when nothing matches.
	FindOne(ctx context.Context, filter, projection bson.M) (bson.M, error)
	Insert(ctx context.Context, doc bson.M) (bson.M, error)
	// Replace upserts doc over the matching document and returns the stored state.
	Replace(ctx context.Context, filter, doc bson.M) (bson.M, error)
	// Delete returns the removed document, or nil when nothing matched.
	Delete(ctx context.Context, filter bson.M) (bson.M, error)
}

// Config fixes what a Service reads and how it pages.
type Config struct {
	// ItemType names the resource in URLs, e.g. "post" for /posts and /post/{id}.
	ItemType string

	// Projection selects the fields returned by multi-document queries.
	Projection bson.M

	// Query is the base filter for every read.
	Query bson.M

	// PageSize defaults to DefaultPageSize.
	PageSize int
}

// Service is a CRUD and pagination facade over one collection.
// It holds no state besides its configuration and is safe for concurrent use.
type Service struct {
	model      Model
	itemType   string
	projection bson.M
	query      bson.M
	pageSize   int
}

// New validates cfg and returns a Service over model.
func New(model Model, cfg Config) (*Service, error) {
	if model == nil {
		return nil, ErrNilModel
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.PageSize < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, cfg.PageSize)
	}
	if !validItemType(cfg.ItemType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidItemType, cfg.ItemType)
	}

	return &Service{
		model:      model,
		itemType:   cfg.ItemType,
		projection: cfg.Projection,
		query:      cfg.Query,
		pageSize:   cfg.PageSize,
	}, nil
}

// validItemType accepts identifiers usable verbatim as a URL path segment.
func validItemType(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

func (s *Service) ItemType() string { return s.itemType }
func (s *Service) PageSize() int    { return s.pageSize }

// ListPages returns one URL per page of matching documents, in the form
// "{base}{itemType}/{n}" for n in 1..ceil(count/pageSize).
// An empty base means "/".
func (s *Service) ListPages(ctx context.Context, base string) ([]string, error) {
	if base == "" {
		base = "/"
	}

	count, err := s.model.Count(ctx, s.baseQuery())
	if err != nil {
		return nil, err
	}

	pages := int((count + int64(s.pageSize) - 1) / int64(s.pageSize))
	links := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		links = append(links, base+s.itemType+"/"+strconv.Itoa(i))
	}
	return links, nil
}

// GetPage returns one page of documents. The pipeline is
// sort (when given), match, project, then skip and limit.
// page is a 1-based number; "all" in any case returns every match, and
// anything unparsable or below 1 means the first page.
// A nil query uses a copy of the configured base query.
func (s *Service) GetPage(ctx context.Context, sort bson.D, page string, query bson.M) ([]bson.M, error) {
	if query == nil {
		query = s.baseQuery()
	}

	pipeline := mongo.Pipeline{}
	if len(sort) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sort}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$match", Value: query}})
	if len(s.projection) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: s.projection}})
	}

	if !strings.EqualFold(strings.TrimSpace(page), pageAll) {
		offset := (ParsePage(page) - 1) * s.pageSize
		pipeline = append(pipeline,
			bson.D{{Key: "$skip", Value: offset}},
			bson.D{{Key: "$limit", Value: s.pageSize}},
		)
	}

	return s.model.Aggregate(ctx, pipeline)
}

// GetOne returns the document with the given id, or nil when there is none.
// An id in ObjectID hex form also matches an ObjectID identity.
func (s *Service) GetOne(ctx context.Context, id string, projection bson.M) (bson.M, error) {
	return s.model.FindOne(ctx, idFilter(id), projection)
}

// Create builds a document through the model and persists it.
func (s *Service) Create(ctx context.Context, doc bson.M) (bson.M, error) {
	built, err := s.model.New(doc)
	if err != nil {
		return nil, err
	}
	return s.model.Insert(ctx, built)
}

// CreateMany upserts documents one at a time, in order. Each document is
// looked up by its slug, or its "_id" when it has no slug: a match is
// updated, anything else is created. Processing stops at the first error.
func (s *Service) CreateMany(ctx context.Context, docs []bson.M) ([]bson.M, error) {
	results := make([]bson.M, 0, len(docs))
	for _, doc := range docs {
		res, err := s.upsertOrCreate(ctx, doc)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Service) upsertOrCreate(ctx context.Context, doc bson.M) (bson.M, error) {
	key, ok := identity(doc)
	if !ok {
		return s.Create(ctx, doc)
	}

	found, err := s.model.FindOne(ctx, bson.M{"_id": key}, nil)
	if err != nil {
		return nil, err
	}
	if found != nil {
		return s.replace(ctx, key, doc)
	}
	return s.Create(ctx, doc)
}

// Update replaces the document with the given id by one built from doc,
// inserting it when missing, and returns the stored state. A stored
// ObjectID identity is kept; new documents get id as a string.
func (s *Service) Update(ctx context.Context, id string, doc bson.M) (bson.M, error) {
	var key any = id
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		found, err := s.model.FindOne(ctx, bson.M{"_id": oid}, bson.M{"_id": 1})
		if err != nil {
			return nil, err
		}
		if found != nil {
			key = oid
		}
	}
	return s.replace(ctx, key, doc)
}

func (s *Service) replace(ctx context.Context, id any, doc bson.M) (bson.M, error) {
	in := make(bson.M, len(doc)+1)
	maps.Copy(in, doc)
	in["_id"] = id

	built, err := s.model.New(in)
	if err != nil {
		return nil, err
	}
	built["_id"] = id
	return s.model.Replace(ctx, bson.M{"_id": id}, built)
}

// UpdateMany behaves exactly like CreateMany.
func (s *Service) UpdateMany(ctx context.Context, docs []bson.M) ([]bson.M, error) {
	return s.CreateMany(ctx, docs)
}

// Remove deletes the document with the given id and returns it, or nil when
// nothing matched.
func (s *Service) Remove(ctx context.Context, id string) (bson.M, error) {
	return s.model.Delete(ctx, idFilter(id))
}

// idFilter matches id as given, and as an ObjectID when it is one in hex
// form. Imported documents keep ObjectID identities while paths carry strings.
func idFilter(id string) bson.M {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return bson.M{"_id": id}
	}
	return bson.M{"_id": bson.M{"$in": []any{id, oid}}}
}

// RemoveMany deletes every document by its "_id" concurrently. Results keep
// the input order; a nil entry means nothing matched.
func (s *Service) RemoveMany(ctx context.Context, docs []bson.M) ([]bson.M, error) {
	results := make([]bson.M, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	for i, doc := range docs {
		g.Go(func() error {
			res, err := s.model.Delete(gctx, bson.M{"_id": doc["_id"]})
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetRandom returns one random matching document, or nil when there is none.
func (s *Service) GetRandom(ctx context.Context) (bson.M, error) {
	pipeline := mongo.Pipeline{bson.D{{Key: "$match", Value: s.baseQuery()}}}
	if len(s.projection) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: s.projection}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$sample", Value: bson.M{"size": 1}}},
		bson.D{{Key: "$limit", Value: 1}},
	)

	docs, err := s.model.Aggregate(ctx, pipeline)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[0], nil
}

// baseQuery returns a fresh copy so callers and the store cannot mutate the config.
func (s *Service) baseQuery() bson.M {
	q := make(bson.M, len(s.query))
	maps.Copy(q, s.query)
	return q
}

// identity returns the lookup key of doc: its slug, else its "_id".
func identity(doc bson.M) (any, bool) {
	if slug, ok := doc["slug"].(string); ok && slug != "" {
		return slug, true
	}
	if id, ok := doc["_id"]; ok && id != nil && id != "" {
		return id, true
	}
	return nil, false
}

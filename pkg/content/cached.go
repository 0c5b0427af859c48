package content

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/dmitrymomot/popapi/pkg/cache"
)

// Entry is the cached form of a read result.
type Entry struct {
	Links []string `bson:"links,omitempty"`
	Docs  []bson.M `bson:"docs,omitempty"`
}

// EntryMarshaler encodes entries as canonical Extended JSON so BSON types
// such as ObjectID and dates survive a round trip through Redis.
type EntryMarshaler struct{}

func (EntryMarshaler) Marshal(e Entry) ([]byte, error) {
	data, err := bson.MarshalExtJSON(e, true, false)
	if err != nil {
		return nil, errors.Join(cache.ErrMarshal, err)
	}
	return data, nil
}

func (EntryMarshaler) Unmarshal(data []byte) (Entry, error) {
	var e Entry
	if err := bson.UnmarshalExtJSON(data, true, &e); err != nil {
		return Entry{}, errors.Join(cache.ErrUnmarshal, err)
	}
	return e, nil
}

// Cached is a read-through cache in front of a Service.
//
// ListPages, GetPage without a query override, and GetOne without a projection
// are served from the cache. Every successful write clears the whole cache,
// so the cache passed in must be dedicated to one item type.
// GetRandom always reaches the store.
//
// Reads return copies of the cached documents. The copies are shallow:
// nested maps and slices are still shared with the cache.
type Cached struct {
	*Service
	cache cache.Cache[Entry]
	ttl   time.Duration
	gen   cache.Generation
}

// NewCached wraps svc. A zero ttl uses the cache's default.
func NewCached(svc *Service, c cache.Cache[Entry], ttl time.Duration) (*Cached, error) {
	if svc == nil {
		return nil, ErrNilService
	}
	if c == nil {
		return nil, ErrNilCache
	}
	return &Cached{Service: svc, cache: c, ttl: ttl}, nil
}

func (c *Cached) ListPages(ctx context.Context, base string) ([]string, error) {
	e, err := cache.GetOrSetFresh(ctx, c.cache, &c.gen, "pages:"+base, c.ttl, func(ctx context.Context) (Entry, error) {
		links, err := c.Service.ListPages(ctx, base)
		return Entry{Links: links}, err
	})
	if err != nil {
		return nil, err
	}
	if e.Links == nil {
		return []string{}, nil
	}
	return slices.Clone(e.Links), nil
}

func (c *Cached) GetPage(ctx context.Context, sort bson.D, page string, query bson.M) ([]bson.M, error) {
	if query != nil {
		return c.Service.GetPage(ctx, sort, page, query)
	}

	e, err := cache.GetOrSetFresh(ctx, c.cache, &c.gen, pageKey(sort, page), c.ttl, func(ctx context.Context) (Entry, error) {
		docs, err := c.Service.GetPage(ctx, sort, page, nil)
		return Entry{Docs: docs}, err
	})
	if err != nil {
		return nil, err
	}
	docs := make([]bson.M, len(e.Docs))
	for i, d := range e.Docs {
		docs[i] = maps.Clone(d)
	}
	return docs, nil
}

func (c *Cached) GetOne(ctx context.Context, id string, projection bson.M) (bson.M, error) {
	if len(projection) > 0 {
		return c.Service.GetOne(ctx, id, projection)
	}

	e, err := cache.GetOrSetFresh(ctx, c.cache, &c.gen, "one:"+id, c.ttl, func(ctx context.Context) (Entry, error) {
		doc, err := c.Service.GetOne(ctx, id, nil)
		if err != nil || doc == nil {
			return Entry{}, err
		}
		return Entry{Docs: []bson.M{doc}}, nil
	})
	if err != nil || len(e.Docs) == 0 {
		return nil, err
	}
	return maps.Clone(e.Docs[0]), nil
}

func (c *Cached) Create(ctx context.Context, doc bson.M) (bson.M, error) {
	return invalidate(ctx, c, func() (bson.M, error) { return c.Service.Create(ctx, doc) })
}

func (c *Cached) CreateMany(ctx context.Context, docs []bson.M) ([]bson.M, error) {
	return invalidate(ctx, c, func() ([]bson.M, error) { return c.Service.CreateMany(ctx, docs) })
}

func (c *Cached) Update(ctx context.Context, id string, doc bson.M) (bson.M, error) {
	return invalidate(ctx, c, func() (bson.M, error) { return c.Service.Update(ctx, id, doc) })
}

func (c *Cached) UpdateMany(ctx context.Context, docs []bson.M) ([]bson.M, error) {
	return invalidate(ctx, c, func() ([]bson.M, error) { return c.Service.UpdateMany(ctx, docs) })
}

func (c *Cached) Remove(ctx context.Context, id string) (bson.M, error) {
	return invalidate(ctx, c, func() (bson.M, error) { return c.Service.Remove(ctx, id) })
}

func (c *Cached) RemoveMany(ctx context.Context, docs []bson.M) ([]bson.M, error) {
	return invalidate(ctx, c, func() ([]bson.M, error) { return c.Service.RemoveMany(ctx, docs) })
}

// invalidate runs write, then bumps the generation and clears the cache.
// Bulk writes can fail after persisting part of their input, so a failed
// write clears it too.
func invalidate[T any](ctx context.Context, c *Cached, write func() (T, error)) (T, error) {
	res, err := write()
	c.gen.Bump()
	if cerr := c.cache.Clear(ctx); cerr != nil && err == nil {
		return res, fmt.Errorf("cannot clear %s cache: %w", c.ItemType(), cerr)
	}
	return res, err
}

func pageKey(sort bson.D, page string) string {
	var b strings.Builder
	b.WriteString("page:")
	for _, e := range sort {
		b.WriteString(e.Key)
		b.WriteByte('=')
		b.WriteString(fmt.Sprint(e.Value))
		b.WriteByte(',')
	}
	b.WriteByte(':')
	if strings.EqualFold(strings.TrimSpace(page), pageAll) {
		b.WriteString(pageAll)
	} else {
		b.WriteString(strconv.Itoa(ParsePage(page)))
	}
	return b.String()
}

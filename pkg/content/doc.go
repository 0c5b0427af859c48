// Package content implements the generic content service behind PopApi's
// CRUD controllers.
//
// A [Service] wraps a [Model] with a fixed item type, base query, projection
// and page size, and builds the aggregation pipelines for listing, paging and
// sampling documents:
//
//	svc, err := content.New(db.Model("posts"), content.Config{
//		ItemType:   "post",
//		Projection: bson.M{"title": 1, "slug": 1},
//		Query:      bson.M{"published": true},
//	})
//	if err != nil {
//		return err
//	}
//	docs, err := svc.GetPage(ctx, content.SortContent("title", content.Ascending), "2", nil)
//
// Store errors are returned unchanged. Lookups that find nothing return a nil
// document and a nil error.
//
// [Cached] puts a [cache.Cache] in front of the read operations and clears it
// on every write.
package content

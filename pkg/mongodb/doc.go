// Package mongodb connects to MongoDB and exposes schemaless document models.
//
// [New] builds the client from a [Config]. The driver dials lazily, so
// construction never blocks; [Database.Connect] pings with linear backoff
// and is what startup code waits on:
//
//	db, err := mongodb.New(mongodb.Config{
//		Database: "popapi-development",
//		Hosts:    []string{"localhost"},
//	})
//	if err != nil {
//		return err
//	}
//	if err := db.Connect(ctx); err != nil {
//		return err
//	}
//	defer db.Disconnect(ctx)
//
// [Model] works on bson.M documents and is the storage side of the content
// service: count, aggregate, find, insert, replace-with-upsert and delete.
//
// # Import and Export
//
// [Database.ExportCollection] and [Database.ImportCollection] move a
// collection to and from a file of canonical Extended JSON lines, the format
// mongoexport produces. Imports upsert on "_id", so they can be re-run.
// Both take an item type and resolve it with [CollectionName]:
//
//	n, err := db.ImportCollection(ctx, "post", "seed/posts.json") // into "posts"
package mongodb

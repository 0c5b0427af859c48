package mongodb

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxLineSize bounds a single exported document (the BSON limit is 16MB).
const maxLineSize = 16 << 20

// ExportCollection writes every document of the collection holding the
// itemType documents (see CollectionName) to file as canonical Extended JSON, one document per line.
// Returns the number of exported documents.
func (d *Database) ExportCollection(ctx context.Context, itemType, file string) (int, error) {
	collection := CollectionName(itemType)
	cursor, err := d.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("cannot export %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	f, err := os.Create(file)
	if err != nil {
		return 0, fmt.Errorf("cannot create export file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	n := 0
	for cursor.Next(ctx) {
		if err := writeDocument(w, cursor.Current); err != nil {
			return n, err
		}
		n++
	}
	if err := cursor.Err(); err != nil {
		return n, fmt.Errorf("cannot export %s: %w", collection, err)
	}
	if err := w.Flush(); err != nil {
		return n, fmt.Errorf("cannot write export file: %w", err)
	}
	return n, f.Sync()
}

// ImportCollection upserts every document of an exported file into the
// collection holding the itemType documents, matching on "_id".
// Relative paths are resolved against the working directory.
// Returns the number of imported documents.
func (d *Database) ImportCollection(ctx context.Context, itemType, file string) (int, error) {
	docs, err := ReadFile(file)
	if err != nil {
		return 0, err
	}

	collection := CollectionName(itemType)
	coll := d.Collection(collection)
	for i, doc := range docs {
		if err := upsert(ctx, coll, doc); err != nil {
			return i, fmt.Errorf("cannot import %s: %w", collection, err)
		}
	}
	return len(docs), nil
}

// ReadFile parses an exported file.
func ReadFile(file string) ([]bson.M, error) {
	path, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("no such file found for '%s': %w", path, ErrFileNotFound)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readDocuments(f)
}

func readDocuments(r io.Reader) ([]bson.M, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var docs []bson.M
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var doc bson.M
		if err := bson.UnmarshalExtJSON(raw, true, &doc); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedDocument, line, err)
		}
		docs = append(docs, doc)
	}
	return docs, sc.Err()
}

func writeDocument(w io.Writer, doc any) error {
	data, err := bson.MarshalExtJSON(doc, true, false)
	if err != nil {
		return fmt.Errorf("cannot encode document: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func upsert(ctx context.Context, coll *mongo.Collection, doc bson.M) error {
	id, ok := doc["_id"]
	if !ok {
		_, err := coll.InsertOne(ctx, doc)
		return err
	}
	_, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return err
}

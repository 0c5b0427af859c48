package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Database is a MongoDB client bound to one database.
type Database struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    Config
	uri    string
}

// New creates the client without touching the network.
// The driver dials lazily; call Connect to wait for a reachable server.
func New(cfg Config) (*Database, error) {
	if cfg.Database == "" {
		return nil, ErrEmptyDatabaseName
	}
	cfg = cfg.withDefaults()
	uri := cfg.URI()

	opts := options.Client().ApplyURI(uri).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	// Connect only validates options and starts background monitoring.
	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, errors.Join(ErrFailedToConnect, err)
	}

	return &Database{
		client: client,
		db:     client.Database(cfg.Database),
		cfg:    cfg,
		uri:    uri,
	}, nil
}

// Connect pings the server, retrying with linear backoff:
// attempt 1 waits RetryInterval, attempt 2 waits 2x, and so on.
func (d *Database) Connect(ctx context.Context) error {
	var lastErr error
	for i := range d.cfg.RetryAttempts {
		if lastErr = d.client.Ping(ctx, nil); lastErr == nil {
			return nil
		}
		if i == d.cfg.RetryAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Join(ErrFailedToConnect, ctx.Err())
		case <-time.After(time.Duration(i+1) * d.cfg.RetryInterval):
		}
	}
	return errors.Join(ErrFailedToConnect, lastErr)
}

// Disconnect closes all pooled connections.
func (d *Database) Disconnect(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// URI returns the connection string the client was built from.
func (d *Database) URI() string {
	return d.uri
}

// Name returns the database name.
func (d *Database) Name() string {
	return d.cfg.Database
}

// Collection returns a handle to the named collection.
func (d *Database) Collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}

// CollectionName returns the collection holding itemType documents: the
// item type with an "s" appended, as in "post" to "posts".
func CollectionName(itemType string) string {
	return itemType + "s"
}

// ItemCollection returns the collection holding itemType documents.
func (d *Database) ItemCollection(itemType string) *mongo.Collection {
	return d.Collection(CollectionName(itemType))
}

// Healthcheck returns a closure that validates connectivity for health endpoints.
func Healthcheck(d *Database) func(context.Context) error {
	return func(ctx context.Context) error {
		if d == nil {
			return ErrHealthcheckFailed
		}
		if err := d.client.Ping(ctx, nil); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a function that disconnects the client.
// Register it as a shutdown hook.
func Shutdown(d *Database) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return d.Disconnect(ctx)
	}
}

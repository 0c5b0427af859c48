package mongodb

import "errors"

var (
	ErrEmptyDatabaseName = errors.New("mongodb: empty database name")
	ErrFailedToConnect   = errors.New("mongodb: failed to establish connection")
	ErrHealthcheckFailed = errors.New("mongodb: healthcheck failed")
	ErrFileNotFound      = errors.New("mongodb: import file not found")
	ErrMalformedDocument = errors.New("mongodb: malformed extended json document")
)

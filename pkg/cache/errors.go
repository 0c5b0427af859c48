package cache

import "errors"

// ErrNotFound covers both missing and expired keys.
var ErrNotFound = errors.New("cache: miss")

var (
	ErrClosed      = errors.New("cache: closed")
	ErrEmptyPrefix = errors.New("cache: redis backend needs a key prefix")
	ErrMarshal     = errors.New("cache: encode value")
	ErrUnmarshal   = errors.New("cache: decode value")
)

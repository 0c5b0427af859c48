package content

import "errors"

var (
	ErrNilModel        = errors.New("content: model is required")
	ErrInvalidItemType = errors.New("content: item type must be a non-empty path segment")
	ErrInvalidPageSize = errors.New("content: page size must be positive")
	ErrNilService      = errors.New("content: service is required")
	ErrNilCache        = errors.New("content: cache is required")
)

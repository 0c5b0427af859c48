package logger

import "errors"

var (
	ErrMissingName = errors.New("logger: name is required for file logging")
	ErrLogDir      = errors.New("logger: failed to prepare log directory")
)

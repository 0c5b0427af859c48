package internal

import "errors"

var (
	ErrInvalidConfig   = errors.New("internal: invalid configuration")
	ErrInvalidMode     = errors.New("internal: invalid mode, expected pretty, quiet or ugly")
	ErrExit            = errors.New("internal: exit requested")
	ErrMissingName     = errors.New("internal: name is required")
	ErrNilPlugin       = errors.New("internal: plugin is nil")
	ErrNoDatabase      = errors.New("internal: database plugin is not installed")
	ErrNoServer        = errors.New("internal: http server plugin is not installed")
	ErrWorkerCrashLoop = errors.New("internal: worker keeps crashing")
)

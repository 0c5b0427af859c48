package internal

import (
	"context"
	"fmt"
)

// Plugin declares an installable piece of shared state. Its identity is the
// pointer returned by NewPlugin: installing the same *Plugin twice is a
// no-op, while two plugins sharing a name are distinct.
type Plugin[C any] struct {
	name      string
	construct func(ctx context.Context, r *Registry, cfg C) (any, error)
}

// NewPlugin declares a plugin built by fn. The instance fn returns is stored
// in the registry and can be looked up with Instance.
func NewPlugin[C, P any](name string, fn func(ctx context.Context, r *Registry, cfg C) (P, error)) *Plugin[C] {
	return &Plugin[C]{
		name: name,
		construct: func(ctx context.Context, r *Registry, cfg C) (any, error) {
			return fn(ctx, r, cfg)
		},
	}
}

func (p *Plugin[C]) Name() string { return p.name }

// PluginToken identifies an installed plugin regardless of its config type.
type PluginToken interface {
	Name() string
}

// Use installs p with cfg unless it is already installed, and returns r.
//
// The constructor runs synchronously on the calling goroutine and may install
// other plugins, but not p itself. Concurrent calls for the same plugin wait
// for the first one to finish. A failed construction stores nothing, so it
// can be retried.
func Use[C any](ctx context.Context, r *Registry, p *Plugin[C], cfg C) (*Registry, error) {
	if p == nil {
		return r, ErrNilPlugin
	}

	var s *slot
	for {
		r.mu.Lock()
		existing, ok := r.plugins[p]
		if !ok {
			s = &slot{done: make(chan struct{})}
			r.plugins[p] = s
			r.mu.Unlock()
			break
		}
		r.mu.Unlock()

		select {
		case <-existing.done:
		case <-ctx.Done():
			return r, ctx.Err()
		}
		if existing.err == nil {
			return r, nil
		}
	}

	instance, err := p.construct(ctx, r, cfg)

	r.mu.Lock()
	if err != nil {
		s.err = fmt.Errorf("install %s: %w", p.name, err)
		delete(r.plugins, p)
	} else {
		s.instance = instance
		r.order = append(r.order, p.name)
	}
	r.mu.Unlock()
	close(s.done)

	return r, s.err
}

// Instance returns the value built by p's constructor.
func Instance[P any](r *Registry, p PluginToken) (P, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var zero P
	s, ok := r.plugins[p]
	if !ok || !s.installed() {
		return zero, false
	}
	v, ok := s.instance.(P)
	return v, ok
}

type slot struct {
	done     chan struct{}
	instance any
	err      error
}

func (s *slot) installed() bool {
	select {
	case <-s.done:
		return s.err == nil
	default:
		return false
	}
}

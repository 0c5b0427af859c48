package controllers

import (
	"github.com/dmitrymomot/popapi/internal"
	"github.com/dmitrymomot/popapi/pkg/content"
	"github.com/dmitrymomot/popapi/pkg/mongodb"
)

// Build turns a content service into the controller to mount, for custom
// controllers that embed *ContentController.
type Build func(svc Service) (internal.Handler, error)

// ForCollection returns a factory for a ContentController over collection.
// The service goes through the content cache when one is installed.
func ForCollection(collection string, cfg content.Config, opts ...mongodb.ModelOption) internal.ControllerFactory {
	return ForCollectionWith(collection, cfg, func(svc Service) (internal.Handler, error) {
		return NewContentController(svc)
	}, opts...)
}

// ForCollectionWith is ForCollection with a custom controller built from the service.
func ForCollectionWith(collection string, cfg content.Config, build Build, opts ...mongodb.ModelOption) internal.ControllerFactory {
	return func(r *internal.Registry) (internal.Handler, error) {
		db := r.Database()
		if db == nil {
			return nil, internal.ErrNoDatabase
		}

		svc, err := NewService(r, db.Model(collection, opts...), cfg)
		if err != nil {
			return nil, err
		}
		return build(svc)
	}
}

// NewService builds a content service over model, cached when the registry
// has a content cache.
func NewService(r *internal.Registry, model content.Model, cfg content.Config) (Service, error) {
	svc, err := content.New(model, cfg)
	if err != nil {
		return nil, err
	}

	cc := r.Cache()
	if cc == nil {
		return svc, nil
	}
	store, err := cc.For(svc.ItemType())
	if err != nil {
		return nil, err
	}
	cached, err := content.NewCached(svc, store, cc.TTL())
	if err != nil {
		return nil, err
	}
	return cached, nil
}

package controllers

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/dmitrymomot/popapi/internal"
	"github.com/dmitrymomot/popapi/pkg/content"
)

// Service is what a ContentController needs from the content layer.
// Both *content.Service and *content.Cached implement it.
type Service interface {
	ItemType() string
	ListPages(ctx context.Context, base string) ([]string, error)
	GetPage(ctx context.Context, sort bson.D, page string, query bson.M) ([]bson.M, error)
	GetOne(ctx context.Context, id string, projection bson.M) (bson.M, error)
	Create(ctx context.Context, doc bson.M) (bson.M, error)
	Update(ctx context.Context, id string, doc bson.M) (bson.M, error)
	Remove(ctx context.Context, id string) (bson.M, error)
	GetRandom(ctx context.Context) (bson.M, error)
}

// ContentHandlers is the set of handlers mounted by RegisterContentRoutes.
// Embed *ContentController and override handlers to change single routes.
type ContentHandlers interface {
	internal.Handler
	ItemType() string
	GetContents(c internal.Context) error
	GetPage(c internal.Context) error
	GetContent(c internal.Context) error
	CreateContent(c internal.Context) error
	UpdateContent(c internal.Context) error
	DeleteContent(c internal.Context) error
	GetRandomContent(c internal.Context) error
}

// ErrNilService is returned by NewContentController for a nil service.
var ErrNilService = errors.New("controllers: service is nil")

// ContentController serves the CRUD routes of one content type.
type ContentController struct {
	service Service
}

var _ ContentHandlers = (*ContentController)(nil)

// NewContentController returns a controller over svc.
func NewContentController(svc Service) (*ContentController, error) {
	if svc == nil {
		return nil, ErrNilService
	}
	return &ContentController{service: svc}, nil
}

// Service returns the service the controller reads from.
func (cc *ContentController) Service() Service { return cc.service }

func (cc *ContentController) ItemType() string { return cc.service.ItemType() }

// Routes mounts the content routes with the controller's own handlers.
func (cc *ContentController) Routes(r internal.Router) {
	RegisterContentRoutes(r, cc)
}

// RegisterContentRoutes mounts the seven content routes of h:
//
//	GET    /{t}s          list page links
//	GET    /{t}s/{page}   one page, sorted by ?sort=field&order=1|-1
//	GET    /{t}/{id}      one document
//	POST   /{t}s          create
//	PUT    /{t}/{id}      replace or insert
//	DELETE /{t}/{id}      delete
//	GET    /random/{t}    one random document
func RegisterContentRoutes(r internal.Router, h ContentHandlers) {
	t := h.ItemType()

	r.GET("/"+t+"s", h.GetContents)
	r.GET("/"+t+"s/{page}", h.GetPage)
	r.GET("/"+t+"/{id}", h.GetContent)
	r.POST("/"+t+"s", h.CreateContent)
	r.PUT("/"+t+"/{id}", h.UpdateContent)
	r.DELETE("/"+t+"/{id}", h.DeleteContent)
	r.GET("/random/"+t, h.GetRandomContent)
}

// GetContents answers the links of every page, or 204 when there is no content.
func (cc *ContentController) GetContents(c internal.Context) error {
	links, err := cc.service.ListPages(c, "/")
	if err != nil {
		return err
	}
	return list(c, links)
}

// GetPage answers one page of documents, or 204 for an empty page.
// "sort" names the field to sort on and "order" is 1 for ascending;
// anything else sorts descending.
func (cc *ContentController) GetPage(c internal.Context) error {
	sort := content.SortContent(c.Query("sort"), content.ParseOrder(c.Query("order")))

	docs, err := cc.service.GetPage(c, sort, c.Param("page"), nil)
	if err != nil {
		return err
	}
	return list(c, docs)
}

func (cc *ContentController) GetContent(c internal.Context) error {
	doc, err := cc.service.GetOne(c, c.Param("id"), nil)
	if err != nil {
		return err
	}
	return one(c, doc)
}

func (cc *ContentController) CreateContent(c internal.Context) error {
	body, err := bindDocument(c)
	if err != nil {
		return err
	}

	doc, err := cc.service.Create(c, body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (cc *ContentController) UpdateContent(c internal.Context) error {
	body, err := bindDocument(c)
	if err != nil {
		return err
	}

	doc, err := cc.service.Update(c, c.Param("id"), body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// DeleteContent answers the deleted document, or null when nothing matched.
func (cc *ContentController) DeleteContent(c internal.Context) error {
	doc, err := cc.service.Remove(c, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (cc *ContentController) GetRandomContent(c internal.Context) error {
	doc, err := cc.service.GetRandom(c)
	if err != nil {
		return err
	}
	return one(c, doc)
}

func bindDocument(c internal.Context) (bson.M, error) {
	body := bson.M{}
	if err := c.Bind(&body); err != nil {
		return nil, internal.ErrBadRequest("invalid request body", internal.WithPublic(), internal.WithError(err))
	}
	return body, nil
}

func list[T any](c internal.Context, items []T) error {
	if len(items) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, items)
}

func one(c internal.Context, doc bson.M) error {
	if doc == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, doc)
}

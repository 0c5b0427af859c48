// Package controllers provides the base content controller: seven CRUD
// routes over a content service.
//
//	api, err := popapi.Init(ctx,
//	    popapi.WithName("api"),
//	    popapi.WithControllers(
//	        controllers.ForCollection("posts", content.Config{
//	            ItemType:   "post",
//	            Projection: bson.M{"title": 1},
//	        }),
//	    ),
//	)
//
// To add routes, embed *ContentController and mount both sets:
//
//	type PostController struct {
//	    *controllers.ContentController
//	}
//
//	func (p *PostController) Routes(r popapi.Router) {
//	    controllers.RegisterContentRoutes(r, p)
//	    r.GET("/hello/{name}", p.hello)
//	}
//
// Empty results are answered with 204 No Content. Service errors go to the
// central error handler.
package controllers

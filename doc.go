// Package popapi boots a JSON content API over MongoDB.
//
// Init parses the command line, sets up logging, connects to MongoDB,
// optionally caches content reads, and prepares an HTTP server with a
// router. Controllers built with the controllers package expose CRUD and
// pagination routes for a collection.
//
// # Quick Start
//
//	func main() {
//	    ctx := context.Background()
//	    api, err := popapi.Init(ctx,
//	        popapi.WithName("api"),
//	        popapi.WithVersion("1.0.0"),
//	        popapi.WithControllers(
//	            controllers.ForCollection("posts", content.Config{ItemType: "post"}),
//	        ),
//	    )
//	    if errors.Is(err, popapi.ErrExit) {
//	        return
//	    }
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := api.Run(ctx); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// The command line accepts -m/--mode (pretty, quiet or ugly), -v/--version
// and -h/--help. PORT, NODE_ENV, CACHE_TTL, REDIS_URL and the linked
// container variables MONGO_PORT_27017_TCP_ADDR and MONGO_PORT_27017_TCP_PORT
// are read from the environment.
//
// # Handlers
//
// Handlers implement the [Handler] interface to declare routes:
//
//	type HelloController struct{}
//
//	func (HelloController) Routes(r popapi.Router) {
//	    r.GET("/hello/{name}", func(c popapi.Context) error {
//	        return c.JSON(http.StatusOK, map[string]string{"msg": "Hello, " + c.Param("name")})
//	    })
//	}
//
// Returned errors are answered as JSON. Messages of errors not marked with
// [WithPublic] are replaced by the status text.
//
// # Plugins
//
// Everything Init installs is a plugin, and applications can add their own.
// A plugin runs once per registry and can install the plugins it needs:
//
//	var Seed = popapi.NewPlugin("seed", func(ctx context.Context, r *popapi.Registry, file string) (int, error) {
//	    return r.Database().ImportCollection(ctx, "post", file)
//	})
//
//	if _, err := popapi.Use(ctx, api, Seed, "data/posts.json"); err != nil {
//	    return err
//	}
//
// # Shutdown
//
// Registry.Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then
// runs the shutdown hooks registered by plugins in reverse order.
package popapi

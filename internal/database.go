package internal

import (
	"context"
	"strings"

	"github.com/dmitrymomot/popapi/pkg/mongodb"
)

// DatabaseConfig configures the Database plugin.
type DatabaseConfig struct {
	// Name is the base database name. The environment is appended, so
	// "api" becomes "api-development" under NODE_ENV=development.
	Name     string
	Hosts    []string
	Port     int
	Username string
	Password string
}

// DatabasePlugin creates the MongoDB client. It does not dial; Init waits
// for connectivity with Database.Connect once every plugin is installed.
var DatabasePlugin = NewPlugin("database", installDatabase)

func installDatabase(_ context.Context, r *Registry, cfg DatabaseConfig) (*mongodb.Database, error) {
	env := r.Config()

	hosts := cfg.Hosts
	if env.MongoHost != "" {
		hosts = []string{env.MongoHost}
	}
	port := cfg.Port
	if env.MongoPort > 0 {
		port = env.MongoPort
	}

	db, err := mongodb.New(mongodb.Config{
		Database: databaseName(cfg.Name, env.Env),
		Hosts:    hosts,
		Port:     port,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, err
	}

	r.with(func(r *Registry) { r.database = db })
	r.OnShutdown(mongodb.Shutdown(db))
	return db, nil
}

func databaseName(name, env string) string {
	name = strings.TrimSpace(name)
	if env == "" || name == "" {
		return name
	}
	return name + "-" + env
}

package mongodb

import (
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultPort is the port used for hosts that do not name one.
const DefaultPort = 27017

// Config holds MongoDB connection parameters.
type Config struct {
	// Database is the database name placed in the URI path.
	Database string

	// Hosts lists the replica set members. Hosts without a port get Port.
	Hosts []string

	Port     int
	Username string
	Password string

	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration

	// Connect pings the server up to RetryAttempts times, waiting
	// attempt*RetryInterval between tries.
	RetryAttempts int
	RetryInterval time.Duration
}

func (c Config) withDefaults() Config {
	if len(c.Hosts) == 0 {
		c.Hosts = []string{"localhost"}
	}
	if c.Port <= 0 {
		c.Port = DefaultPort
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.ServerSelectionTimeout <= 0 {
		c.ServerSelectionTimeout = 10 * time.Second
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 2 * time.Second
	}
	return c
}

// URI builds the connection string:
//
//	mongodb://[user:pass@]host1:port[,host2:port]/database
func (c Config) URI() string {
	c = c.withDefaults()

	hosts := make([]string, 0, len(c.Hosts))
	for _, h := range c.Hosts {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(h); err != nil {
			h = net.JoinHostPort(h, strconv.Itoa(c.Port))
		}
		hosts = append(hosts, h)
	}

	u := url.URL{
		Scheme: "mongodb",
		Host:   strings.Join(hosts, ","),
		Path:   "/" + c.Database,
	}
	if c.Username != "" && c.Password != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	}
	return u.String()
}

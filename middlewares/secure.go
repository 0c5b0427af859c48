package middlewares

import "github.com/dmitrymomot/popapi/internal"

// DefaultSecureHeaders are set on every response by SecureHeaders.
var DefaultSecureHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	"Referrer-Policy":         "no-referrer",
}

// DefaultHiddenHeaders are removed from every response by SecureHeaders.
var DefaultHiddenHeaders = []string{"X-Powered-By", "X-AspNet-Version", "Server"}

// SecureHeadersConfig configures the secure headers middleware.
type SecureHeadersConfig struct {
	Set    map[string]string
	Remove []string
}

// SecureHeadersOption configures SecureHeadersConfig.
type SecureHeadersOption func(*SecureHeadersConfig)

// WithSecureHeader sets an extra header, or overrides a default one.
// An empty value drops the header from the defaults.
func WithSecureHeader(name, value string) SecureHeadersOption {
	return func(cfg *SecureHeadersConfig) {
		if value == "" {
			delete(cfg.Set, name)
			return
		}
		cfg.Set[name] = value
	}
}

// WithHiddenHeaders replaces the list of headers removed from responses.
func WithHiddenHeaders(names ...string) SecureHeadersOption {
	return func(cfg *SecureHeadersConfig) {
		cfg.Remove = names
	}
}

// SecureHeaders returns middleware that hardens API responses: it sets
// headers that stop browsers from sniffing or framing JSON, and removes
// headers that reveal the server stack. Headers are applied right before
// the status line is written, so they also cover error responses.
func SecureHeaders(opts ...SecureHeadersOption) internal.Middleware {
	cfg := &SecureHeadersConfig{
		Set:    make(map[string]string, len(DefaultSecureHeaders)),
		Remove: DefaultHiddenHeaders,
	}
	for k, v := range DefaultSecureHeaders {
		cfg.Set[k] = v
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			c.ResponseWriter().OnBeforeWrite(func() {
				h := c.Response().Header()
				for k, v := range cfg.Set {
					h.Set(k, v)
				}
				for _, k := range cfg.Remove {
					h.Del(k)
				}
			})
			return next(c)
		}
	}
}

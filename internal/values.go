package internal

// ContextValue returns the value stored with Context.Set under key, or the
// zero T when it is missing or of another type.
func ContextValue[T any](c Context, key any) T {
	v, _ := c.Get(key).(T)
	return v
}

// Lookup reads a string from a request. An empty result means not found.
type Lookup func(c Context) string

// Header looks up a request header.
func Header(name string) Lookup {
	return func(c Context) string { return c.Header(name) }
}

// QueryParam looks up a query string parameter.
func QueryParam(name string) Lookup {
	return func(c Context) string { return c.Query(name) }
}

// URLParam looks up a route parameter such as {id}.
func URLParam(name string) Lookup {
	return func(c Context) string { return c.Param(name) }
}

// FirstOf combines lookups; the first non-empty result wins.
func FirstOf(lookups ...Lookup) Lookup {
	return func(c Context) string {
		for _, l := range lookups {
			if v := l(c); v != "" {
				return v
			}
		}
		return ""
	}
}

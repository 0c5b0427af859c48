// Package middlewares provides HTTP middleware for PopApi applications.
//
// popapi.Init installs them by default in this order:
//
//	RequestID     assigns a request ID before the request logger runs
//	ResponseTime  adds X-Response-Time and, with a registry, a duration histogram
//	Recover       turns panics into *PanicError (answered with a 500)
//	SecureHeaders sets nosniff, framing and CSP headers, removes X-Powered-By
//
// # Request ID
//
// RequestID keeps an ID sent in X-Request-ID or X-Correlation-ID, or
// generates a UUID. Use RequestIDExtractor with the logger to add
// request_id to every record:
//
//	api, err := popapi.Init(ctx,
//	    popapi.WithName("api"),
//	    popapi.WithExtractors(middlewares.RequestIDExtractor()),
//	)
//
// # Recover
//
// The recovered stack is returned by PanicError.StackTrace and shows up in
// the error body when NODE_ENV=development.
//
//	if pe, ok := middlewares.AsPanicError(err); ok {
//	    c.LogError("panic", "value", pe.Value)
//	}
package middlewares

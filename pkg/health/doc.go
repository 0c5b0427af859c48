// Package health serves liveness and readiness probes.
//
// Readiness runs every registered [CheckFunc] in parallel under a shared
// timeout and answers 503 if any of them fails:
//
//	checks := health.Checks{
//		"mongodb": mongodb.Healthcheck(db),
//		"redis":   redis.Healthcheck(client),
//	}
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(checks, health.WithLogger(log)))
//
// Probes answer plain text by default and JSON when the request carries
// "?format=json" or "Accept: application/json".
package health

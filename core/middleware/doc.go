// Package middleware groups the HTTP middleware of the service.
//
//   - auth: X-API-Key check, disabled when no key is configured.
//   - rayid: per-request id stored in Locals("ray_id") and echoed in X-Ray-ID.
//
// logger.WithRayID reads the id so request logs can be correlated.
package middleware

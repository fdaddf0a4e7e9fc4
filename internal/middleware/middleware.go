// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns such as admin
// authentication (Supabase sessions), request logging, CORS, per-IP rate
// limiting of the public forms, tracing and panic recovery.
package middleware

// Package handler is the HTTP layer between the router and the services.
//
// Typed endpoints run through one pipeline (see Handle) that binds and
// validates the request, calls the service, and writes the response with
// request-scoped logging and tracing. Webhooks and system endpoints, which
// need the raw request, are plain Echo handlers.
package handler

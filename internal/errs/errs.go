// Package errs defines the error types returned to API clients.
//
// Every failure leaving the HTTP layer is an *HTTPError so the frontend
// forms always receive the same JSON shape, including per-field
// validation messages and optional action hints.
package errs

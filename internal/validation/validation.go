// Package validation contains the logic for validating
// request data.
//
// It uses the `validator` library to enforce rules defined in
// struct tags, adds the form checks the marketing site relies on
// (email, US phone, website), and turns failures into field errors
// the frontend forms can render next to each input.
package validation

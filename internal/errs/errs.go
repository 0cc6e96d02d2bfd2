// Package errs defines the error taxonomy of the dispatcher.
//
// Clients only ever see the fixed HTTPError shapes (404 and 500); the
// detailed errors (BodyError and anything else) are for the operational log.
package errs

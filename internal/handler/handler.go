// Package handler is the first layer after the router.
//
// It reads the decoded request body, runs the endpoint function and
// writes its result, logging and tracing every step.
package handler

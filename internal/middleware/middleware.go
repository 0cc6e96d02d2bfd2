// Package middleware stores the global middleware and the error handler.
//
// These intercept requests to handle cross-cutting concerns such as
// request ids, request-scoped loggers, access logging, panic recovery,
// JSON body decoding and New Relic tracing.
package middleware

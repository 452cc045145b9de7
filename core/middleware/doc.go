// Package middleware groups the HTTP middleware used by the connector.
//
// Middlewares live in subpackages:
//   - rayid: assigns a correlation id to every request and exposes it via
//     fiber locals and the X-Ray-Id response header.
//
// The request logging middleware is small enough that it is defined inline
// in cmd/start.go, where it has access to the application logger.
package middleware

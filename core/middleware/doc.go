// Package middleware contains HTTP middleware for the Fiber application.
//
// It provides cross-cutting concerns that sit between the request and the handler.
//
// # Components
//
//   - auth: Validates the API key to protect endpoints.
//   - rayid: Assigns every request a unique Request ID (RayID), stored in the
//     context for logger.WithRayID and echoed in the response headers for tracing.
//
// These middleware components are registered globally by the serve command.
package middleware

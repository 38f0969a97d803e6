// Package server holds the HTTP server configuration.
//
// The serve command starts Fiber on Config.Address and protects routes with
// Config.ApiKey through the auth middleware.
package server

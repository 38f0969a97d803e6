// Package rest is a small JSON client for the token-authenticated REST APIs the
// roster and the mailing list are read from and written to.
//
// Non-2xx responses become *APIError values carrying the status and the error
// code reported in the body, so callers can classify failures with HasCode.
package rest

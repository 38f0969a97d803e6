package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError is a non-2xx response.
type APIError struct {
	// Method and URL identify the failed request.
	Method string
	URL    string

	// StatusCode is the HTTP status.
	StatusCode int

	// Code is the machine-readable error code from the body ("code" or "error"), if any.
	Code string

	// Detail is the human-readable explanation from the body, or the raw body.
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// HasCode returns a predicate matching API errors carrying one of codes.
func HasCode(codes ...string) func(error) bool {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return func(err error) bool {
		apiErr, ok := AsAPIError(err)
		if !ok || apiErr.Code == "" {
			return false
		}
		_, found := set[apiErr.Code]
		return found
	}
}

type errorBody struct {
	Code   string          `json:"code"`
	Error  string          `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

func newAPIError(method, url string, resp *http.Response) *APIError {
	apiErr := &APIError{Method: method, URL: url, StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		apiErr.Detail = strings.TrimSpace(string(data))
		return apiErr
	}

	apiErr.Code = body.Code
	if apiErr.Code == "" {
		apiErr.Code = body.Error
	}

	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err == nil {
		apiErr.Detail = detail
	} else if len(body.Detail) > 0 {
		apiErr.Detail = string(body.Detail)
	}
	return apiErr
}

// Package oautherr defines the closed set of OAuth 2.0 error kinds raised by
// the engine and the mapping from each kind to its HTTP status and RFC 6749
// error code.
package oautherr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies one member of the error taxonomy.
type Kind int

// The zero value is deliberately ServerError so that an uninitialised Error
// never renders as a client error.
const (
	KindServerError Kind = iota
	KindInvalidArgument
	KindInvalidRequest
	KindInvalidClient
	KindUnauthorizedClient
	KindUnsupportedGrantType
	KindInvalidGrant
	KindInvalidToken
	KindInvalidScope
)

// OAuth error codes as constants
const (
	CodeServerError          = "server_error"
	CodeInvalidArgument      = "invalid_argument"
	CodeInvalidRequest       = "invalid_request"
	CodeInvalidClient        = "invalid_client"
	CodeUnauthorizedClient   = "unauthorized_client"
	CodeUnsupportedGrantType = "unsupported_grant_type"
	CodeInvalidGrant         = "invalid_grant"
	CodeInvalidToken         = "invalid_token"
	CodeInvalidScope         = "invalid_scope"
)

type kindInfo struct {
	status int
	code   string
}

var kinds = map[Kind]kindInfo{
	KindServerError:          {http.StatusInternalServerError, CodeServerError},
	KindInvalidArgument:      {http.StatusInternalServerError, CodeInvalidArgument},
	KindInvalidRequest:       {http.StatusBadRequest, CodeInvalidRequest},
	KindInvalidClient:        {http.StatusBadRequest, CodeInvalidClient},
	KindUnauthorizedClient:   {http.StatusBadRequest, CodeUnauthorizedClient},
	KindUnsupportedGrantType: {http.StatusBadRequest, CodeUnsupportedGrantType},
	KindInvalidGrant:         {http.StatusBadRequest, CodeInvalidGrant},
	KindInvalidToken:         {http.StatusUnauthorized, CodeInvalidToken},
	KindInvalidScope:         {http.StatusBadRequest, CodeInvalidScope},
}

// Describe returns the default HTTP status and error code for a kind.
// Unknown kinds map to server_error with status 500.
func Describe(k Kind) (status int, code string) {
	info, ok := kinds[k]
	if !ok {
		info = kinds[KindServerError]
	}
	return info.status, info.code
}

// String returns the RFC 6749 error code of the kind.
func (k Kind) String() string {
	_, code := Describe(k)
	return code
}

// Error is an OAuth error carrying its kind, a fixed human-readable
// description and, optionally, the internal cause.
//
// The cause is available through errors.Unwrap for logging but is never
// part of the rendered body.
type Error struct {
	Kind        Kind
	Description string
	// Status overrides the kind's default status when non-zero
	// (invalid_client and invalid_token may be 400 or 401).
	Status int
	Cause  error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code(), e.Description, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code(), e.Description)
}

// Unwrap returns the internal cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Code returns the RFC 6749 error code.
func (e *Error) Code() string {
	_, code := Describe(e.Kind)
	return code
}

// StatusCode returns the HTTP status to render.
func (e *Error) StatusCode() int {
	if e.Status != 0 {
		return e.Status
	}
	status, _ := Describe(e.Kind)
	return status
}

// WithStatus returns a copy of the error with an explicit status.
func (e *Error) WithStatus(status int) *Error {
	c := *e
	c.Status = status
	return &c
}

// Body is the JSON error body written by the renderer.
type Body struct {
	Code             int    `json:"code"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Body returns the wire representation of the error.
func (e *Error) Body() Body {
	return Body{
		Code:             e.StatusCode(),
		Error:            e.Code(),
		ErrorDescription: e.Description,
	}
}

// New creates an error of the given kind.
func New(kind Kind, description string) *Error {
	if description == "" {
		_, description = Describe(kind)
	}
	return &Error{Kind: kind, Description: description}
}

// InvalidArgument reports missing or inconsistent configuration.
func InvalidArgument(desc string) *Error { return New(KindInvalidArgument, desc) }

// InvalidRequest reports a malformed request or a missing parameter.
func InvalidRequest(desc string) *Error { return New(KindInvalidRequest, desc) }

// InvalidClient reports a client authentication failure.
func InvalidClient(desc string) *Error { return New(KindInvalidClient, desc) }

// UnauthorizedClient reports a grant type not allowed for the client.
func UnauthorizedClient(desc string) *Error { return New(KindUnauthorizedClient, desc) }

// UnsupportedGrantType reports an unknown or disabled grant_type.
func UnsupportedGrantType(desc string) *Error { return New(KindUnsupportedGrantType, desc) }

// InvalidGrant reports an invalid or expired code, refresh token or user credentials.
func InvalidGrant(desc string) *Error { return New(KindInvalidGrant, desc) }

// InvalidToken reports a missing, invalid or expired access token.
func InvalidToken(desc string) *Error { return New(KindInvalidToken, desc) }

// InvalidScope reports a scope that is not granted or not acceptable.
func InvalidScope(desc string) *Error { return New(KindInvalidScope, desc) }

// Server wraps an unexpected failure (typically from the model) as a
// server_error. The cause is kept for logs only.
func Server(cause error) *Error {
	return &Error{Kind: KindServerError, Description: CodeServerError, Cause: cause}
}

// Serverf creates a server_error with an internal message as cause.
func Serverf(format string, args ...any) *Error {
	return Server(fmt.Errorf(format, args...))
}

// From converts any error into an *Error. OAuth errors are returned as is,
// anything else is collapsed into a server_error so that backend failures
// never leak to clients.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var oe *Error
	if errors.As(err, &oe) {
		return oe
	}
	return Server(err)
}

// Is reports whether err is an OAuth error of the given kind.
func Is(err error, kind Kind) bool {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

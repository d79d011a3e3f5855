// Package errors defines the failure taxonomy of the signing bridge.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the class of a bridge failure.
type Code string

// Failure classes surfaced to the browser as problem envelopes.
const (
	CodeUpstreamAuth        Code = "UPSTREAM_AUTH"
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	CodeUpstreamHTTP        Code = "UPSTREAM_HTTP"
	CodeMultipartParse      Code = "MULTIPART_PARSE"
	CodePayloadTooLarge     Code = "PAYLOAD_TOO_LARGE"
	CodeBadRequest          Code = "BAD_REQUEST"
	CodeNotFound            Code = "NOT_FOUND"
	CodeInternal            Code = "INTERNAL"
)

// BridgeError is the single error type handlers hand to the error normalizer.
// Title, Detail and Type are optional; empty values fall back to status defaults.
type BridgeError struct {
	Code   Code
	Status int
	Type   string
	Title  string
	Detail string
	Err    error
}

func (e *BridgeError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if e.Err != nil {
		if msg == "" {
			return fmt.Sprintf("%s: %v", e.Code, e.Err)
		}
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *BridgeError) Unwrap() error {
	return e.Err
}

// Is matches any BridgeError carrying the same code, so the sentinels below
// work with errors.Is regardless of status or message.
func (e *BridgeError) Is(target error) bool {
	t, ok := target.(*BridgeError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrUpstreamAuth        = &BridgeError{Code: CodeUpstreamAuth}
	ErrUpstreamUnavailable = &BridgeError{Code: CodeUpstreamUnavailable}
	ErrUpstreamHTTP        = &BridgeError{Code: CodeUpstreamHTTP}
	ErrMultipartParse      = &BridgeError{Code: CodeMultipartParse}
	ErrPayloadTooLarge     = &BridgeError{Code: CodePayloadTooLarge}
	ErrBadRequest          = &BridgeError{Code: CodeBadRequest}
	ErrNotFound            = &BridgeError{Code: CodeNotFound}
	ErrInternal            = &BridgeError{Code: CodeInternal}
)

// NewUpstreamAuthError reports credentials rejected by the upstream login endpoint.
func NewUpstreamAuthError(status int, problemType, title, detail string) *BridgeError {
	return &BridgeError{
		Code:   CodeUpstreamAuth,
		Status: status,
		Type:   problemType,
		Title:  title,
		Detail: detail,
	}
}

// NewUpstreamUnavailable reports a transport failure reaching the upstream service.
// Timeouts map to 504, everything else to 502.
func NewUpstreamUnavailable(err error, timeout bool) *BridgeError {
	status := http.StatusBadGateway
	title := "Upstream unavailable"
	if timeout {
		status = http.StatusGatewayTimeout
		title = "Upstream timeout"
	}
	return &BridgeError{
		Code:   CodeUpstreamUnavailable,
		Status: status,
		Title:  title,
		Detail: "The signing service could not be reached",
		Err:    err,
	}
}

// NewUpstreamHTTPError reports a non-2xx upstream response not classified otherwise.
func NewUpstreamHTTPError(status int, problemType, title, detail string) *BridgeError {
	return &BridgeError{
		Code:   CodeUpstreamHTTP,
		Status: status,
		Type:   problemType,
		Title:  title,
		Detail: detail,
	}
}

// NewMultipartParseError reports a malformed inbound upload stream.
func NewMultipartParseError(detail string, err error) *BridgeError {
	return &BridgeError{
		Code:   CodeMultipartParse,
		Status: http.StatusBadRequest,
		Title:  "Invalid upload",
		Detail: detail,
		Err:    err,
	}
}

// NewPayloadTooLarge reports an inbound body above the configured cap.
func NewPayloadTooLarge(limit int64, err error) *BridgeError {
	return &BridgeError{
		Code:   CodePayloadTooLarge,
		Status: http.StatusRequestEntityTooLarge,
		Title:  "Payload too large",
		Detail: fmt.Sprintf("request body exceeds %d bytes", limit),
		Err:    err,
	}
}

// NewBadRequest reports an inbound JSON body that could not be used.
func NewBadRequest(detail string, err error) *BridgeError {
	return &BridgeError{
		Code:   CodeBadRequest,
		Status: http.StatusBadRequest,
		Title:  "Bad request",
		Detail: detail,
		Err:    err,
	}
}

// NewNotFound reports a path the bridge neither serves nor forwards.
func NewNotFound(path string) *BridgeError {
	return &BridgeError{
		Code:   CodeNotFound,
		Status: http.StatusNotFound,
		Detail: fmt.Sprintf("no route for %s", path),
	}
}

// NewInternalError wraps an unexpected failure in the bridging logic itself.
func NewInternalError(err error) *BridgeError {
	return &BridgeError{
		Code:   CodeInternal,
		Status: http.StatusInternalServerError,
		Title:  "Internal error",
		Detail: "An unexpected error occurred",
		Err:    err,
	}
}

// Classify returns the BridgeError carried by err, or an InternalError wrapping it.
// A BridgeError without a status is given the 500 default.
func Classify(err error) *BridgeError {
	var be *BridgeError
	if errors.As(err, &be) {
		if be.Status == 0 {
			cp := *be
			cp.Status = http.StatusInternalServerError
			return &cp
		}
		return be
	}
	return NewInternalError(err)
}

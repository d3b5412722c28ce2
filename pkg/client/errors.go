package client

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a request failed.
type ErrorKind int

const (
	// KindTransport covers network failures: DNS, refused connections, canceled contexts.
	KindTransport ErrorKind = iota
	// KindResponse is a non-2xx status from the API.
	KindResponse
	// KindDecode is a 2xx response whose body could not be decoded.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindResponse:
		return "response"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// Default messages shown when the API does not supply one.
const (
	MsgLoginFailed  = "Login failed. Please try again."
	MsgSignupFailed = "Signup failed. Please try again."
	MsgFetchFailed  = "Failed to fetch notes"
	MsgCreateFailed = "Failed to create note"
	MsgUpdateFailed = "Failed to update note"
	MsgDeleteFailed = "Failed to delete note"
)

// ErrMissingID marks a 2xx note response that carried no id.
var ErrMissingID = errors.New("response note has no id")

// DefaultMessage returns the user-facing message used for op when the API
// does not supply one.
func DefaultMessage(op string) string {
	return defaultMessages[op]
}

// RequestError is the single error type returned by every Client operation.
// Message is safe to show to the user as-is.
type RequestError struct {
	Op         string
	Kind       ErrorKind
	StatusCode int // zero unless Kind is KindResponse
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Detail returns a diagnostic string including op, kind and status.
func (e *RequestError) Detail() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s HTTP %d: %s", e.Op, e.Kind, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s (%v)", e.Op, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is a RequestError with the given status code.
func IsStatus(err error, code int) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind == KindResponse && reqErr.StatusCode == code
	}
	return false
}

// Message extracts the user-facing message from err, falling back to fallback
// when err is not a RequestError.
func Message(err error, fallback string) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return fallback
}

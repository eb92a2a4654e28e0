package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies where a failure originated.
type Kind string

const (
	KindTransport     Kind = "transport"
	KindAuthRequired  Kind = "auth_required"
	KindUnavailable   Kind = "unavailable"
	KindDecode        Kind = "decode"
	KindApplication   Kind = "application"
	KindEmptyResponse Kind = "empty_response"
	KindRequest       Kind = "request"
	KindCancelled     Kind = "cancelled"
)

// Standard titles and messages shared by the client and the envelope classifier.
const (
	TitleGeneric        = "Error"
	TitleAuthRequired   = "Authentication Required"
	TitleMaintenance    = "Server Under Maintenance"
	TitleDataNotDecoded = "Data not decoded"
	TitleInvalidRequest = "Invalid Request"
	TitleCancelled      = "Cancelled"

	MsgAuthRequired    = "Authentication Required"
	MsgMaintenance     = "Server Under Maintenance"
	MsgSomethingWrong  = "Something went wrong"
	MsgDataNotFound    = "Data not found"
	MsgDataNotDecoded  = "Data not decoded"
	MsgInvalidURL      = "The request URL could not be built."
	MsgBodyNotEncoded  = "The request body could not be encoded as JSON."
	MsgRequestCanceled = "The request was cancelled."
)

// Error is the single failure shape handed to callers. It always carries enough
// information for a host UI to render a message.
type Error struct {
	Kind        Kind
	Title       string
	Description string
	Code        int
	URL         string
	Cause       error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.URL == "" {
		return fmt.Sprintf("%s (%d): %s", e.Title, e.Code, e.Description)
	}
	return fmt.Sprintf("%s (%d) %s: %s", e.Title, e.Code, e.URL, e.Description)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// New builds an error with an explicit title. An empty title becomes TitleGeneric.
func New(kind Kind, title, desc string, code int, url string) *Error {
	if title == "" {
		title = TitleGeneric
	}
	return &Error{Kind: kind, Title: title, Description: desc, Code: code, URL: url}
}

// Server builds an application-level failure from a server supplied message.
func Server(status int, msg, url string) *Error {
	if msg == "" {
		msg = MsgSomethingWrong
	}
	return New(KindApplication, "", msg, status, url)
}

// Empty reports a success status whose envelope carried no data field.
func Empty(status int, msg, url string) *Error {
	if msg == "" {
		msg = MsgSomethingWrong
	}
	return New(KindEmptyResponse, "", msg, status, url)
}

// AuthRequired is returned for 401 responses and 401 transport codes.
func AuthRequired(code int, url string) *Error {
	return New(KindAuthRequired, TitleAuthRequired, MsgAuthRequired, code, url)
}

// Maintenance is returned for 503 responses.
func Maintenance(url string) *Error {
	return New(KindUnavailable, TitleMaintenance, MsgMaintenance, http.StatusServiceUnavailable, url)
}

// Transport classifies a failure where no HTTP response was received.
func Transport(code int, url string, cause error) *Error {
	if code == http.StatusUnauthorized {
		e := AuthRequired(code, url)
		e.Cause = cause
		return e
	}
	kind := KindTransport
	title := ""
	desc := MessageFor(code)
	if code == CodeExplicitlyCancelled {
		kind = KindCancelled
		title = TitleCancelled
		desc = MsgRequestCanceled
	}
	e := New(kind, title, desc, code, url)
	e.Cause = cause
	return e
}

// Decode wraps a failure to turn envelope data into the expected type.
func Decode(url string, cause error) *Error {
	desc := MsgDataNotDecoded
	if cause != nil {
		desc = cause.Error()
	}
	e := New(KindDecode, TitleDataNotDecoded, desc, http.StatusOK, url)
	e.Cause = cause
	return e
}

// Request reports a request that could not be built. Code is CodeBadURL for URL
// failures and 0 for payload encoding failures.
func Request(code int, desc, url string, cause error) *Error {
	e := New(KindRequest, TitleInvalidRequest, desc, code, url)
	e.Cause = cause
	return e
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsAuthRequired reports whether err is an authentication failure.
func IsAuthRequired(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindAuthRequired
}

// IsCancelled reports whether err is an explicitly cancelled request.
func IsCancelled(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindCancelled
}

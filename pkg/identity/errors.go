package identity

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorKind classifies why a call to the identity service failed.
type ErrorKind int

const (
	// KindInvalidHeader: the Authorization header was missing or malformed.
	KindInvalidHeader ErrorKind = iota + 1
	// KindInvalidResponse: the identity service answered with a body that
	// is not a valid user response.
	KindInvalidResponse
	// KindUnreachable: the request could not be completed (connection
	// refused, timeout, cancelled context, broken body).
	KindUnreachable
	// KindHTTPStatus: the identity service answered with a non-2xx status.
	KindHTTPStatus
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidHeader:
		return "invalid_header"
	case KindInvalidResponse:
		return "invalid_response"
	case KindUnreachable:
		return "unreachable"
	case KindHTTPStatus:
		return "http_status"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

const (
	reasonValidation  = "could not validate input/output"
	reasonUnreachable = "could not reach identity service"
	reasonHTTP        = "HTTP error"
)

// ClientError is returned by Client.GetUser. Err holds the underlying cause.
type ClientError struct {
	Kind       ErrorKind
	Reason     string
	StatusCode int // set for KindHTTPStatus only
	Err        error
}

func (e *ClientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("identity: %s (status %d)", e.Reason, e.StatusCode)
	}
	return "identity: " + e.Reason
}

func (e *ClientError) Unwrap() error { return e.Err }

// HTTPError is an error response produced by the middleware.
type HTTPError struct {
	Status      int
	Title       string
	Description string
	// Challenge, when set, is sent as the WWW-Authenticate header.
	Challenge string
	Err       error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Description)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// Render writes the error as a JSON response.
func (e *HTTPError) Render(w http.ResponseWriter) {
	if e.Challenge != "" {
		w.Header().Set("WWW-Authenticate", e.Challenge)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"title":       e.Title,
		"description": e.Description,
	})
}

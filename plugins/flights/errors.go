package flights

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrConnectionUnavailable means no connection to the server could be
	// established (DNS failure, refused connection).
	ErrConnectionUnavailable = errors.New("connection unavailable")
	// ErrMalformedResponse means the body was not JSON or lacked required fields.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrRequestFailed covers everything else: non-2xx statuses, timeouts.
	ErrRequestFailed = errors.New("request failed")
)

// Error describes a failed call to the flight-search server
type Error struct {
	Kind error
	// Op is the client operation, e.g. "SearchFlights"
	Op  string
	URL string
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrConnectionUnavailable:
		return fmt.Sprintf("%s: %v: server not running at %s: %v", e.Op, e.Kind, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
}

// Unwrap exposes both the kind and the underlying cause
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// APIError is the error body the server returns with non-2xx statuses
type APIError struct {
	StatusCode int    `json:"-"`
	Status     string `json:"-"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %s", e.Status)
	}
	return fmt.Sprintf("server returned %s: %s", e.Status, e.Message)
}

// classifyTransportError sorts an error from http.Client.Do into a kind.
// Timeouts are reported as generic failures even when they happen while
// dialing, since the host may well be up.
func classifyTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return ErrRequestFailed
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrConnectionUnavailable
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrConnectionUnavailable
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return ErrConnectionUnavailable
	}
	return ErrRequestFailed
}

// IsConnectionUnavailable reports whether err means the server is unreachable
func IsConnectionUnavailable(err error) bool {
	return errors.Is(err, ErrConnectionUnavailable)
}

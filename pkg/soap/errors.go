package soap

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is matched by every *MalformedError
var ErrMalformedResponse = errors.New("malformed response")

// Fault is a server-side fault reported in the response envelope
type Fault struct {
	Operation string         `json:"operation"`
	Code      string         `json:"code"`
	SOAPCode  string         `json:"soap_code,omitempty"`
	Message   string         `json:"message"`
	Detail    map[string]any `json:"detail,omitempty"`
}

// Error implements the error interface
func (f *Fault) Error() string {
	if f.Operation != "" {
		return fmt.Sprintf("soap: %s fault %s: %s", f.Operation, f.Code, f.Message)
	}
	return fmt.Sprintf("soap: fault %s: %s", f.Code, f.Message)
}

// IsNotFound returns true if the server reported a missing workspace, item or changeset
func (f *Fault) IsNotFound() bool {
	return strings.HasSuffix(f.Code, "NotFound")
}

// IsAccessDenied returns true if the server refused the caller's permissions
func (f *Fault) IsAccessDenied() bool {
	return f.Code == "AccessDenied" || strings.HasSuffix(f.Code, "PermissionException") ||
		strings.HasSuffix(f.Code, "AccessDenied")
}

// CommunicationError wraps a transport failure. Cancellation and timeouts surface here too.
type CommunicationError struct {
	Operation  string
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *CommunicationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("soap: %s: communication failure (status: %d): %v", e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("soap: %s: communication failure: %v", e.Operation, e.Err)
}

func (e *CommunicationError) Unwrap() error {
	return e.Err
}

// MalformedError reports a response that does not have the expected shape
type MalformedError struct {
	Element string
	Reason  string
}

// Error implements the error interface
func (e *MalformedError) Error() string {
	if e.Element != "" {
		return fmt.Sprintf("soap: malformed response: %s: %s", e.Element, e.Reason)
	}
	return fmt.Sprintf("soap: malformed response: %s", e.Reason)
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// Malformed builds a *MalformedError with a formatted reason
func Malformed(element, format string, args ...any) error {
	return &MalformedError{Element: element, Reason: fmt.Sprintf(format, args...)}
}

// IsFault checks if an error is a server fault
func IsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsCommunicationError checks if an error is a transport failure
func IsCommunicationError(err error) bool {
	var e *CommunicationError
	return errors.As(err, &e)
}

// IsMalformed checks if an error reports an unexpected response shape
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}

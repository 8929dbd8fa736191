package services

import (
	"fmt"
	"strings"
)

type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

// BackendError is a non-2xx, non-404 reply from a candidate. It ends the relay.
type BackendError struct {
	Model      string
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error from %s: status %d", e.Model, e.StatusCode)
}

// TransportError means the backend could not be reached for a candidate,
// including the per-attempt deadline expiring. It ends the relay.
type TransportError struct {
	Model string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error for %s: %v", e.Model, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ExhaustedError means every candidate was tried and none produced text.
type ExhaustedError struct {
	Tried []string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("no candidate produced a reply (tried %s)", strings.Join(e.Tried, ", "))
}

// BusyError means no backend slot freed up before the attempt deadline.
// The backend was never contacted.
type BusyError struct {
	Model string
	Err   error
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("no free backend slot for %s: %v", e.Model, e.Err)
}

func (e *BusyError) Unwrap() error { return e.Err }

// MalformedReplyError is a 2xx reply whose body could not be decoded.
type MalformedReplyError struct {
	Model string
	Err   error
}

func (e *MalformedReplyError) Error() string {
	return fmt.Sprintf("malformed reply from %s: %v", e.Model, e.Err)
}

func (e *MalformedReplyError) Unwrap() error { return e.Err }

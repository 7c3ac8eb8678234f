package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField indicates a required request field was absent.
	ErrMissingField = errors.New("missing required field")
	// ErrNotConfigured indicates a backend URL or credential is unset.
	ErrNotConfigured = errors.New("service not configured")
	// ErrEmptyMessage indicates a send with neither text nor images.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrImageRequiresText indicates an image-only send, which the client
	// rejects before dispatch.
	ErrImageRequiresText = errors.New("images require accompanying text")
)

// UpstreamError carries the status an external collaborator answered with,
// so handlers can propagate it.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Body)
}

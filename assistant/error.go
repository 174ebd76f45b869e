package assistant

import (
	"errors"
	"fmt"
)

// Kind classifies a prompt failure. Every failure a client reports carries
// one of these codes next to its display strings, so callers can branch on
// the class without parsing text.
type Kind string

const (
	KindCapabilityUnsupported Kind = "capability_unsupported"
	KindCapabilityNotReady    Kind = "capability_not_ready"
	KindMissingCredential     Kind = "missing_credential"
	KindMissingModelConfig    Kind = "missing_model_config"
	KindRemoteNotFound        Kind = "remote_not_found"
	KindEmptyResponse         Kind = "empty_response"
	KindTransportFailure      Kind = "transport_failure"
)

// Error is the user-facing failure of one prompt. Title and Description are
// shown verbatim; they must stand on their own without backend context.
// All errors are terminal for the current prompt. There is no retry at this
// layer.
type Error struct {
	Kind        Kind
	Title       string
	Description string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Description)
}

// NewError builds an Error with the given classification and display text.
func NewError(kind Kind, title, description string) *Error {
	return &Error{Kind: kind, Title: title, Description: description}
}

// AsError extracts the typed prompt error from err, if there is one.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// TransportError wraps an arbitrary backend failure into the generic
// transport class. Clients use it as the catch-all at their boundary so the
// underlying error never escapes raw.
func TransportError(title string, err error) *Error {
	desc := "The request could not be completed."
	if err != nil {
		desc = err.Error()
	}
	return &Error{Kind: KindTransportFailure, Title: title, Description: desc}
}

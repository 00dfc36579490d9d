package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures so callers can pick an HTTP status
// and operators can tell a provider outage from prompt drift.
type Kind int

const (
	KindConfiguration Kind = iota // missing credentials or config, fails before any work
	KindValidation                // bad input: non-PDF file, unknown company id
	KindExtraction                // PDF readable but no extractable text
	KindProvider                  // LLM/CRM transport failure or empty response
	KindContentBlocked            // provider refused the prompt
	KindMalformedResponse         // LLM returned non-JSON or unexpected shape
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration_error"
	case KindValidation:
		return "validation_error"
	case KindExtraction:
		return "extraction_error"
	case KindProvider:
		return "provider_error"
	case KindContentBlocked:
		return "content_blocked"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "internal_error"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a typed classification to an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the classification of err, walking the wrap chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

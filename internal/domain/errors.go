package domain

import (
	"errors"
	"fmt"
)

// ContentErrorKind classifies content source failures.
type ContentErrorKind string

const (
	// KindFetch is a non-success response from a reachable server.
	KindFetch ContentErrorKind = "FETCH_ERROR"
	// KindNoContent is a successful response with zero items.
	KindNoContent ContentErrorKind = "NO_CONTENT"
	// KindNetwork is a transport failure without a status code.
	KindNetwork ContentErrorKind = "NETWORK_ERROR"
)

// ContentError is returned by content repositories.
type ContentError struct {
	Kind       ContentErrorKind
	StatusCode int
	Err        error
}

func (e *ContentError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s (status %d)", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *ContentError) Unwrap() error {
	return e.Err
}

// Recoverable reports whether fallback content may replace the failed page.
func (e *ContentError) Recoverable() bool {
	return e.Kind == KindNetwork || e.Kind == KindNoContent
}

// NewFetchError builds a FETCH_ERROR for the given status.
func NewFetchError(status int, err error) *ContentError {
	return &ContentError{Kind: KindFetch, StatusCode: status, Err: err}
}

// NewNoContentError builds a NO_CONTENT error.
func NewNoContentError() *ContentError {
	return &ContentError{Kind: KindNoContent}
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(err error) *ContentError {
	return &ContentError{Kind: KindNetwork, Err: err}
}

// IsKind reports whether err carries a ContentError of the given kind.
func IsKind(err error, kind ContentErrorKind) bool {
	var ce *ContentError
	return errors.As(err, &ce) && ce.Kind == kind
}

// IsRecoverable reports whether err is a content failure that fallback data may cover.
func IsRecoverable(err error) bool {
	var ce *ContentError
	return errors.As(err, &ce) && ce.Recoverable()
}

// StorageError is an I/O failure of the durable key-value store.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsReadFailure reports whether err is a failed read of a stored document.
func IsReadFailure(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Op == "get"
}

// MalformedStateError reports a persisted document that could not be decoded.
type MalformedStateError struct {
	Key string
	Err error
}

func (e *MalformedStateError) Error() string {
	return fmt.Sprintf("malformed state %q: %v", e.Key, e.Err)
}

func (e *MalformedStateError) Unwrap() error {
	return e.Err
}

// ErrUnsupportedLanguage matches every UnsupportedLanguageError via errors.Is.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// UnsupportedLanguageError names the rejected language code.
type UnsupportedLanguageError struct {
	Code string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language %q", e.Code)
}

func (e *UnsupportedLanguageError) Is(target error) bool {
	return target == ErrUnsupportedLanguage
}

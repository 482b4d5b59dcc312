package nuclide

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedLibrary is returned when a record names a library with no
	// configured remote location.
	ErrUnsupportedLibrary = errors.New("unsupported library")
	// ErrMissingRecord is returned when a selected id is absent from the catalog.
	// Selections only ever come from catalog rows, so this is an internal fault.
	ErrMissingRecord = errors.New("catalog record not found")
)

// FailureKind classifies a per-record fetch failure.
type FailureKind string

const (
	FailureUnsupportedLibrary FailureKind = "unsupported_library"
	FailureNetwork            FailureKind = "network"
	FailureDecode             FailureKind = "decode"
)

// FetchError reports why the series for one record could not be produced.
type FetchError struct {
	ID   int         `json:"id"`
	Key  string      `json:"key"`
	Kind FailureKind `json:"kind"`
	Err  error       `json:"-"`
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (id %d): %s: %v", e.Key, e.ID, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MissingRecordError wraps ErrMissingRecord with the offending id.
func MissingRecordError(id int) error {
	return fmt.Errorf("%w: id %d", ErrMissingRecord, id)
}

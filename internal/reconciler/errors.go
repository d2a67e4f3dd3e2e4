package reconciler

import (
	"errors"
	"fmt"

	"github.com/khrees2412/applytrack/pkg/models"
)

var (
	ErrUnknownRole = errors.New("unknown role")
	ErrNoIdentity  = errors.New("session has no user id")
)

// genericUpdateMessage is surfaced when the backend gives no error text.
const genericUpdateMessage = "failed to update application status"

// FetchError means a reconciliation cycle could not read from the backend.
// The last-known-good list is kept.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// EnrichmentError records a failed or empty per-item lookup. It never aborts
// a reconciliation.
type EnrichmentError struct {
	Key  models.ApplicationKey
	Kind string // "job" or "applicant"
	Err  error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("enrich %s %s: %v", e.Kind, e.Key, e.Err)
}

func (e *EnrichmentError) Unwrap() error { return e.Err }

// errEmptyLookup marks a lookup that succeeded but returned an empty document.
var errEmptyLookup = errors.New("empty document")

// StatusUpdateError is returned when a status write fails. Message is the
// backend's error text when present.
type StatusUpdateError struct {
	Key     models.ApplicationKey
	Message string
	Err     error
}

func (e *StatusUpdateError) Error() string {
	return fmt.Sprintf("update %s: %s", e.Key, e.Message)
}

func (e *StatusUpdateError) Unwrap() error { return e.Err }

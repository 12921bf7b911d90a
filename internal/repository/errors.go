package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidQuery = errors.New("query must not be empty")
	ErrInvalidPage  = errors.New("page must be at least 1")
	ErrNoRegistryID = errors.New("candidate has no registry id")
)

// FetchErrorKind classifies a failed page read.
type FetchErrorKind string

const (
	FetchErrorNetwork    FetchErrorKind = "network"
	FetchErrorHTTPStatus FetchErrorKind = "http_status"
)

// FetchError is returned when one page could not be read. It only ends
// pagination of the current sector.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchErrorHTTPStatus {
		return fmt.Sprintf("fetch %s: unexpected status code %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// PersistError is returned when one candidate could not be written.
type PersistError struct {
	RegistryID string
	Err        error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist company %s: %v", e.RegistryID, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

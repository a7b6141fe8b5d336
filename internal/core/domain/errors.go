package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures, distinct from
// infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPartitionRequired indicates a store query arrived without a
	// tenant/user partition. Queries never run unpartitioned.
	ErrPartitionRequired = errors.New("tenant/user partition required")

	// ErrLoadInProgress indicates a load batch is already running for
	// the session.
	ErrLoadInProgress = errors.New("load already in progress")

	// ErrSourceUnavailable indicates the document source could not be
	// reached or refused the request. Per-application: the batch
	// continues past it.
	ErrSourceUnavailable = errors.New("document source unavailable")

	// ErrAppNotFound indicates the document source no longer knows the
	// requested application.
	ErrAppNotFound = errors.New("application not found at source")

	// ErrSearchUnavailable indicates the ranked search engine is not
	// configured. Queries degrade to the store's substring ranking.
	ErrSearchUnavailable = errors.New("search engine unavailable")

	// ErrStaleEpoch indicates a worker outlived a session reset and its
	// results were discarded.
	ErrStaleEpoch = errors.New("stale load epoch")
)

// StorageError wraps a failure of the embedded store. Callers treat it
// as "no results yet" on the query path and as a per-application
// failure on the load path; it never crashes the query façade.
type StorageError struct {
	// Op is the store operation that failed, e.g. "upsert records".
	Op string

	// Err is the underlying driver error.
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err with the failed operation name.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

package artistry

import (
	"errors"
	"fmt"
	"strings"
)

// Error types
var (
	// ErrArtistNotFound indicates the targeted artist does not exist
	ErrArtistNotFound = errors.New("artist not found")

	// ErrTooManyOperations indicates the connection pool could not provide a
	// connection within the acquire timeout
	ErrTooManyOperations = errors.New("too many concurrent operations")

	// ErrNoBlobStore indicates an image operation was requested on a service
	// built without a blob store
	ErrNoBlobStore = errors.New("no blob store configured")
)

// ValidationError reports required fields that were missing or a value outside
// its allowed range. It is always returned before any write is attempted.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// ConstraintError is a database constraint violation translated into a stable
// message, so callers never match on raw driver errors.
type ConstraintError struct {
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint %s violated: %v", e.Constraint, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// ArtistError wraps the failure of one store operation with the artist it
// targeted. ArtistID is zero for operations that are not keyed by id.
type ArtistError struct {
	ArtistID int64
	Op       string
	Err      error
}

func (e *ArtistError) Error() string {
	if e.ArtistID == 0 {
		return fmt.Sprintf("artist operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("artist operation %s failed for artist %d: %v", e.Op, e.ArtistID, e.Err)
}

func (e *ArtistError) Unwrap() error {
	return e.Err
}

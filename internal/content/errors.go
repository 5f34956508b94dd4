package content

import (
	"errors"
	"fmt"
)

var (
	ErrLocationIDRequired   = errors.New("content: location id required")
	ErrCanonicalSlugTaken   = errors.New("content: canonical slug already holds content")
	ErrCanonicalUnresolved  = errors.New("content: canonical slug cannot be resolved")
	ErrRelocationConflict   = errors.New("content: relocation conflicts with an existing location")
	ErrColumnUnavailable    = errors.New("content: column not present in schema")
	ErrRelocatorUnavailable = errors.New("content: relocation not configured")
)

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

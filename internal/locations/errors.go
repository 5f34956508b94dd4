package locations

import (
	"errors"
	"fmt"
)

var (
	ErrIDRequired        = errors.New("locations: location id required")
	ErrTypeUnknown       = errors.New("locations: location type cannot be determined")
	ErrAncestorMissing   = errors.New("locations: ancestor chain incomplete")
	ErrAncestorMismatch  = errors.New("locations: ancestor chain does not match node")
	ErrSlugInvalid       = errors.New("locations: slug is not url safe")
	ErrSlugTaken         = errors.New("locations: slug already used by a sibling")
	ErrCanonicalTaken    = errors.New("locations: canonical slug already assigned to another location")
	ErrColumnUnavailable = errors.New("locations: column not present in schema")
	ErrDatasetInvalid    = errors.New("locations: dataset invalid")
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

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTree signals a structurally malformed filter tree node.
	ErrInvalidTree = errors.New("invalid filter tree")
	// ErrTreeTooLarge signals a filter tree exceeding the configured depth or width bounds.
	ErrTreeTooLarge = errors.New("filter tree too large")
	// ErrInvalidPagination signals a page or per_page outside the accepted range.
	ErrInvalidPagination = errors.New("invalid pagination")
	// ErrInvalidSuggestType signals an unsupported autocomplete field.
	ErrInvalidSuggestType = errors.New("invalid suggestion type")

	// ErrStoreTimeout signals that the record store missed the request deadline.
	ErrStoreTimeout = errors.New("record store timeout")
	// ErrStoreUnavailable signals a record store failure.
	ErrStoreUnavailable = errors.New("record store unavailable")
)

// TreeError wraps ErrInvalidTree with the location of the offending node.
type TreeError struct {
	Path   string
	Reason string
}

func (e *TreeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidTree.Error(), e.Reason)
	}
	return fmt.Sprintf("%s at %s: %s", ErrInvalidTree.Error(), e.Path, e.Reason)
}

func (e *TreeError) Unwrap() error { return ErrInvalidTree }

// NewTreeError creates a structural validation error for the node at path.
func NewTreeError(path, reason string) error {
	return &TreeError{Path: path, Reason: reason}
}

package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a missing scenario or resource reference.
type NotFoundError struct {
	// Kind is what was looked up (e.g. "cluster scenario", "pod").
	Kind string
	// Name is the id or name that did not resolve.
	Name string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ErrNotFound.Error()
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsNotFound reports whether err indicates a missing scenario or resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

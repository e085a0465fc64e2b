package service

import (
	"errors"
	"fmt"
)

// ErrNoFile is returned when an upload carries no data.
var ErrNoFile = errors.New("no file uploaded")

// DuplicateNameError reports that another item already uses the name.
// Name holds the normalized form that collided.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s already exists", e.Name)
}

// IsDuplicateName reports whether err is, or wraps, a *DuplicateNameError.
func IsDuplicateName(err error) bool {
	var dup *DuplicateNameError
	return errors.As(err, &dup)
}

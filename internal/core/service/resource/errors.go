package resource

import (
	"errors"
	"fmt"
)

var (
	// id errors
	ErrEmptyRecordID = errors.New("record ID cannot be empty")

	// resource errors
	ErrEmptyResourceName = errors.New("resource name cannot be empty")
	ErrResourceNotFound  = errors.New("resource not found")

	// record errors
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidRecord  = errors.New("record is invalid")
)

// PersistenceError reports a failure to read or write the backing store.
type PersistenceError struct {
	Op   string // "load" or "persist"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s dataset: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s dataset %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

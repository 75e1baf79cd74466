package errors

import "errors"

var (
	ErrNotFound = errors.New("professional not found")

	ErrDuplicatePhone = errors.New("professional phone already registered")
)

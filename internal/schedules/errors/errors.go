package errors

import "errors"

var (
	ErrNotFound = errors.New("schedule not found")

	ErrAlreadyExists = errors.New("schedule already exists")
)

package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a skill with the same name and category exists.
var ErrDuplicate = errors.New("duplicate record")

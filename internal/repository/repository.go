package repository

import "errors"

// ErrNotFound is returned (wrapped) when a row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned (wrapped) when a unique key or state precondition fails.
var ErrConflict = errors.New("conflict")

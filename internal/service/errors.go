package service

import "errors"

var (
	// ErrBadRequest wraps input the caller can fix.
	ErrBadRequest = errors.New("bad request")
	ErrNoMove     = errors.New("no move available")
)

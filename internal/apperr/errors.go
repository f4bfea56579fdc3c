// Package apperr holds the sentinel errors shared across pagesmith packages.
package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnclassifiable = errors.New("no processor accepted document")
)

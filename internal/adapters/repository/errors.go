package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("player not found")
	ErrEmptyKey     = errors.New("record key must not be empty")
	ErrUnknownStore = errors.New("unknown store driver")
)

package model

import (
	"errors"
)

// ErrInvalidMode is returned by ParseMode for anything other than club or both.
var ErrInvalidMode = errors.New("invalid link type")

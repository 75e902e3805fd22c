package career

import (
	"errors"
)

// ErrMalformedCareer marks career text that is not a JSON array of [label, team] pairs.
var ErrMalformedCareer = errors.New("malformed career")

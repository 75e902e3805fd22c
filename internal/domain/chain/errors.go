package chain

import (
	"errors"
)

// ErrChainTooShort is returned when fewer than two players are submitted.
var ErrChainTooShort = errors.New("chain needs at least two players")

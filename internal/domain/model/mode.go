package model

import (
	"fmt"
	"strings"
)

// Mode selects which service sets count towards adjacency.
type Mode string

const (
	// ModeClub links players through club service only.
	ModeClub Mode = "club"
	// ModeBoth links players through club or international service.
	ModeBoth Mode = "both"
)

// ParseMode parses a link type. Empty input means ModeBoth.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeBoth:
		return ModeBoth, nil
	case ModeClub:
		return ModeClub, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// IncludesIntl reports whether international service counts under m.
func (m Mode) IncludesIntl() bool { return m != ModeClub }

func (m Mode) String() string { return string(m) }

package importer

import "errors"

var (
	// ErrMalformedBlock is returned for a dump block without the
	// "Player Name:" and "Wikipedia URL:" header lines.
	ErrMalformedBlock = errors.New("malformed player block")

	// ErrNoPlayers is returned when a dump yields no storable record. The
	// store is left untouched so an empty file cannot wipe it.
	ErrNoPlayers = errors.New("dump contains no players")

	// ErrRead wraps failures reading the dump.
	ErrRead = errors.New("read dump")

	// ErrWrite wraps failures writing records to the store.
	ErrWrite = errors.New("write records")

	// ErrWatch wraps failures setting up the file watcher.
	ErrWatch = errors.New("watch dump")
)

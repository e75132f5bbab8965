package services

import "errors"

var (
	// ErrNoActiveEncounter is returned when registration is attempted
	// while no encounter is currently open. Registration never falls back
	// to a default encounter.
	ErrNoActiveEncounter = errors.New("no active encounter")

	// ErrNotFound marks a point lookup that resolved to nothing where the
	// caller required a record.
	ErrNotFound = errors.New("not found")
)

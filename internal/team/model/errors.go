package model

import "errors"

var (
	// ErrTeamExists indicates that a team with the given name already exists.
	ErrTeamExists = errors.New("team already exists")
	// ErrTeamNotFound indicates that the requested team does not exist.
	ErrTeamNotFound = errors.New("team not found")
	// ErrInvalidTeamName indicates that the provided team name is invalid (e.g., empty).
	ErrInvalidTeamName = errors.New("invalid team name")
	// ErrInvalidFollowers indicates a negative follower count.
	ErrInvalidFollowers = errors.New("followers must be non-negative")
	// ErrNoCapacity indicates that a division has no league slot left for a team.
	ErrNoCapacity = errors.New("no league capacity left in division")
)

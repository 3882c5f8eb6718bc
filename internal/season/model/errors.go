package model

import "errors"

var (
	// ErrSeasonNotFound indicates that the requested season does not exist.
	ErrSeasonNotFound = errors.New("season not found")
	// ErrNoActiveSeason indicates that no season is currently active.
	ErrNoActiveSeason = errors.New("no active season")
	// ErrSeasonCompleted indicates an operation on an already completed season.
	ErrSeasonCompleted = errors.New("season already completed")
	// ErrTransitionBlocked indicates that unfinished matches or unresolved
	// playoffs prevent closing the season. The whole transition is rejected;
	// the season stays open for retry.
	ErrTransitionBlocked = errors.New("season transition blocked")
	// ErrPromotionOverflow indicates that a league would promote more teams
	// than promote_slots plus promote_playoff_slots allow.
	ErrPromotionOverflow = errors.New("promoted teams exceed configured slots")
)

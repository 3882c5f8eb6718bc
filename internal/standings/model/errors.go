package model

import "errors"

var (
	// ErrCorruptMatchData indicates a finished match with missing goal
	// values. Recompute fails fast instead of skipping the match.
	ErrCorruptMatchData = errors.New("corrupt match data")
	// ErrStandingsNotFound indicates no standings exist for the season and league.
	ErrStandingsNotFound = errors.New("standings not found")
)

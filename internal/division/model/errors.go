package model

import "errors"

var (
	// ErrDivisionNotFound indicates that the requested division does not exist.
	ErrDivisionNotFound = errors.New("division not found")
	// ErrLeagueNotFound indicates that the requested league does not exist.
	ErrLeagueNotFound = errors.New("league not found")
	// ErrInvalidDivisionConfig indicates that division slot counts violate the
	// teams-per-league invariants.
	ErrInvalidDivisionConfig = errors.New("invalid division configuration")
)

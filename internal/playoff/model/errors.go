package model

import "errors"

var (
	// ErrPlayoffsNotReady indicates that regular matches or standings are
	// not final for every league of the division.
	ErrPlayoffsNotReady = errors.New("playoffs not ready")
	// ErrAlreadyOrganized indicates that playoff matches already exist for
	// the season and division.
	ErrAlreadyOrganized = errors.New("playoffs already organized")
	// ErrPlayoffDrawNotAllowed indicates a playoff tie that would end level.
	// A draw is an invalid terminal state for any playoff series.
	ErrPlayoffDrawNotAllowed = errors.New("playoff draw not allowed")
	// ErrNoPlayoffSlots indicates the division is configured without a
	// promotion playoff.
	ErrNoPlayoffSlots = errors.New("division has no playoff slots")
	// ErrNotPlayoffMatch indicates a regular match was submitted to the
	// playoff result endpoint.
	ErrNotPlayoffMatch = errors.New("match is not a playoff match")
	// ErrUnexpectedPenalties indicates a shootout result on a match that
	// does not need one.
	ErrUnexpectedPenalties = errors.New("penalties not expected for this match")
)

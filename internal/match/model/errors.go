package model

import "errors"

var (
	// ErrMatchNotFound indicates that the requested match does not exist.
	ErrMatchNotFound = errors.New("match not found")
	// ErrInvalidRosterSize indicates an odd or too small team count for
	// fixture generation.
	ErrInvalidRosterSize = errors.New("invalid roster size")
	// ErrInvalidMatchdaySpacing indicates days_per_matchday outside [1,30].
	ErrInvalidMatchdaySpacing = errors.New("days per matchday must be between 1 and 30")
	// ErrAlreadyGenerated indicates that fixtures already exist for the
	// season and league. Generation is guarded, not merged; existing
	// matches must be deleted explicitly first.
	ErrAlreadyGenerated = errors.New("schedule already generated")
	// ErrScheduleIntegrity indicates that a generated fixture set failed
	// verification. Nothing is persisted in that case.
	ErrScheduleIntegrity = errors.New("schedule integrity check failed")
	// ErrInvalidGoals indicates negative or missing goal values.
	ErrInvalidGoals = errors.New("goals must be non-negative integers")
	// ErrMatchAlreadyFinished indicates a result was already recorded.
	ErrMatchAlreadyFinished = errors.New("match already finished")
	// ErrMatchCancelled indicates that a cancelled match cannot take a result.
	ErrMatchCancelled = errors.New("match is cancelled")
	// ErrPlayoffResultRoute indicates that a playoff result was submitted
	// through the regular result endpoint; playoff results go through the
	// playoff engine so decisiveness can be validated.
	ErrPlayoffResultRoute = errors.New("playoff results must be recorded via the playoff engine")
)

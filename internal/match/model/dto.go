// Package model provides domain models and DTOs for match module.
package model

import "time"

// GenerateScheduleRequest represents the request to generate league fixtures.
type GenerateScheduleRequest struct {
	LeagueID        int64     `json:"league_id" binding:"required"`
	SeasonID        int64     `json:"season_id" binding:"required"`
	StartDate       time.Time `json:"start_date" binding:"required"`
	DaysPerMatchday int       `json:"days_per_matchday" binding:"required"`
}

// RecordResultRequest represents the request to record a regular match result.
type RecordResultRequest struct {
	MatchID   int64 `json:"match_id" binding:"required"`
	HomeGoals *int  `json:"home_goals" binding:"required"`
	AwayGoals *int  `json:"away_goals" binding:"required"`
}

// SimulateRequest represents the request to simulate scheduled matches.
type SimulateRequest struct {
	SeasonID int64 `json:"season_id" binding:"required"`
	LeagueID int64 `json:"league_id" binding:"required"`
	Matchday int   `json:"matchday"`
}

// Filter narrows GetMatches queries. Zero values mean "no filter".
type Filter struct {
	SeasonID     int64
	LeagueID     int64
	DivisionID   int64
	TeamID       int64
	Matchday     int
	Status       string
	IsPlayoff    *bool
	PlayoffRound string
}

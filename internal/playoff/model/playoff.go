// Package model provides domain types for the playoff module.
package model

// Division playoff stages, derived from match state, never stored.
const (
	StageRegularSeason      = "RegularSeason"
	StagePlayoffsPending    = "PlayoffsPending"
	StagePlayoffsInProgress = "PlayoffsInProgress"
	StagePlayoffsComplete   = "PlayoffsComplete"
	// StageComplete applies to divisions with no playoff slots once all
	// regular matches finish.
	StageComplete = "Complete"
)

// OrganizeRequest represents the request to build a division's playoff bracket.
type OrganizeRequest struct {
	DivisionID int64 `json:"division_id" binding:"required"`
	SeasonID   int64 `json:"season_id" binding:"required"`
}

// RecordResultRequest represents the request to record a playoff match
// result. Penalties are only accepted when a shootout is required to break
// a level tie.
type RecordResultRequest struct {
	MatchID       int64 `json:"match_id" binding:"required"`
	HomeGoals     *int  `json:"home_goals" binding:"required"`
	AwayGoals     *int  `json:"away_goals" binding:"required"`
	HomePenalties *int  `json:"home_penalties"`
	AwayPenalties *int  `json:"away_penalties"`
}

// NotReady explains why a division's bracket cannot be built yet. Returned
// as a structured result so callers can poll, not as an error.
type NotReady struct {
	LeagueID          int64  `json:"league_id"`
	Reason            string `json:"reason"`
	UnfinishedMatches int    `json:"unfinished_matches,omitempty"`
}

// TieOutcome identifies the decided winner of a playoff tie.
type TieOutcome struct {
	LeagueID     int64  `json:"league_id"`
	Round        string `json:"round"`
	WinnerTeamID int64  `json:"winner_team_id"`
	LoserTeamID  int64  `json:"loser_team_id"`
}

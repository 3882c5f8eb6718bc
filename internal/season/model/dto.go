// Package model provides domain models and DTOs for season module.
package model

// MovementEntry describes one team movement in the closure report.
type MovementEntry struct {
	TeamID      int64  `json:"team_id"`
	DivisionID  int64  `json:"division_id"`
	LeagueID    int64  `json:"league_id"`
	Position    int    `json:"position"`
	TargetLevel int    `json:"target_level"`
	Reason      string `json:"reason"`
}

// QualifierEntry describes one tournament qualification (no league movement).
type QualifierEntry struct {
	TeamID   int64 `json:"team_id"`
	LeagueID int64 `json:"league_id"`
	Position int   `json:"position"`
}

// PendingEntry describes a league that blocks the season transition.
type PendingEntry struct {
	DivisionID        int64  `json:"division_id"`
	LeagueID          int64  `json:"league_id,omitempty"`
	Reason            string `json:"reason"`
	UnfinishedMatches int    `json:"unfinished_matches,omitempty"`
}

// ClosureReport summarizes the end-of-season state of every division.
// PendingPlayoffs or Errors being non-empty blocks ExecuteTransition.
type ClosureReport struct {
	SeasonID             int64            `json:"season_id"`
	Promotions           []MovementEntry  `json:"promotions"`
	Relegations          []MovementEntry  `json:"relegations"`
	TournamentQualifiers []QualifierEntry `json:"tournament_qualifiers"`
	PendingPlayoffs      []PendingEntry   `json:"pending_playoffs"`
	Errors               []string         `json:"errors"`
}

// Ready reports whether the season can be closed.
func (r *ClosureReport) Ready() bool {
	return len(r.PendingPlayoffs) == 0 && len(r.Errors) == 0
}

// TransitionRequest represents the request to close a season.
type TransitionRequest struct {
	SeasonID int64 `json:"season_id" binding:"required"`
}

// TransitionResponse represents the result of a season transition.
type TransitionResponse struct {
	NewSeasonID int64 `json:"new_season_id"`
	Year        int   `json:"year"`
}

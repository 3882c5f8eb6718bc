//go:build e2e
// +build e2e

package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *E2ETestSuite) TestHealth() {
	resp, body := s.getJSON("/health")
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Contains(s.T(), string(body), "ok")
}

func (s *E2ETestSuite) TestTeamRegistration() {
	resp, body := s.postJSON("/teams/register", map[string]any{
		"name": "fc_viral", "followers": 1_000_000,
	})
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode, "body: %s", body)

	var created struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(s.T(), json.Unmarshal(body, &created))
	assert.NotZero(s.T(), created.ID)

	resp, body = s.postJSON("/teams/register", map[string]any{
		"name": "fc_viral", "followers": 5,
	})
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)
	assert.Contains(s.T(), string(body), "TEAM_EXISTS")

	resp, body = s.getJSON("/teams")
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var listed struct {
		Teams []struct {
			Name string `json:"name"`
		} `json:"teams"`
	}
	require.NoError(s.T(), json.Unmarshal(body, &listed))
	require.Len(s.T(), listed.Teams, 1)
	assert.Equal(s.T(), "fc_viral", listed.Teams[0].Name)
}

// seedLeagueWorld inserts one top-flight league of four teams with an
// active season, bypassing the API the way the seed CLI would.
func (s *E2ETestSuite) seedLeagueWorld() {
	statements := []string{
		`INSERT INTO seasons (id, year, start_date, is_active, is_completed)
		 VALUES (1, 2025, '2025-01-01', TRUE, FALSE)`,
		`INSERT INTO divisions (id, level, name, total_leagues, teams_per_league,
		                        promote_slots, promote_playoff_slots, relegate_slots,
		                        european_slots, two_legged_semifinals, two_legged_final)
		 VALUES (1, 1, 'Division 1', 1, 4, 0, 0, 0, 2, TRUE, FALSE)`,
		`INSERT INTO leagues (id, division_id, group_code, max_teams)
		 VALUES (1, 1, 'A', 4)`,
	}
	for i := 1; i <= 4; i++ {
		statements = append(statements,
			fmt.Sprintf(`INSERT INTO teams (id, name, followers) VALUES (%d, 'team_%d', %d)`,
				i, i, (5-i)*100000),
			fmt.Sprintf(`INSERT INTO team_league_assignments (team_id, league_id, season_id, reason, ranking_metric)
			 VALUES (%d, 1, 1, 'initial-ranking', %d)`, i, (5-i)*100000),
		)
	}
	for _, stmt := range statements {
		require.NoError(s.T(), s.db.Exec(stmt).Error)
	}
}

func (s *E2ETestSuite) TestFullSeasonLifecycle() {
	s.seedLeagueWorld()

	// Double round robin for four teams: twelve matches over six matchdays.
	resp, body := s.postJSON("/schedule/generate", map[string]any{
		"league_id":         1,
		"season_id":         1,
		"start_date":        "2025-01-01T00:00:00Z",
		"days_per_matchday": 7,
	})
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode, "body: %s", body)

	var schedule struct {
		Matches []struct {
			Matchday int `json:"matchday"`
		} `json:"matches"`
	}
	require.NoError(s.T(), json.Unmarshal(body, &schedule))
	require.Len(s.T(), schedule.Matches, 12)

	// Simulate the whole season in one sweep.
	resp, body = s.postJSON("/matches/simulate", map[string]any{
		"season_id": 1, "league_id": 1,
	})
	require.Equal(s.T(), http.StatusOK, resp.StatusCode, "body: %s", body)

	resp, body = s.getJSON("/standings?season_id=1&league_id=1")
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var standings struct {
		Standings []struct {
			Position int `json:"position"`
			Played   int `json:"played"`
			Points   int `json:"points"`
		} `json:"standings"`
	}
	require.NoError(s.T(), json.Unmarshal(body, &standings))
	require.Len(s.T(), standings.Standings, 4)
	assert.Equal(s.T(), 1, standings.Standings[0].Position)
	for _, row := range standings.Standings {
		assert.Equal(s.T(), 6, row.Played)
	}

	resp, body = s.getJSON("/seasons/closure-report?season_id=1")
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var report struct {
		PendingPlayoffs      []any `json:"pending_playoffs"`
		Errors               []any `json:"errors"`
		TournamentQualifiers []struct {
			Position int `json:"position"`
		} `json:"tournament_qualifiers"`
	}
	require.NoError(s.T(), json.Unmarshal(body, &report))
	assert.Empty(s.T(), report.PendingPlayoffs)
	assert.Empty(s.T(), report.Errors)
	assert.Len(s.T(), report.TournamentQualifiers, 2)

	resp, body = s.postJSON("/seasons/transition", map[string]any{"season_id": 1})
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode, "body: %s", body)
	var transition struct {
		NewSeasonID int64 `json:"new_season_id"`
		Year        int   `json:"year"`
	}
	require.NoError(s.T(), json.Unmarshal(body, &transition))
	assert.Equal(s.T(), 2026, transition.Year)

	// Every team carries over into the new season.
	var assigned int64
	require.NoError(s.T(), s.db.Table("team_league_assignments").
		Where("season_id = ?", transition.NewSeasonID).Count(&assigned).Error)
	assert.Equal(s.T(), int64(4), assigned)

	// A second transition on the closed season is rejected.
	resp, body = s.postJSON("/seasons/transition", map[string]any{"season_id": 1})
	assert.Equal(s.T(), http.StatusConflict, resp.StatusCode)
	assert.Contains(s.T(), string(body), "TRANSITION_BLOCKED")
}

func (s *E2ETestSuite) TestScheduleConflicts() {
	s.seedLeagueWorld()

	payload := map[string]any{
		"league_id":         1,
		"season_id":         1,
		"start_date":        "2025-01-01T00:00:00Z",
		"days_per_matchday": 7,
	}
	resp, _ := s.postJSON("/schedule/generate", payload)
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)

	resp, body := s.postJSON("/schedule/generate", payload)
	assert.Equal(s.T(), http.StatusConflict, resp.StatusCode)
	assert.Contains(s.T(), string(body), "ALREADY_GENERATED")
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	divisionModel "github.com/jarruego/tiktok-league/internal/division/model"
	divisionRepository "github.com/jarruego/tiktok-league/internal/division/repository"
	matchModel "github.com/jarruego/tiktok-league/internal/match/model"
	playoffModel "github.com/jarruego/tiktok-league/internal/playoff/model"
	playoffRepository "github.com/jarruego/tiktok-league/internal/playoff/repository"
	playoffService "github.com/jarruego/tiktok-league/internal/playoff/service"
	seasonModel "github.com/jarruego/tiktok-league/internal/season/model"
	"github.com/jarruego/tiktok-league/internal/season/repository"
	standingsModel "github.com/jarruego/tiktok-league/internal/standings/model"
	teamModel "github.com/jarruego/tiktok-league/internal/team/model"
	teamRepository "github.com/jarruego/tiktok-league/internal/team/repository"
	teamService "github.com/jarruego/tiktok-league/internal/team/service"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&seasonModel.Season{},
		&divisionModel.Division{},
		&divisionModel.League{},
		&teamModel.Team{},
		&seasonModel.TeamLeagueAssignment{},
		&matchModel.Match{},
		&standingsModel.Standing{},
	)
	require.NoError(t, err)

	return db
}

// world is a two-tier pyramid with four teams per league, fully decided:
// standings in place, no matches outstanding. The top division relegates one
// team and sends two to Europe; the second promotes its winner.
type world struct {
	svc      Service
	playoffs playoffService.Service
	db       *gorm.DB
	season   *seasonModel.Season
	div1     *divisionModel.Division
	div2     *divisionModel.Division
	league1  *divisionModel.League
	league2  *divisionModel.League
	teamIDs  []int64
}

func setupWorld(t *testing.T) *world {
	db := setupTestDB(t)

	w := &world{db: db}
	w.season = &seasonModel.Season{
		Year:      2025,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive:  true,
	}
	require.NoError(t, db.Create(w.season).Error)

	w.div1 = &divisionModel.Division{
		Level: 1, Name: "Division 1", TotalLeagues: 1, TeamsPerLeague: 4,
		RelegateSlots: 1, EuropeanSlots: 2,
	}
	w.div2 = &divisionModel.Division{
		Level: 2, Name: "Division 2", TotalLeagues: 1, TeamsPerLeague: 4,
		PromoteSlots: 1,
	}
	require.NoError(t, db.Create(w.div1).Error)
	require.NoError(t, db.Create(w.div2).Error)

	w.league1 = &divisionModel.League{DivisionID: w.div1.ID, GroupCode: "A", MaxTeams: 5}
	w.league2 = &divisionModel.League{DivisionID: w.div2.ID, GroupCode: "A", MaxTeams: 6}
	require.NoError(t, db.Create(w.league1).Error)
	require.NoError(t, db.Create(w.league2).Error)

	names := []string{"ath", "bar", "cel", "dep", "eib", "fer", "gij", "hue"}
	for i, name := range names {
		team := &teamModel.Team{Name: name, Followers: int64((len(names) - i) * 1000)}
		require.NoError(t, db.Create(team).Error)
		w.teamIDs = append(w.teamIDs, team.ID)

		league := w.league1
		position := i + 1
		if i >= 4 {
			league = w.league2
			position = i - 3
		}
		require.NoError(t, db.Create(&seasonModel.TeamLeagueAssignment{
			TeamID: team.ID, LeagueID: league.ID, SeasonID: w.season.ID,
			Reason: seasonModel.ReasonInitialRanking,
		}).Error)
		require.NoError(t, db.Create(&standingsModel.Standing{
			SeasonID: w.season.ID, LeagueID: league.ID, TeamID: team.ID,
			Position: position, Played: 6, Points: (5 - position) * 3,
		}).Error)
	}

	logger := zap.NewNop().Sugar()
	w.playoffs = playoffService.New(playoffRepository.New(db), db, logger)
	assigner := teamService.New(teamRepository.New(db), db, logger)
	w.svc = New(
		repository.New(db),
		divisionRepository.New(db),
		teamRepository.New(db),
		w.playoffs,
		assigner,
		db,
		logger,
	)
	return w
}

func (w *world) report(t *testing.T) *seasonModel.ClosureReport {
	t.Helper()
	report, err := w.svc.ClosureReport(context.Background(), w.season.ID)
	require.NoError(t, err)
	return report
}

func movementTeams(moves []seasonModel.MovementEntry) []int64 {
	out := make([]int64, len(moves))
	for i, m := range moves {
		out[i] = m.TeamID
	}
	return out
}

func TestService_ClosureReport(t *testing.T) {
	t.Run("collects movements for a decided season", func(t *testing.T) {
		w := setupWorld(t)
		report := w.report(t)

		assert.True(t, report.Ready())
		assert.Empty(t, report.PendingPlayoffs)
		assert.Empty(t, report.Errors)

		// Second division winner goes up, bottom of the top flight goes down.
		require.Len(t, report.Promotions, 1)
		assert.Equal(t, w.teamIDs[4], report.Promotions[0].TeamID)
		assert.Equal(t, 1, report.Promotions[0].TargetLevel)
		assert.Equal(t, seasonModel.ReasonPromotion, report.Promotions[0].Reason)

		require.Len(t, report.Relegations, 1)
		assert.Equal(t, w.teamIDs[3], report.Relegations[0].TeamID)
		assert.Equal(t, 2, report.Relegations[0].TargetLevel)

		require.Len(t, report.TournamentQualifiers, 2)
		assert.Equal(t, w.teamIDs[0], report.TournamentQualifiers[0].TeamID)
		assert.Equal(t, w.teamIDs[1], report.TournamentQualifiers[1].TeamID)
	})

	t.Run("unfinished matches block the division's movements", func(t *testing.T) {
		w := setupWorld(t)
		require.NoError(t, w.db.Create(&matchModel.Match{
			SeasonID: w.season.ID, LeagueID: w.league1.ID,
			HomeTeamID: w.teamIDs[0], AwayTeamID: w.teamIDs[1],
			Matchday:      6,
			ScheduledDate: time.Now(),
			Status:        matchModel.StatusScheduled,
		}).Error)

		report := w.report(t)
		assert.False(t, report.Ready())
		require.Len(t, report.PendingPlayoffs, 1)
		assert.Equal(t, w.div1.ID, report.PendingPlayoffs[0].DivisionID)
		assert.Equal(t, 1, report.PendingPlayoffs[0].UnfinishedMatches)

		// The top division is skipped; the second still reports.
		assert.Empty(t, report.Relegations)
		assert.Equal(t, []int64{w.teamIDs[4]}, movementTeams(report.Promotions))
	})

	t.Run("open playoffs block the transition", func(t *testing.T) {
		w := setupWorld(t)
		require.NoError(t, w.db.Model(w.div2).Update("promote_playoff_slots", 2).Error)

		report := w.report(t)
		assert.False(t, report.Ready())
		require.Len(t, report.PendingPlayoffs, 1)
		assert.Contains(t, report.PendingPlayoffs[0].Reason, playoffModel.StagePlayoffsPending)
	})

	t.Run("incomplete standings surface as errors", func(t *testing.T) {
		w := setupWorld(t)
		require.NoError(t, w.db.
			Where("season_id = ? AND league_id = ? AND team_id = ?", w.season.ID, w.league2.ID, w.teamIDs[7]).
			Delete(&standingsModel.Standing{}).Error)

		report := w.report(t)
		assert.False(t, report.Ready())
		require.Len(t, report.Errors, 1)
		assert.Contains(t, report.Errors[0], "standings cover")
	})

	t.Run("playoff winner joins the promotions", func(t *testing.T) {
		w := setupWorld(t)
		require.NoError(t, w.db.Model(w.div2).Update("promote_playoff_slots", 2).Error)

		// Anchor the playoff calendar, then play the single final.
		goals := 2
		require.NoError(t, w.db.Create(&matchModel.Match{
			SeasonID: w.season.ID, LeagueID: w.league2.ID,
			HomeTeamID: w.teamIDs[4], AwayTeamID: w.teamIDs[5],
			Matchday:      6,
			ScheduledDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Status:        matchModel.StatusFinished,
			HomeGoals:     &goals, AwayGoals: new(int),
		}).Error)

		ctx := context.Background()
		organized, err := w.playoffs.Organize(ctx, &playoffModel.OrganizeRequest{
			DivisionID: w.div2.ID, SeasonID: w.season.ID,
		})
		require.NoError(t, err)
		require.True(t, organized.Ready)
		require.Len(t, organized.Matches, 1, "two playoff slots make a single final")

		final := organized.Matches[0]
		assert.Equal(t, w.teamIDs[5], final.HomeTeamID, "better seed hosts")
		assert.Equal(t, w.teamIDs[6], final.AwayTeamID)

		one := 1
		_, err = w.playoffs.RecordResult(ctx, &playoffModel.RecordResultRequest{
			MatchID: final.ID, HomeGoals: &one, AwayGoals: new(int),
		})
		require.NoError(t, err)

		report := w.report(t)
		assert.True(t, report.Ready())
		require.Len(t, report.Promotions, 2)
		assert.Equal(t, w.teamIDs[4], report.Promotions[0].TeamID)
		assert.Equal(t, seasonModel.ReasonPlayoffWin, report.Promotions[1].Reason)
		assert.Equal(t, w.teamIDs[5], report.Promotions[1].TeamID)
	})

	t.Run("unknown season", func(t *testing.T) {
		w := setupWorld(t)
		_, err := w.svc.ClosureReport(context.Background(), 999)
		assert.ErrorIs(t, err, seasonModel.ErrSeasonNotFound)
	})
}

func assignmentsFor(t *testing.T, db *gorm.DB, seasonID int64) map[int64]seasonModel.TeamLeagueAssignment {
	t.Helper()
	var rows []seasonModel.TeamLeagueAssignment
	require.NoError(t, db.Where("season_id = ?", seasonID).Find(&rows).Error)
	out := make(map[int64]seasonModel.TeamLeagueAssignment, len(rows))
	for _, row := range rows {
		out[row.TeamID] = row
	}
	return out
}

func TestService_ExecuteTransition(t *testing.T) {
	ctx := context.Background()

	t.Run("closes the season and rebuilds the pyramid", func(t *testing.T) {
		w := setupWorld(t)

		// One unregistered newcomer joins at the bottom.
		rookie := &teamModel.Team{Name: "rookie", Followers: 50}
		require.NoError(t, w.db.Create(rookie).Error)

		resp, err := w.svc.ExecuteTransition(ctx, &seasonModel.TransitionRequest{SeasonID: w.season.ID})
		require.NoError(t, err)
		assert.Equal(t, 2026, resp.Year)

		var closed seasonModel.Season
		require.NoError(t, w.db.First(&closed, w.season.ID).Error)
		assert.False(t, closed.IsActive)
		assert.True(t, closed.IsCompleted)

		var opened seasonModel.Season
		require.NoError(t, w.db.First(&opened, resp.NewSeasonID).Error)
		assert.True(t, opened.IsActive)
		assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), opened.StartDate.UTC())

		assignments := assignmentsFor(t, w.db, resp.NewSeasonID)
		require.Len(t, assignments, 9)

		// Promoted winner moves up, relegated side drops, rookie starts at
		// the bottom, everyone else stays put.
		assert.Equal(t, w.league1.ID, assignments[w.teamIDs[4]].LeagueID)
		assert.Equal(t, seasonModel.ReasonPromotion, assignments[w.teamIDs[4]].Reason)

		assert.Equal(t, w.league2.ID, assignments[w.teamIDs[3]].LeagueID)
		assert.Equal(t, seasonModel.ReasonRelegation, assignments[w.teamIDs[3]].Reason)

		assert.Equal(t, w.league1.ID, assignments[w.teamIDs[0]].LeagueID)
		assert.Equal(t, seasonModel.ReasonInitialRanking, assignments[w.teamIDs[0]].Reason)

		assert.Equal(t, w.league2.ID, assignments[rookie.ID].LeagueID)
		assert.Equal(t, seasonModel.ReasonInitialRanking, assignments[rookie.ID].Reason)
	})

	t.Run("blocked seasons change nothing", func(t *testing.T) {
		w := setupWorld(t)
		require.NoError(t, w.db.Create(&matchModel.Match{
			SeasonID: w.season.ID, LeagueID: w.league1.ID,
			HomeTeamID: w.teamIDs[0], AwayTeamID: w.teamIDs[1],
			Matchday:      6,
			ScheduledDate: time.Now(),
			Status:        matchModel.StatusScheduled,
		}).Error)

		_, err := w.svc.ExecuteTransition(ctx, &seasonModel.TransitionRequest{SeasonID: w.season.ID})
		assert.ErrorIs(t, err, seasonModel.ErrTransitionBlocked)

		var seasons int64
		require.NoError(t, w.db.Model(&seasonModel.Season{}).Count(&seasons).Error)
		assert.Equal(t, int64(1), seasons)

		var active seasonModel.Season
		require.NoError(t, w.db.First(&active, w.season.ID).Error)
		assert.True(t, active.IsActive)
	})

	t.Run("completed seasons cannot transition twice", func(t *testing.T) {
		w := setupWorld(t)
		_, err := w.svc.ExecuteTransition(ctx, &seasonModel.TransitionRequest{SeasonID: w.season.ID})
		require.NoError(t, err)

		_, err = w.svc.ExecuteTransition(ctx, &seasonModel.TransitionRequest{SeasonID: w.season.ID})
		assert.ErrorIs(t, err, seasonModel.ErrSeasonCompleted)
	})

	t.Run("overflow from a full division cascades down", func(t *testing.T) {
		w := setupWorld(t)

		// No relegation and a four-team cap: the promoted side squeezes the
		// weakest incumbent out of the top flight.
		require.NoError(t, w.db.Model(w.div1).Update("relegate_slots", 0).Error)
		require.NoError(t, w.db.Model(w.league1).Update("max_teams", 4).Error)

		resp, err := w.svc.ExecuteTransition(ctx, &seasonModel.TransitionRequest{SeasonID: w.season.ID})
		require.NoError(t, err)

		assignments := assignmentsFor(t, w.db, resp.NewSeasonID)
		assert.Equal(t, w.league1.ID, assignments[w.teamIDs[4]].LeagueID)
		assert.Equal(t, w.league2.ID, assignments[w.teamIDs[3]].LeagueID)
		assert.Equal(t, seasonModel.ReasonFallback, assignments[w.teamIDs[3]].Reason)
	})

	t.Run("teams that fit nowhere abort the transition", func(t *testing.T) {
		w := setupWorld(t)
		require.NoError(t, w.db.Model(w.league2).Update("max_teams", 3).Error)

		_, err := w.svc.ExecuteTransition(ctx, &seasonModel.TransitionRequest{SeasonID: w.season.ID})
		assert.ErrorIs(t, err, seasonModel.ErrPromotionOverflow)

		var seasons int64
		require.NoError(t, w.db.Model(&seasonModel.Season{}).Count(&seasons).Error)
		assert.Equal(t, int64(1), seasons, "transaction rolled back")
	})
}

func TestService_GetActiveSeason(t *testing.T) {
	w := setupWorld(t)
	season, err := w.svc.GetActiveSeason(context.Background())
	require.NoError(t, err)
	assert.Equal(t, w.season.ID, season.ID)
	assert.True(t, season.IsActive)
}

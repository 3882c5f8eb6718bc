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

	matchModel "github.com/jarruego/tiktok-league/internal/match/model"
	seasonModel "github.com/jarruego/tiktok-league/internal/season/model"
	standingsModel "github.com/jarruego/tiktok-league/internal/standings/model"
	"github.com/jarruego/tiktok-league/internal/standings/repository"
	teamModel "github.com/jarruego/tiktok-league/internal/team/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&teamModel.Team{},
		&seasonModel.TeamLeagueAssignment{},
		&matchModel.Match{},
		&standingsModel.Standing{},
	)
	require.NoError(t, err)

	return db
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	db := setupTestDB(t)
	return New(repository.New(db), db, zap.NewNop().Sugar()), db
}

// seedTeams creates teams with descending follower counts and assigns them
// to league 1 of season 1.
func seedTeams(t *testing.T, db *gorm.DB, names ...string) []int64 {
	ids := make([]int64, 0, len(names))
	for i, name := range names {
		team := &teamModel.Team{Name: name, Followers: int64((len(names) - i) * 1000)}
		require.NoError(t, db.Create(team).Error)
		require.NoError(t, db.Create(&seasonModel.TeamLeagueAssignment{
			TeamID: team.ID, LeagueID: 1, SeasonID: 1,
			Reason: seasonModel.ReasonInitialRanking,
		}).Error)
		ids = append(ids, team.ID)
	}
	return ids
}

func finishedMatch(db *gorm.DB, t *testing.T, home, away int64, homeGoals, awayGoals int) {
	t.Helper()
	match := &matchModel.Match{
		SeasonID: 1, LeagueID: 1,
		HomeTeamID: home, AwayTeamID: away,
		Matchday:      1,
		ScheduledDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:        matchModel.StatusFinished,
		HomeGoals:     &homeGoals,
		AwayGoals:     &awayGoals,
	}
	require.NoError(t, db.Create(match).Error)
}

func positions(rows []standingsModel.Standing) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.TeamID
	}
	return out
}

func TestService_Recompute(t *testing.T) {
	ctx := context.Background()

	t.Run("folds results into points and goal difference", func(t *testing.T) {
		svc, db := newTestService(t)
		ids := seedTeams(t, db, "alpha", "beta")
		finishedMatch(db, t, ids[0], ids[1], 3, 1)

		rows, err := svc.Recompute(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		winner := rows[0]
		assert.Equal(t, ids[0], winner.TeamID)
		assert.Equal(t, 1, winner.Position)
		assert.Equal(t, 1, winner.Played)
		assert.Equal(t, 1, winner.Won)
		assert.Equal(t, 3, winner.Points)
		assert.Equal(t, 2, winner.GoalDifference)

		loser := rows[1]
		assert.Equal(t, 0, loser.Points)
		assert.Equal(t, -2, loser.GoalDifference)
	})

	t.Run("teams without matches still get zero rows", func(t *testing.T) {
		svc, db := newTestService(t)
		ids := seedTeams(t, db, "alpha", "beta", "gamma")

		rows, err := svc.Recompute(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, rows, 3)

		// All on zero points; follower count decides, best first.
		assert.Equal(t, []int64{ids[0], ids[1], ids[2]}, positions(rows))
		for _, row := range rows {
			assert.Zero(t, row.Played)
			assert.Zero(t, row.Points)
		}
	})

	t.Run("head to head outranks overall goal difference", func(t *testing.T) {
		svc, db := newTestService(t)
		ids := seedTeams(t, db, "alpha", "beta", "gamma", "delta")

		// beta piles up overall goal difference but lost the direct match.
		finishedMatch(db, t, ids[0], ids[1], 2, 1)
		finishedMatch(db, t, ids[1], ids[2], 5, 0)
		finishedMatch(db, t, ids[0], ids[3], 1, 0)
		finishedMatch(db, t, ids[1], ids[3], 2, 0)

		rows, err := svc.Recompute(ctx, 1, 1)
		require.NoError(t, err)

		// alpha: 6 pts, GD +2. beta: 6 pts, GD +5. Head to head: alpha won.
		assert.Equal(t, ids[0], rows[0].TeamID)
		assert.Equal(t, ids[1], rows[1].TeamID)
	})

	t.Run("tied teams that never met fall through to overall numbers", func(t *testing.T) {
		svc, db := newTestService(t)
		ids := seedTeams(t, db, "alpha", "beta", "gamma", "delta")

		finishedMatch(db, t, ids[0], ids[2], 1, 0)
		finishedMatch(db, t, ids[1], ids[3], 4, 0)

		rows, err := svc.Recompute(ctx, 1, 1)
		require.NoError(t, err)

		// beta and alpha tied on 3 points with no mutual match; beta's
		// overall goal difference wins.
		assert.Equal(t, ids[1], rows[0].TeamID)
		assert.Equal(t, ids[0], rows[1].TeamID)
	})

	t.Run("recompute is idempotent", func(t *testing.T) {
		svc, db := newTestService(t)
		ids := seedTeams(t, db, "alpha", "beta")
		finishedMatch(db, t, ids[0], ids[1], 2, 2)

		first, err := svc.Recompute(ctx, 1, 1)
		require.NoError(t, err)
		second, err := svc.Recompute(ctx, 1, 1)
		require.NoError(t, err)

		require.Equal(t, len(first), len(second))
		for i := range first {
			assert.Equal(t, first[i].TeamID, second[i].TeamID)
			assert.Equal(t, first[i].Points, second[i].Points)
			assert.Equal(t, first[i].Position, second[i].Position)
		}

		var count int64
		require.NoError(t, db.Model(&standingsModel.Standing{}).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})

	t.Run("playoff and cancelled matches are not counted", func(t *testing.T) {
		svc, db := newTestService(t)
		ids := seedTeams(t, db, "alpha", "beta")

		round := matchModel.RoundFinal
		goals := 4
		require.NoError(t, db.Create(&matchModel.Match{
			SeasonID: 1, LeagueID: 1,
			HomeTeamID: ids[0], AwayTeamID: ids[1],
			Matchday:      matchModel.PlayoffMatchdayBase,
			ScheduledDate: time.Now(),
			Status:        matchModel.StatusFinished,
			HomeGoals:     &goals, AwayGoals: new(int),
			IsPlayoff:    true,
			PlayoffRound: &round,
		}).Error)
		require.NoError(t, db.Create(&matchModel.Match{
			SeasonID: 1, LeagueID: 1,
			HomeTeamID: ids[0], AwayTeamID: ids[1],
			Matchday:      1,
			ScheduledDate: time.Now(),
			Status:        matchModel.StatusCancelled,
		}).Error)

		rows, err := svc.Recompute(ctx, 1, 1)
		require.NoError(t, err)
		for _, row := range rows {
			assert.Zero(t, row.Played)
		}
	})

	t.Run("finished match without goals is corrupt", func(t *testing.T) {
		svc, db := newTestService(t)
		ids := seedTeams(t, db, "alpha", "beta")

		require.NoError(t, db.Create(&matchModel.Match{
			SeasonID: 1, LeagueID: 1,
			HomeTeamID: ids[0], AwayTeamID: ids[1],
			Matchday:      1,
			ScheduledDate: time.Now(),
			Status:        matchModel.StatusFinished,
		}).Error)

		_, err := svc.Recompute(ctx, 1, 1)
		assert.ErrorIs(t, err, standingsModel.ErrCorruptMatchData)
	})
}

func TestService_RecomputeTx(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	ids := seedTeams(t, db, "alpha", "beta")
	finishedMatch(db, t, ids[0], ids[1], 2, 0)

	// A caller failure after the recompute must roll the rows back too.
	sentinel := assert.AnError
	err := db.Transaction(func(tx *gorm.DB) error {
		rows, err := svc.RecomputeTx(ctx, tx, 1, 1)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	var count int64
	require.NoError(t, db.Model(&standingsModel.Standing{}).Count(&count).Error)
	assert.Zero(t, count)

	// On its own transaction the same recompute persists.
	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.RecomputeTx(ctx, tx, 1, 1)
		return err
	})
	require.NoError(t, err)

	rows, err := svc.GetStandings(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ids[0], rows[0].TeamID)
}

func TestService_GetStandings(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	ids := seedTeams(t, db, "alpha", "beta")
	finishedMatch(db, t, ids[0], ids[1], 1, 0)

	_, err := svc.Recompute(ctx, 1, 1)
	require.NoError(t, err)

	rows, err := svc.GetStandings(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, 2, rows[1].Position)
}

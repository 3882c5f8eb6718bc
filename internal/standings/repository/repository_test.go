package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	standingsModel "github.com/jarruego/tiktok-league/internal/standings/model"
)

// setupTestDB creates the standings table with the same column list as the
// production migration (sqlite flavored) rather than AutoMigrate, so schema
// drift between model and migration fails here instead of in production.
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`CREATE TABLE standings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		season_id INTEGER NOT NULL,
		league_id INTEGER NOT NULL,
		team_id INTEGER NOT NULL,
		position INTEGER NOT NULL CHECK (position >= 1),
		played INTEGER NOT NULL DEFAULT 0,
		won INTEGER NOT NULL DEFAULT 0,
		drawn INTEGER NOT NULL DEFAULT 0,
		lost INTEGER NOT NULL DEFAULT 0,
		goals_for INTEGER NOT NULL DEFAULT 0,
		goals_against INTEGER NOT NULL DEFAULT 0,
		goal_difference INTEGER NOT NULL DEFAULT 0,
		points INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`).Error
	require.NoError(t, err)

	err = db.Exec(`CREATE UNIQUE INDEX idx_standings_season_league_team
		ON standings (season_id, league_id, team_id)`).Error
	require.NoError(t, err)

	return db
}

func TestRepository_ReplaceForLeague(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts against migration schema", func(t *testing.T) {
		db := setupTestDB(t)
		repo := New(db)

		rows := []standingsModel.Standing{
			{SeasonID: 1, LeagueID: 1, TeamID: 10, Position: 1, Played: 2, Won: 2, GoalsFor: 5, GoalsAgainst: 1, GoalDifference: 4, Points: 6},
			{SeasonID: 1, LeagueID: 1, TeamID: 11, Position: 2, Played: 2, Lost: 2, GoalsFor: 1, GoalsAgainst: 5, GoalDifference: -4},
		}
		require.NoError(t, repo.ReplaceForLeague(ctx, 1, 1, rows))

		stored, err := repo.ListForLeague(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, stored, 2)
		assert.Equal(t, int64(10), stored[0].TeamID)
		assert.Equal(t, 6, stored[0].Points)
		assert.False(t, stored[0].UpdatedAt.IsZero())
	})

	t.Run("replaces previous rows", func(t *testing.T) {
		db := setupTestDB(t)
		repo := New(db)

		require.NoError(t, repo.ReplaceForLeague(ctx, 1, 1, []standingsModel.Standing{
			{SeasonID: 1, LeagueID: 1, TeamID: 10, Position: 1},
			{SeasonID: 1, LeagueID: 1, TeamID: 11, Position: 2},
		}))
		require.NoError(t, repo.ReplaceForLeague(ctx, 1, 1, []standingsModel.Standing{
			{SeasonID: 1, LeagueID: 1, TeamID: 11, Position: 1, Points: 3},
			{SeasonID: 1, LeagueID: 1, TeamID: 10, Position: 2},
		}))

		stored, err := repo.ListForLeague(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, stored, 2)
		assert.Equal(t, int64(11), stored[0].TeamID)
		assert.Equal(t, 3, stored[0].Points)
	})

	t.Run("leaves other leagues untouched", func(t *testing.T) {
		db := setupTestDB(t)
		repo := New(db)

		require.NoError(t, repo.ReplaceForLeague(ctx, 1, 2, []standingsModel.Standing{
			{SeasonID: 1, LeagueID: 2, TeamID: 20, Position: 1},
		}))
		require.NoError(t, repo.ReplaceForLeague(ctx, 1, 1, []standingsModel.Standing{
			{SeasonID: 1, LeagueID: 1, TeamID: 10, Position: 1},
		}))

		count, err := repo.CountForLeague(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestRepository_CountForLeague(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := New(db)

	count, err := repo.CountForLeague(ctx, 1, 1)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// Package service implements the standings engine: folding finished matches
// into standing rows and ranking them with the multi-criterion tiebreak.
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	matchModel "github.com/jarruego/tiktok-league/internal/match/model"
	standingsModel "github.com/jarruego/tiktok-league/internal/standings/model"
	"github.com/jarruego/tiktok-league/internal/standings/repository"
)

// Service defines the interface for standings business logic operations.
type Service interface {
	// Recompute rebuilds the standings of one league from its finished
	// matches and persists them in a single transaction. Idempotent:
	// identical match data yields identical rows and positions.
	Recompute(ctx context.Context, seasonID, leagueID int64) ([]standingsModel.Standing, error)

	// RecomputeTx rebuilds the standings inside the caller's transaction,
	// so a result write and its recompute commit or roll back together.
	RecomputeTx(ctx context.Context, tx *gorm.DB, seasonID, leagueID int64) ([]standingsModel.Standing, error)

	// GetStandings returns the persisted standings ordered by position.
	GetStandings(ctx context.Context, seasonID, leagueID int64) ([]standingsModel.Standing, error)
}

type service struct {
	repo   repository.Repository
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new standings service instance.
func New(repo repository.Repository, db *gorm.DB, logger *zap.SugaredLogger) Service {
	return &service{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// GetStandings returns the persisted standings ordered by position.
func (s *service) GetStandings(ctx context.Context, seasonID, leagueID int64) ([]standingsModel.Standing, error) {
	rows, err := s.repo.ListForLeague(ctx, seasonID, leagueID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, standingsModel.ErrStandingsNotFound
	}
	return rows, nil
}

// Recompute rebuilds the standings of one league from its finished matches.
func (s *service) Recompute(ctx context.Context, seasonID, leagueID int64) ([]standingsModel.Standing, error) {
	var result []standingsModel.Standing
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.recompute(ctx, tx, seasonID, leagueID)
		if err != nil {
			return err
		}
		result = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecomputeTx rebuilds the standings on the caller's transaction.
func (s *service) RecomputeTx(ctx context.Context, tx *gorm.DB, seasonID, leagueID int64) ([]standingsModel.Standing, error) {
	return s.recompute(ctx, tx, seasonID, leagueID)
}

func (s *service) recompute(ctx context.Context, tx *gorm.DB, seasonID, leagueID int64) ([]standingsModel.Standing, error) {
	txRepo := repository.New(tx)

	// Serialize concurrent recomputes for this league. Readers must
	// never observe half-updated positions.
	if err := txRepo.LockLeague(ctx, seasonID, leagueID); err != nil {
		return nil, err
	}

	teams, err := txRepo.ListAssignedTeams(ctx, seasonID, leagueID)
	if err != nil {
		return nil, err
	}

	matches, err := txRepo.ListCountedMatches(ctx, seasonID, leagueID)
	if err != nil {
		return nil, err
	}

	rows, err := buildTable(seasonID, leagueID, teams, matches)
	if err != nil {
		return nil, err
	}

	if err := txRepo.ReplaceForLeague(ctx, seasonID, leagueID, rows); err != nil {
		return nil, err
	}

	s.logger.Infow("standings recomputed",
		"season_id", seasonID,
		"league_id", leagueID,
		"teams", len(rows),
	)
	return rows, nil
}

// tableEntry accumulates one team's fold state before ranking.
type tableEntry struct {
	teamID    int64
	followers int64
	row       standingsModel.Standing
}

// buildTable folds finished matches into standing rows and assigns positions.
func buildTable(
	seasonID, leagueID int64,
	teams []repository.RankedTeam,
	matches []matchModel.Match,
) ([]standingsModel.Standing, error) {
	entries := make(map[int64]*tableEntry, len(teams))
	for _, t := range teams {
		entries[t.TeamID] = &tableEntry{
			teamID:    t.TeamID,
			followers: t.Followers,
			row: standingsModel.Standing{
				SeasonID: seasonID,
				LeagueID: leagueID,
				TeamID:   t.TeamID,
			},
		}
	}

	for i := range matches {
		m := &matches[i]
		if m.HomeGoals == nil || m.AwayGoals == nil {
			return nil, fmt.Errorf("%w: match %d finished without goals",
				standingsModel.ErrCorruptMatchData, m.ID)
		}
		if *m.HomeGoals < 0 || *m.AwayGoals < 0 {
			return nil, fmt.Errorf("%w: match %d has negative goals",
				standingsModel.ErrCorruptMatchData, m.ID)
		}

		// Teams may appear in matches without a current assignment row
		// when data was imported; they still rank, with zero metric.
		home := ensureEntry(entries, m.HomeTeamID, seasonID, leagueID)
		away := ensureEntry(entries, m.AwayTeamID, seasonID, leagueID)

		home.row.Played++
		away.row.Played++
		home.row.GoalsFor += *m.HomeGoals
		home.row.GoalsAgainst += *m.AwayGoals
		away.row.GoalsFor += *m.AwayGoals
		away.row.GoalsAgainst += *m.HomeGoals

		switch {
		case *m.HomeGoals > *m.AwayGoals:
			home.row.Won++
			away.row.Lost++
			home.row.Points += 3
		case *m.HomeGoals < *m.AwayGoals:
			away.row.Won++
			home.row.Lost++
			away.row.Points += 3
		default:
			home.row.Drawn++
			away.row.Drawn++
			home.row.Points++
			away.row.Points++
		}
	}

	list := make([]*tableEntry, 0, len(entries))
	for _, e := range entries {
		e.row.GoalDifference = e.row.GoalsFor - e.row.GoalsAgainst
		list = append(list, e)
	}

	rank(list, matches)

	now := time.Now()
	rows := make([]standingsModel.Standing, len(list))
	for i, e := range list {
		e.row.Position = i + 1
		e.row.UpdatedAt = now
		rows[i] = e.row
	}
	return rows, nil
}

func ensureEntry(entries map[int64]*tableEntry, teamID, seasonID, leagueID int64) *tableEntry {
	if e, ok := entries[teamID]; ok {
		return e
	}
	e := &tableEntry{
		teamID: teamID,
		row: standingsModel.Standing{
			SeasonID: seasonID,
			LeagueID: leagueID,
			TeamID:   teamID,
		},
	}
	entries[teamID] = e
	return e
}

// rank orders entries by points, then head-to-head goal difference and goals
// scored within the exact subgroup still tied on points, then overall goal
// difference, overall goals for, follower count, and team id. The head-to-head
// criterion contributes nothing when the tied teams never met, so the order
// falls through to the overall numbers.
func rank(list []*tableEntry, matches []matchModel.Match) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].row.Points > list[j].row.Points
	})

	start := 0
	for start < len(list) {
		end := start + 1
		for end < len(list) && list[end].row.Points == list[start].row.Points {
			end++
		}
		if end-start > 1 {
			rankTiedGroup(list[start:end], matches)
		}
		start = end
	}
}

// rankTiedGroup re-sorts one points-tied subgroup.
func rankTiedGroup(group []*tableEntry, matches []matchModel.Match) {
	inGroup := make(map[int64]bool, len(group))
	for _, e := range group {
		inGroup[e.teamID] = true
	}

	h2hDiff := make(map[int64]int, len(group))
	h2hFor := make(map[int64]int, len(group))
	for i := range matches {
		m := &matches[i]
		if !inGroup[m.HomeTeamID] || !inGroup[m.AwayTeamID] {
			continue
		}
		h2hFor[m.HomeTeamID] += *m.HomeGoals
		h2hFor[m.AwayTeamID] += *m.AwayGoals
		h2hDiff[m.HomeTeamID] += *m.HomeGoals - *m.AwayGoals
		h2hDiff[m.AwayTeamID] += *m.AwayGoals - *m.HomeGoals
	}

	sort.Slice(group, func(i, j int) bool {
		a, b := group[i], group[j]
		if h2hDiff[a.teamID] != h2hDiff[b.teamID] {
			return h2hDiff[a.teamID] > h2hDiff[b.teamID]
		}
		if h2hFor[a.teamID] != h2hFor[b.teamID] {
			return h2hFor[a.teamID] > h2hFor[b.teamID]
		}
		if a.row.GoalDifference != b.row.GoalDifference {
			return a.row.GoalDifference > b.row.GoalDifference
		}
		if a.row.GoalsFor != b.row.GoalsFor {
			return a.row.GoalsFor > b.row.GoalsFor
		}
		if a.followers != b.followers {
			return a.followers > b.followers
		}
		return a.teamID < b.teamID
	})
}

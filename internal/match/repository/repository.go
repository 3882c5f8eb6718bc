// Package repository provides data access layer for match module.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	matchModel "github.com/jarruego/tiktok-league/internal/match/model"
)

// Repository defines the interface for match data access operations.
type Repository interface {
	// CreateBatch inserts all matches in one batch. Callers wrap this in a
	// transaction so a failed integrity check persists nothing.
	CreateBatch(ctx context.Context, matches []matchModel.Match) error

	// GetByID finds a match by id.
	GetByID(ctx context.Context, id int64) (*matchModel.Match, error)

	// GetByIDForUpdate finds a match by id taking a row lock where the
	// dialect supports it.
	GetByIDForUpdate(ctx context.Context, id int64) (*matchModel.Match, error)

	// Save persists changes to an existing match.
	Save(ctx context.Context, match *matchModel.Match) error

	// List returns matches narrowed by the filter, ordered by matchday.
	List(ctx context.Context, filter matchModel.Filter) ([]matchModel.Match, error)

	// CountRegular returns the number of non-playoff matches for a league.
	CountRegular(ctx context.Context, seasonID, leagueID int64) (int64, error)

	// CountUnfinishedRegular returns non-playoff matches that are neither
	// finished nor cancelled.
	CountUnfinishedRegular(ctx context.Context, seasonID, leagueID int64) (int64, error)

	// ListAssignedTeamIDs returns the ids of teams assigned to a league in
	// a season, ordered by team id.
	ListAssignedTeamIDs(ctx context.Context, seasonID, leagueID int64) ([]int64, error)

	// TeamFollowers returns follower counts for the given teams.
	TeamFollowers(ctx context.Context, teamIDs []int64) (map[int64]int64, error)
}

type repository struct {
	db *gorm.DB
}

// New creates a new match repository instance.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateBatch inserts all matches in one batch.
func (r *repository) CreateBatch(ctx context.Context, matches []matchModel.Match) error {
	if len(matches) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(matches, 200).Error
}

// GetByID finds a match by id.
func (r *repository) GetByID(ctx context.Context, id int64) (*matchModel.Match, error) {
	var match matchModel.Match
	err := r.db.WithContext(ctx).First(&match, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, matchModel.ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

// GetByIDForUpdate finds a match by id taking a row lock where supported.
// SQLite serializes writers on its own, so the lock clause is postgres-only.
func (r *repository) GetByIDForUpdate(ctx context.Context, id int64) (*matchModel.Match, error) {
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var match matchModel.Match
	err := q.First(&match, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, matchModel.ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

// Save persists changes to an existing match.
func (r *repository) Save(ctx context.Context, match *matchModel.Match) error {
	return r.db.WithContext(ctx).Save(match).Error
}

// List returns matches narrowed by the filter, ordered by matchday.
func (r *repository) List(ctx context.Context, filter matchModel.Filter) ([]matchModel.Match, error) {
	q := r.db.WithContext(ctx).Model(&matchModel.Match{})

	if filter.SeasonID != 0 {
		q = q.Where("season_id = ?", filter.SeasonID)
	}
	if filter.LeagueID != 0 {
		q = q.Where("league_id = ?", filter.LeagueID)
	}
	if filter.DivisionID != 0 {
		q = q.Where("league_id IN (?)", r.db.
			Table("leagues").
			Select("id").
			Where("division_id = ?", filter.DivisionID))
	}
	if filter.TeamID != 0 {
		q = q.Where("home_team_id = ? OR away_team_id = ?", filter.TeamID, filter.TeamID)
	}
	if filter.Matchday != 0 {
		q = q.Where("matchday = ?", filter.Matchday)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.IsPlayoff != nil {
		q = q.Where("is_playoff = ?", *filter.IsPlayoff)
	}
	if filter.PlayoffRound != "" {
		q = q.Where("playoff_round = ?", filter.PlayoffRound)
	}

	var matches []matchModel.Match
	err := q.Order("matchday ASC, id ASC").Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// CountRegular returns the number of non-playoff matches for a league.
func (r *repository) CountRegular(ctx context.Context, seasonID, leagueID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&matchModel.Match{}).
		Where("season_id = ? AND league_id = ? AND is_playoff = ?", seasonID, leagueID, false).
		Count(&count).Error
	return count, err
}

// CountUnfinishedRegular returns non-playoff matches that are neither
// finished nor cancelled.
func (r *repository) CountUnfinishedRegular(ctx context.Context, seasonID, leagueID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&matchModel.Match{}).
		Where("season_id = ? AND league_id = ? AND is_playoff = ?", seasonID, leagueID, false).
		Where("status NOT IN ?", []string{matchModel.StatusFinished, matchModel.StatusCancelled}).
		Count(&count).Error
	return count, err
}

// ListAssignedTeamIDs returns the ids of teams assigned to a league in a season.
func (r *repository) ListAssignedTeamIDs(ctx context.Context, seasonID, leagueID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Table("team_league_assignments").
		Where("season_id = ? AND league_id = ?", seasonID, leagueID).
		Order("team_id ASC").
		Pluck("team_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// TeamFollowers returns follower counts for the given teams.
func (r *repository) TeamFollowers(ctx context.Context, teamIDs []int64) (map[int64]int64, error) {
	if len(teamIDs) == 0 {
		return map[int64]int64{}, nil
	}
	type row struct {
		ID        int64
		Followers int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("teams").
		Select("id, followers").
		Where("id IN ?", teamIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	followers := make(map[int64]int64, len(rows))
	for _, t := range rows {
		followers[t.ID] = t.Followers
	}
	return followers, nil
}

// Package repository provides data access layer for season module.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	matchModel "github.com/jarruego/tiktok-league/internal/match/model"
	seasonModel "github.com/jarruego/tiktok-league/internal/season/model"
	standingsModel "github.com/jarruego/tiktok-league/internal/standings/model"
)

// Repository defines the interface for season data access operations.
type Repository interface {
	// CreateSeason creates a new season row.
	CreateSeason(ctx context.Context, season *seasonModel.Season) error

	// SaveSeason persists changes to an existing season row.
	SaveSeason(ctx context.Context, season *seasonModel.Season) error

	// GetSeason finds a season by id.
	GetSeason(ctx context.Context, id int64) (*seasonModel.Season, error)

	// GetActiveSeason returns the single active season.
	GetActiveSeason(ctx context.Context) (*seasonModel.Season, error)

	// CreateAssignments inserts the given assignments in one batch.
	CreateAssignments(ctx context.Context, assignments []seasonModel.TeamLeagueAssignment) error

	// ListAssignments returns all assignments of a season.
	ListAssignments(ctx context.Context, seasonID int64) ([]seasonModel.TeamLeagueAssignment, error)

	// ListLeagueAssignments returns the assignments of one league in a season.
	ListLeagueAssignments(ctx context.Context, seasonID, leagueID int64) ([]seasonModel.TeamLeagueAssignment, error)

	// CountLeagueAssignments returns the number of teams assigned to a league.
	CountLeagueAssignments(ctx context.Context, seasonID, leagueID int64) (int64, error)

	// CountUnfinishedRegular returns non-playoff matches of a league that
	// are neither finished nor cancelled.
	CountUnfinishedRegular(ctx context.Context, seasonID, leagueID int64) (int64, error)

	// ListStandings returns the league standings ordered by position.
	ListStandings(ctx context.Context, seasonID, leagueID int64) ([]standingsModel.Standing, error)

	// TeamFollowers returns follower counts for the given teams.
	TeamFollowers(ctx context.Context, teamIDs []int64) (map[int64]int64, error)
}

type repository struct {
	db *gorm.DB
}

// New creates a new season repository instance.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateSeason creates a new season row.
func (r *repository) CreateSeason(ctx context.Context, season *seasonModel.Season) error {
	return r.db.WithContext(ctx).Create(season).Error
}

// SaveSeason persists changes to an existing season row.
func (r *repository) SaveSeason(ctx context.Context, season *seasonModel.Season) error {
	return r.db.WithContext(ctx).Save(season).Error
}

// GetSeason finds a season by id.
func (r *repository) GetSeason(ctx context.Context, id int64) (*seasonModel.Season, error) {
	var season seasonModel.Season
	err := r.db.WithContext(ctx).First(&season, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, seasonModel.ErrSeasonNotFound
		}
		return nil, err
	}
	return &season, nil
}

// GetActiveSeason returns the single active season.
func (r *repository) GetActiveSeason(ctx context.Context) (*seasonModel.Season, error) {
	var season seasonModel.Season
	err := r.db.WithContext(ctx).First(&season, "is_active = ?", true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, seasonModel.ErrNoActiveSeason
		}
		return nil, err
	}
	return &season, nil
}

// CreateAssignments inserts the given assignments in one batch.
func (r *repository) CreateAssignments(ctx context.Context, assignments []seasonModel.TeamLeagueAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(assignments, 100).Error
}

// ListAssignments returns all assignments of a season.
func (r *repository) ListAssignments(ctx context.Context, seasonID int64) ([]seasonModel.TeamLeagueAssignment, error) {
	var assignments []seasonModel.TeamLeagueAssignment
	err := r.db.WithContext(ctx).
		Where("season_id = ?", seasonID).
		Order("league_id ASC, id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListLeagueAssignments returns the assignments of one league in a season.
func (r *repository) ListLeagueAssignments(ctx context.Context, seasonID, leagueID int64) ([]seasonModel.TeamLeagueAssignment, error) {
	var assignments []seasonModel.TeamLeagueAssignment
	err := r.db.WithContext(ctx).
		Where("season_id = ? AND league_id = ?", seasonID, leagueID).
		Order("id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// CountLeagueAssignments returns the number of teams assigned to a league.
func (r *repository) CountLeagueAssignments(ctx context.Context, seasonID, leagueID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&seasonModel.TeamLeagueAssignment{}).
		Where("season_id = ? AND league_id = ?", seasonID, leagueID).
		Count(&count).Error
	return count, err
}

// CountUnfinishedRegular returns unfinished non-playoff matches of a league.
func (r *repository) CountUnfinishedRegular(ctx context.Context, seasonID, leagueID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&matchModel.Match{}).
		Where("season_id = ? AND league_id = ? AND is_playoff = ?", seasonID, leagueID, false).
		Where("status NOT IN ?", []string{matchModel.StatusFinished, matchModel.StatusCancelled}).
		Count(&count).Error
	return count, err
}

// ListStandings returns the league standings ordered by position.
func (r *repository) ListStandings(ctx context.Context, seasonID, leagueID int64) ([]standingsModel.Standing, error) {
	var rows []standingsModel.Standing
	err := r.db.WithContext(ctx).
		Where("season_id = ? AND league_id = ?", seasonID, leagueID).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TeamFollowers returns follower counts for the given teams.
func (r *repository) TeamFollowers(ctx context.Context, teamIDs []int64) (map[int64]int64, error) {
	followers := make(map[int64]int64, len(teamIDs))
	if len(teamIDs) == 0 {
		return followers, nil
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
	for _, t := range rows {
		followers[t.ID] = t.Followers
	}
	return followers, nil
}

// Package repository provides data access layer for playoff module.
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	divisionModel "github.com/jarruego/tiktok-league/internal/division/model"
	matchModel "github.com/jarruego/tiktok-league/internal/match/model"
	standingsModel "github.com/jarruego/tiktok-league/internal/standings/model"
)

// Repository defines the interface for playoff data access operations.
type Repository interface {
	// GetDivision finds a division by id.
	GetDivision(ctx context.Context, id int64) (*divisionModel.Division, error)

	// GetLeague finds a league by id.
	GetLeague(ctx context.Context, id int64) (*divisionModel.League, error)

	// ListLeagues returns the leagues of a division ordered by group code.
	ListLeagues(ctx context.Context, divisionID int64) ([]divisionModel.League, error)

	// CountUnfinishedRegular returns non-playoff matches of a league that
	// are neither finished nor cancelled.
	CountUnfinishedRegular(ctx context.Context, seasonID, leagueID int64) (int64, error)

	// CountAssigned returns the number of teams assigned to a league.
	CountAssigned(ctx context.Context, seasonID, leagueID int64) (int64, error)

	// ListStandings returns the league standings ordered by position.
	ListStandings(ctx context.Context, seasonID, leagueID int64) ([]standingsModel.Standing, error)

	// CountStandings returns the number of standing rows for a league.
	CountStandings(ctx context.Context, seasonID, leagueID int64) (int64, error)

	// CountPlayoffMatches returns the playoff matches across the given leagues.
	CountPlayoffMatches(ctx context.Context, seasonID int64, leagueIDs []int64) (int64, error)

	// ListPlayoffMatches returns one league's playoff matches ordered by matchday.
	ListPlayoffMatches(ctx context.Context, seasonID, leagueID int64) ([]matchModel.Match, error)

	// GetMatchForUpdate finds a match taking a row lock where supported.
	GetMatchForUpdate(ctx context.Context, id int64) (*matchModel.Match, error)

	// SaveMatch persists changes to a match.
	SaveMatch(ctx context.Context, match *matchModel.Match) error

	// CreateMatches inserts playoff matches in one batch.
	CreateMatches(ctx context.Context, matches []matchModel.Match) error

	// LastRegularDate returns the latest scheduled date among a league's
	// regular matches.
	LastRegularDate(ctx context.Context, seasonID, leagueID int64) (time.Time, error)
}

type repository struct {
	db *gorm.DB
}

// New creates a new playoff repository instance.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// GetDivision finds a division by id.
func (r *repository) GetDivision(ctx context.Context, id int64) (*divisionModel.Division, error) {
	var division divisionModel.Division
	err := r.db.WithContext(ctx).First(&division, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, divisionModel.ErrDivisionNotFound
		}
		return nil, err
	}
	return &division, nil
}

// GetLeague finds a league by id.
func (r *repository) GetLeague(ctx context.Context, id int64) (*divisionModel.League, error) {
	var league divisionModel.League
	err := r.db.WithContext(ctx).First(&league, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, divisionModel.ErrLeagueNotFound
		}
		return nil, err
	}
	return &league, nil
}

// ListLeagues returns the leagues of a division ordered by group code.
func (r *repository) ListLeagues(ctx context.Context, divisionID int64) ([]divisionModel.League, error) {
	var leagues []divisionModel.League
	err := r.db.WithContext(ctx).
		Where("division_id = ?", divisionID).
		Order("group_code ASC").
		Find(&leagues).Error
	if err != nil {
		return nil, err
	}
	return leagues, nil
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

// CountAssigned returns the number of teams assigned to a league.
func (r *repository) CountAssigned(ctx context.Context, seasonID, leagueID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("team_league_assignments").
		Where("season_id = ? AND league_id = ?", seasonID, leagueID).
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

// CountStandings returns the number of standing rows for a league.
func (r *repository) CountStandings(ctx context.Context, seasonID, leagueID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&standingsModel.Standing{}).
		Where("season_id = ? AND league_id = ?", seasonID, leagueID).
		Count(&count).Error
	return count, err
}

// CountPlayoffMatches returns the playoff matches across the given leagues.
func (r *repository) CountPlayoffMatches(ctx context.Context, seasonID int64, leagueIDs []int64) (int64, error) {
	if len(leagueIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&matchModel.Match{}).
		Where("season_id = ? AND league_id IN ? AND is_playoff = ?", seasonID, leagueIDs, true).
		Count(&count).Error
	return count, err
}

// ListPlayoffMatches returns one league's playoff matches ordered by matchday.
func (r *repository) ListPlayoffMatches(ctx context.Context, seasonID, leagueID int64) ([]matchModel.Match, error) {
	var matches []matchModel.Match
	err := r.db.WithContext(ctx).
		Where("season_id = ? AND league_id = ? AND is_playoff = ?", seasonID, leagueID, true).
		Order("matchday ASC, id ASC").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// GetMatchForUpdate finds a match taking a row lock where supported.
func (r *repository) GetMatchForUpdate(ctx context.Context, id int64) (*matchModel.Match, error) {
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

// SaveMatch persists changes to a match.
func (r *repository) SaveMatch(ctx context.Context, match *matchModel.Match) error {
	return r.db.WithContext(ctx).Save(match).Error
}

// CreateMatches inserts playoff matches in one batch.
func (r *repository) CreateMatches(ctx context.Context, matches []matchModel.Match) error {
	if len(matches) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(matches, 100).Error
}

// LastRegularDate returns the latest scheduled date among regular matches.
func (r *repository) LastRegularDate(ctx context.Context, seasonID, leagueID int64) (time.Time, error) {
	var last *time.Time
	err := r.db.WithContext(ctx).
		Model(&matchModel.Match{}).
		Select("scheduled_date").
		Where("season_id = ? AND league_id = ? AND is_playoff = ?", seasonID, leagueID, false).
		Order("scheduled_date DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return time.Time{}, err
	}
	if last == nil {
		return time.Time{}, nil
	}
	return *last, nil
}

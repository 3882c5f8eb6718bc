// Package repository provides data access layer for standings module.
package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	matchModel "github.com/jarruego/tiktok-league/internal/match/model"
	standingsModel "github.com/jarruego/tiktok-league/internal/standings/model"
)

// RankedTeam is one team assigned to a league together with its follower
// count, the configured secondary ranking metric.
type RankedTeam struct {
	TeamID    int64
	Followers int64
}

// Repository defines the interface for standings data access operations.
type Repository interface {
	// ListForLeague returns standings ordered by position.
	ListForLeague(ctx context.Context, seasonID, leagueID int64) ([]standingsModel.Standing, error)

	// LockLeague serializes concurrent recomputes for one (season, league)
	// by locking its existing standing rows. No-op outside postgres.
	LockLeague(ctx context.Context, seasonID, leagueID int64) error

	// ReplaceForLeague deletes the league's standing rows and inserts the
	// given set. Callers wrap this in a transaction.
	ReplaceForLeague(ctx context.Context, seasonID, leagueID int64, rows []standingsModel.Standing) error

	// ListAssignedTeams returns the teams assigned to a league in a season
	// with their follower counts.
	ListAssignedTeams(ctx context.Context, seasonID, leagueID int64) ([]RankedTeam, error)

	// ListCountedMatches returns the finished, non-cancelled, non-playoff
	// matches of a league.
	ListCountedMatches(ctx context.Context, seasonID, leagueID int64) ([]matchModel.Match, error)

	// CountForLeague returns the number of standing rows for a league.
	CountForLeague(ctx context.Context, seasonID, leagueID int64) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// New creates a new standings repository instance.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ListForLeague returns standings ordered by position.
func (r *repository) ListForLeague(ctx context.Context, seasonID, leagueID int64) ([]standingsModel.Standing, error) {
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

// LockLeague serializes concurrent recomputes for one (season, league).
func (r *repository) LockLeague(ctx context.Context, seasonID, leagueID int64) error {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	var ids []int64
	return r.db.WithContext(ctx).
		Model(&standingsModel.Standing{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("season_id = ? AND league_id = ?", seasonID, leagueID).
		Pluck("id", &ids).Error
}

// ReplaceForLeague deletes the league's standing rows and inserts the given set.
func (r *repository) ReplaceForLeague(ctx context.Context, seasonID, leagueID int64, rows []standingsModel.Standing) error {
	err := r.db.WithContext(ctx).
		Where("season_id = ? AND league_id = ?", seasonID, leagueID).
		Delete(&standingsModel.Standing{}).Error
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, 100).Error
}

// ListAssignedTeams returns the teams assigned to a league with follower counts.
func (r *repository) ListAssignedTeams(ctx context.Context, seasonID, leagueID int64) ([]RankedTeam, error) {
	var teams []RankedTeam
	err := r.db.WithContext(ctx).
		Table("team_league_assignments").
		Select("team_league_assignments.team_id, teams.followers").
		Joins("JOIN teams ON teams.id = team_league_assignments.team_id").
		Where("team_league_assignments.season_id = ? AND team_league_assignments.league_id = ?", seasonID, leagueID).
		Order("team_league_assignments.team_id ASC").
		Scan(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// ListCountedMatches returns the matches that count toward standings.
func (r *repository) ListCountedMatches(ctx context.Context, seasonID, leagueID int64) ([]matchModel.Match, error) {
	var matches []matchModel.Match
	err := r.db.WithContext(ctx).
		Where("season_id = ? AND league_id = ? AND is_playoff = ?", seasonID, leagueID, false).
		Where("status = ?", matchModel.StatusFinished).
		Order("matchday ASC, id ASC").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// CountForLeague returns the number of standing rows for a league.
func (r *repository) CountForLeague(ctx context.Context, seasonID, leagueID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&standingsModel.Standing{}).
		Where("season_id = ? AND league_id = ?", seasonID, leagueID).
		Count(&count).Error
	return count, err
}

// Package repository provides data access layer for team module.
package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	teamModel "github.com/jarruego/tiktok-league/internal/team/model"
)

// Repository defines the interface for team data access operations.
type Repository interface {
	// Create creates a new team.
	Create(ctx context.Context, team *teamModel.Team) error

	// GetByID finds a team by id.
	GetByID(ctx context.Context, id int64) (*teamModel.Team, error)

	// GetByName finds a team by name.
	GetByName(ctx context.Context, name string) (*teamModel.Team, error)

	// List returns all teams ordered by name.
	List(ctx context.Context) ([]teamModel.Team, error)

	// ListByRanking returns all teams ordered by follower count descending,
	// team id ascending as the stable tail.
	ListByRanking(ctx context.Context) ([]teamModel.Team, error)

	// ListUnassigned returns teams with no assignment in the given season,
	// ordered by follower count descending.
	ListUnassigned(ctx context.Context, seasonID int64) ([]teamModel.Team, error)
}

type repository struct {
	db *gorm.DB
}

// New creates a new team repository instance.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create creates a new team.
func (r *repository) Create(ctx context.Context, team *teamModel.Team) error {
	err := r.db.WithContext(ctx).Create(team).Error
	if err != nil {
		if isDuplicateError(err) {
			return teamModel.ErrTeamExists
		}
		return err
	}
	return nil
}

// isDuplicateError checks if error is a unique constraint violation.
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

// GetByID finds a team by id.
func (r *repository) GetByID(ctx context.Context, id int64) (*teamModel.Team, error) {
	var team teamModel.Team
	err := r.db.WithContext(ctx).First(&team, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, teamModel.ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

// GetByName finds a team by name.
func (r *repository) GetByName(ctx context.Context, name string) (*teamModel.Team, error) {
	var team teamModel.Team
	err := r.db.WithContext(ctx).First(&team, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, teamModel.ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

// List returns all teams ordered by name.
func (r *repository) List(ctx context.Context) ([]teamModel.Team, error) {
	var teams []teamModel.Team
	err := r.db.WithContext(ctx).Order("name ASC").Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// ListByRanking returns all teams ordered by follower count descending.
func (r *repository) ListByRanking(ctx context.Context) ([]teamModel.Team, error) {
	var teams []teamModel.Team
	err := r.db.WithContext(ctx).
		Order("followers DESC, id ASC").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// ListUnassigned returns teams with no assignment in the given season.
func (r *repository) ListUnassigned(ctx context.Context, seasonID int64) ([]teamModel.Team, error) {
	var teams []teamModel.Team
	err := r.db.WithContext(ctx).
		Where("id NOT IN (?)", r.db.
			Table("team_league_assignments").
			Select("team_id").
			Where("season_id = ?", seasonID)).
		Order("followers DESC, id ASC").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// Package repository provides data access layer for division module.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	divisionModel "github.com/jarruego/tiktok-league/internal/division/model"
)

// Repository defines the interface for division data access operations.
type Repository interface {
	// CreateDivision creates a new division after validating its slot config.
	CreateDivision(ctx context.Context, division *divisionModel.Division) error

	// CreateLeague creates a new league inside a division.
	CreateLeague(ctx context.Context, league *divisionModel.League) error

	// GetDivision finds a division by id.
	GetDivision(ctx context.Context, id int64) (*divisionModel.Division, error)

	// GetDivisionByLevel finds a division by its level.
	GetDivisionByLevel(ctx context.Context, level int) (*divisionModel.Division, error)

	// GetLeague finds a league by id.
	GetLeague(ctx context.Context, id int64) (*divisionModel.League, error)

	// ListDivisions returns all divisions ordered by level.
	ListDivisions(ctx context.Context) ([]divisionModel.Division, error)

	// ListLeagues returns leagues of a division ordered by group code.
	ListLeagues(ctx context.Context, divisionID int64) ([]divisionModel.League, error)

	// MaxLevel returns the deepest division level, 0 when none exist.
	MaxLevel(ctx context.Context) (int, error)
}

type repository struct {
	db *gorm.DB
}

// New creates a new division repository instance.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateDivision creates a new division after validating its slot config.
func (r *repository) CreateDivision(ctx context.Context, division *divisionModel.Division) error {
	if err := division.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(division).Error
}

// CreateLeague creates a new league inside a division.
func (r *repository) CreateLeague(ctx context.Context, league *divisionModel.League) error {
	return r.db.WithContext(ctx).Create(league).Error
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

// GetDivisionByLevel finds a division by its level.
func (r *repository) GetDivisionByLevel(ctx context.Context, level int) (*divisionModel.Division, error) {
	var division divisionModel.Division
	err := r.db.WithContext(ctx).First(&division, "level = ?", level).Error
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

// ListDivisions returns all divisions ordered by level.
func (r *repository) ListDivisions(ctx context.Context) ([]divisionModel.Division, error) {
	var divisions []divisionModel.Division
	err := r.db.WithContext(ctx).Order("level ASC").Find(&divisions).Error
	if err != nil {
		return nil, err
	}
	return divisions, nil
}

// ListLeagues returns leagues of a division ordered by group code.
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

// MaxLevel returns the deepest division level, 0 when none exist.
func (r *repository) MaxLevel(ctx context.Context) (int, error) {
	var level *int
	err := r.db.WithContext(ctx).
		Model(&divisionModel.Division{}).
		Select("MAX(level)").
		Scan(&level).Error
	if err != nil {
		return 0, err
	}
	if level == nil {
		return 0, nil
	}
	return *level, nil
}

// Package service provides business logic for the team module, including
// the ranking-based assignment of teams into division leagues.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	divisionRepository "github.com/jarruego/tiktok-league/internal/division/repository"
	seasonModel "github.com/jarruego/tiktok-league/internal/season/model"
	seasonRepository "github.com/jarruego/tiktok-league/internal/season/repository"
	teamModel "github.com/jarruego/tiktok-league/internal/team/model"
	"github.com/jarruego/tiktok-league/internal/team/repository"
)

// RankedAssignment is one team queued for placement, best ranked first.
type RankedAssignment struct {
	TeamID int64
	Reason string
	Metric int64
}

// Service defines the interface for team business logic operations.
type Service interface {
	// RegisterTeam creates a new team.
	RegisterTeam(ctx context.Context, req *teamModel.RegisterTeamRequest) (*teamModel.Team, error)

	// ListTeams returns all teams ordered by name.
	ListTeams(ctx context.Context) ([]teamModel.Team, error)

	// ListByRanking returns all teams ordered by follower count descending.
	ListByRanking(ctx context.Context) ([]teamModel.Team, error)

	// AssignTeamsToDivision distributes ranked teams across the leagues of
	// the division at the given level, snake order so parallel groups get
	// comparable strength. Runs on tx when non-nil so the season transition
	// can keep the whole swap atomic. Returns the teams that did not fit.
	AssignTeamsToDivision(
		ctx context.Context,
		tx *gorm.DB,
		seasonID int64,
		divisionLevel int,
		ranked []RankedAssignment,
	) ([]RankedAssignment, error)
}

type service struct {
	repo   repository.Repository
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new team service instance.
func New(repo repository.Repository, db *gorm.DB, logger *zap.SugaredLogger) Service {
	return &service{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// RegisterTeam creates a new team.
func (s *service) RegisterTeam(ctx context.Context, req *teamModel.RegisterTeamRequest) (*teamModel.Team, error) {
	if req.Name == "" {
		return nil, teamModel.ErrInvalidTeamName
	}
	if req.Followers < 0 {
		return nil, teamModel.ErrInvalidFollowers
	}

	team := &teamModel.Team{
		Name:      req.Name,
		Followers: req.Followers,
	}
	if err := s.repo.Create(ctx, team); err != nil {
		return nil, err
	}

	s.logger.Infow("team registered", "team_id", team.ID, "name", team.Name, "followers", team.Followers)
	return team, nil
}

// ListTeams returns all teams ordered by name.
func (s *service) ListTeams(ctx context.Context) ([]teamModel.Team, error) {
	return s.repo.List(ctx)
}

// ListByRanking returns all teams ordered by follower count descending.
func (s *service) ListByRanking(ctx context.Context) ([]teamModel.Team, error) {
	return s.repo.ListByRanking(ctx)
}

// AssignTeamsToDivision distributes ranked teams across the division's leagues.
func (s *service) AssignTeamsToDivision(
	ctx context.Context,
	tx *gorm.DB,
	seasonID int64,
	divisionLevel int,
	ranked []RankedAssignment,
) ([]RankedAssignment, error) {
	dbx := tx
	if dbx == nil {
		dbx = s.db
	}
	divRepo := divisionRepository.New(dbx)
	snRepo := seasonRepository.New(dbx)

	division, err := divRepo.GetDivisionByLevel(ctx, divisionLevel)
	if err != nil {
		return nil, err
	}
	leagues, err := divRepo.ListLeagues(ctx, division.ID)
	if err != nil {
		return nil, err
	}
	if len(leagues) == 0 {
		return nil, fmt.Errorf("division %d has no leagues", division.ID)
	}

	capacity := make([]int, len(leagues))
	for i, league := range leagues {
		count, countErr := snRepo.CountLeagueAssignments(ctx, seasonID, league.ID)
		if countErr != nil {
			return nil, countErr
		}
		capacity[i] = league.MaxTeams - int(count)
		if capacity[i] < 0 {
			capacity[i] = 0
		}
	}

	assignments := make([]seasonModel.TeamLeagueAssignment, 0, len(ranked))
	var overflow []RankedAssignment

	// Snake over the parallel groups so the strongest teams spread out
	// instead of stacking into the first league.
	slot, next := 0, 0
	for next < len(ranked) {
		placedAny := false
		indices := snakeRow(len(leagues), slot)
		for _, li := range indices {
			if next >= len(ranked) {
				break
			}
			if capacity[li] == 0 {
				continue
			}
			team := ranked[next]
			assignments = append(assignments, seasonModel.TeamLeagueAssignment{
				TeamID:        team.TeamID,
				LeagueID:      leagues[li].ID,
				SeasonID:      seasonID,
				Reason:        team.Reason,
				RankingMetric: team.Metric,
			})
			capacity[li]--
			next++
			placedAny = true
		}
		if !placedAny {
			overflow = ranked[next:]
			break
		}
		slot++
	}

	if err := snRepo.CreateAssignments(ctx, assignments); err != nil {
		return nil, err
	}

	s.logger.Infow("teams assigned to division",
		"season_id", seasonID,
		"level", divisionLevel,
		"assigned", len(assignments),
		"overflow", len(overflow),
	)
	return overflow, nil
}

// snakeRow returns league indices for one distribution row, reversing on
// odd rows.
func snakeRow(leagues, row int) []int {
	indices := make([]int, leagues)
	for i := range indices {
		if row%2 == 0 {
			indices[i] = i
		} else {
			indices[i] = leagues - 1 - i
		}
	}
	return indices
}

// Package service implements the season lifecycle: the closure report that
// collects promotions, relegations and qualifiers, and the atomic transition
// that opens the next season.
package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	divisionModel "github.com/jarruego/tiktok-league/internal/division/model"
	divisionRepository "github.com/jarruego/tiktok-league/internal/division/repository"
	playoffModel "github.com/jarruego/tiktok-league/internal/playoff/model"
	seasonModel "github.com/jarruego/tiktok-league/internal/season/model"
	"github.com/jarruego/tiktok-league/internal/season/repository"
	standingsModel "github.com/jarruego/tiktok-league/internal/standings/model"
	teamRepository "github.com/jarruego/tiktok-league/internal/team/repository"
	teamService "github.com/jarruego/tiktok-league/internal/team/service"
)

// PlayoffInspector is the view of the playoff module the season closure
// needs: stage per division and the decided winner per league bracket.
type PlayoffInspector interface {
	Stage(ctx context.Context, divisionID, seasonID int64) (string, error)
	LeagueWinner(ctx context.Context, seasonID, leagueID int64) (int64, bool, error)
}

// Assigner places ranked teams into a division's leagues, on the caller's
// transaction when one is given.
type Assigner interface {
	AssignTeamsToDivision(
		ctx context.Context,
		tx *gorm.DB,
		seasonID int64,
		divisionLevel int,
		ranked []teamService.RankedAssignment,
	) ([]teamService.RankedAssignment, error)
}

// Service defines the interface for season business logic operations.
type Service interface {
	// ClosureReport computes the end-of-season report for a season without
	// modifying anything. A report with pending entries or errors blocks
	// ExecuteTransition.
	ClosureReport(ctx context.Context, seasonID int64) (*seasonModel.ClosureReport, error)

	// ExecuteTransition closes the season and opens the next one in a
	// single transaction: movements applied, every assigned team placed,
	// new teams seeded into the lowest division.
	ExecuteTransition(ctx context.Context, req *seasonModel.TransitionRequest) (*seasonModel.TransitionResponse, error)

	// GetActiveSeason returns the single active season.
	GetActiveSeason(ctx context.Context) (*seasonModel.Season, error)
}

type service struct {
	repo     repository.Repository
	divRepo  divisionRepository.Repository
	teamRepo teamRepository.Repository
	playoffs PlayoffInspector
	assigner Assigner
	db       *gorm.DB
	logger   *zap.SugaredLogger
}

// New creates a new season service instance.
func New(
	repo repository.Repository,
	divRepo divisionRepository.Repository,
	teamRepo teamRepository.Repository,
	playoffs PlayoffInspector,
	assigner Assigner,
	db *gorm.DB,
	logger *zap.SugaredLogger,
) Service {
	return &service{
		repo:     repo,
		divRepo:  divRepo,
		teamRepo: teamRepo,
		playoffs: playoffs,
		assigner: assigner,
		db:       db,
		logger:   logger,
	}
}

// GetActiveSeason returns the single active season.
func (s *service) GetActiveSeason(ctx context.Context) (*seasonModel.Season, error) {
	return s.repo.GetActiveSeason(ctx)
}

// ClosureReport computes the end-of-season report for a season.
func (s *service) ClosureReport(ctx context.Context, seasonID int64) (*seasonModel.ClosureReport, error) {
	if _, err := s.repo.GetSeason(ctx, seasonID); err != nil {
		return nil, err
	}

	divisions, err := s.divRepo.ListDivisions(ctx)
	if err != nil {
		return nil, err
	}
	maxLevel, err := s.divRepo.MaxLevel(ctx)
	if err != nil {
		return nil, err
	}

	report := &seasonModel.ClosureReport{SeasonID: seasonID}
	for i := range divisions {
		if err := s.reportDivision(ctx, seasonID, &divisions[i], maxLevel, report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// reportDivision appends one division's pending entries and movements.
func (s *service) reportDivision(
	ctx context.Context,
	seasonID int64,
	division *divisionModel.Division,
	maxLevel int,
	report *seasonModel.ClosureReport,
) error {
	leagues, err := s.divRepo.ListLeagues(ctx, division.ID)
	if err != nil {
		return err
	}

	pendingBefore := len(report.PendingPlayoffs)
	for _, league := range leagues {
		unfinished, countErr := s.repo.CountUnfinishedRegular(ctx, seasonID, league.ID)
		if countErr != nil {
			return countErr
		}
		if unfinished > 0 {
			report.PendingPlayoffs = append(report.PendingPlayoffs, seasonModel.PendingEntry{
				DivisionID:        division.ID,
				LeagueID:          league.ID,
				Reason:            "unfinished regular season matches",
				UnfinishedMatches: int(unfinished),
			})
		}
	}

	if division.PromotePlayoffSlots > 0 {
		stage, stageErr := s.playoffs.Stage(ctx, division.ID, seasonID)
		if stageErr != nil {
			return stageErr
		}
		if stage != playoffModel.StagePlayoffsComplete && stage != playoffModel.StageComplete {
			report.PendingPlayoffs = append(report.PendingPlayoffs, seasonModel.PendingEntry{
				DivisionID: division.ID,
				Reason:     fmt.Sprintf("playoffs not complete, stage %s", stage),
			})
		}
	}
	if len(report.PendingPlayoffs) > pendingBefore {
		// Standings and winners below would be partial; skip movements.
		return nil
	}

	for _, league := range leagues {
		standings, listErr := s.repo.ListStandings(ctx, seasonID, league.ID)
		if listErr != nil {
			return listErr
		}
		assigned, countErr := s.repo.CountLeagueAssignments(ctx, seasonID, league.ID)
		if countErr != nil {
			return countErr
		}
		if int64(len(standings)) < assigned {
			report.Errors = append(report.Errors,
				fmt.Sprintf("league %d: standings cover %d of %d teams", league.ID, len(standings), assigned))
			continue
		}

		promoted := 0
		if division.Level > 1 {
			for _, row := range standings {
				if row.Position > division.PromoteSlots {
					break
				}
				report.Promotions = append(report.Promotions, seasonModel.MovementEntry{
					TeamID:      row.TeamID,
					DivisionID:  division.ID,
					LeagueID:    league.ID,
					Position:    row.Position,
					TargetLevel: division.Level - 1,
					Reason:      seasonModel.ReasonPromotion,
				})
				promoted++
			}
			if division.PromotePlayoffSlots > 0 {
				winnerID, decided, winErr := s.playoffs.LeagueWinner(ctx, seasonID, league.ID)
				if winErr != nil {
					return winErr
				}
				if decided {
					report.Promotions = append(report.Promotions, seasonModel.MovementEntry{
						TeamID:      winnerID,
						DivisionID:  division.ID,
						LeagueID:    league.ID,
						Position:    standingPosition(standings, winnerID),
						TargetLevel: division.Level - 1,
						Reason:      seasonModel.ReasonPlayoffWin,
					})
					promoted++
				}
			}
			if promoted > division.PromoteSlots+division.PromotePlayoffSlots {
				report.Errors = append(report.Errors,
					fmt.Sprintf("league %d: %s, %d promoted", league.ID, seasonModel.ErrPromotionOverflow, promoted))
			}
		}

		if division.Level < maxLevel && division.RelegateSlots > 0 {
			cutoff := len(standings) - division.RelegateSlots
			for _, row := range standings {
				if row.Position <= cutoff {
					continue
				}
				report.Relegations = append(report.Relegations, seasonModel.MovementEntry{
					TeamID:      row.TeamID,
					DivisionID:  division.ID,
					LeagueID:    league.ID,
					Position:    row.Position,
					TargetLevel: division.Level + 1,
					Reason:      seasonModel.ReasonRelegation,
				})
			}
		}

		if division.Level == 1 && division.EuropeanSlots > 0 {
			for _, row := range standings {
				if row.Position > division.EuropeanSlots {
					break
				}
				report.TournamentQualifiers = append(report.TournamentQualifiers, seasonModel.QualifierEntry{
					TeamID:   row.TeamID,
					LeagueID: league.ID,
					Position: row.Position,
				})
			}
		}
	}
	return nil
}

func standingPosition(standings []standingsModel.Standing, teamID int64) int {
	for _, row := range standings {
		if row.TeamID == teamID {
			return row.Position
		}
	}
	return 0
}

// destination is one team's target level and reason for the next season,
// together with the ordering keys used when refilling leagues.
type destination struct {
	teamID    int64
	level     int
	reason    string
	position  int
	followers int64
}

// ExecuteTransition closes the season and opens the next one atomically.
func (s *service) ExecuteTransition(ctx context.Context, req *seasonModel.TransitionRequest) (*seasonModel.TransitionResponse, error) {
	season, err := s.repo.GetSeason(ctx, req.SeasonID)
	if err != nil {
		return nil, err
	}
	if season.IsCompleted {
		return nil, seasonModel.ErrSeasonCompleted
	}

	report, err := s.ClosureReport(ctx, req.SeasonID)
	if err != nil {
		return nil, err
	}
	if !report.Ready() {
		return nil, fmt.Errorf("%w: %d pending, %d errors",
			seasonModel.ErrTransitionBlocked, len(report.PendingPlayoffs), len(report.Errors))
	}

	destinations, maxLevel, err := s.buildDestinations(ctx, req.SeasonID, report)
	if err != nil {
		return nil, err
	}

	newTeams, err := s.teamRepo.ListUnassigned(ctx, req.SeasonID)
	if err != nil {
		return nil, err
	}

	newSeason := &seasonModel.Season{
		Year:      season.Year + 1,
		StartDate: season.StartDate.AddDate(1, 0, 0),
		IsActive:  true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx)

		season.IsActive = false
		season.IsCompleted = true
		if saveErr := txRepo.SaveSeason(ctx, season); saveErr != nil {
			return saveErr
		}
		if createErr := txRepo.CreateSeason(ctx, newSeason); createErr != nil {
			return createErr
		}

		// Fill top to bottom so overflow from a full division cascades
		// into the one below it.
		var carried []teamService.RankedAssignment
		for level := 1; level <= maxLevel; level++ {
			ranked := append([]teamService.RankedAssignment{}, carried...)
			ranked = append(ranked, rankForLevel(destinations, level)...)
			if level == maxLevel {
				for _, team := range newTeams {
					ranked = append(ranked, teamService.RankedAssignment{
						TeamID: team.ID,
						Reason: seasonModel.ReasonInitialRanking,
						Metric: team.Followers,
					})
				}
			}
			overflow, assignErr := s.assigner.AssignTeamsToDivision(ctx, tx, newSeason.ID, level, ranked)
			if assignErr != nil {
				return assignErr
			}
			carried = nil
			for _, left := range overflow {
				left.Reason = seasonModel.ReasonFallback
				carried = append(carried, left)
			}
		}
		if len(carried) > 0 {
			return fmt.Errorf("%w: %d teams do not fit the bottom division",
				seasonModel.ErrPromotionOverflow, len(carried))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("season transition executed",
		"closed_season_id", season.ID,
		"new_season_id", newSeason.ID,
		"year", newSeason.Year,
	)
	return &seasonModel.TransitionResponse{
		NewSeasonID: newSeason.ID,
		Year:        newSeason.Year,
	}, nil
}

// buildDestinations maps every assigned team to its level for the next
// season. Teams without a movement stay at their current level.
func (s *service) buildDestinations(
	ctx context.Context,
	seasonID int64,
	report *seasonModel.ClosureReport,
) (map[int64]*destination, int, error) {
	maxLevel, err := s.divRepo.MaxLevel(ctx)
	if err != nil {
		return nil, 0, err
	}
	divisions, err := s.divRepo.ListDivisions(ctx)
	if err != nil {
		return nil, 0, err
	}

	leagueLevel := make(map[int64]int)
	positions := make(map[int64]int)
	for i := range divisions {
		leagues, listErr := s.divRepo.ListLeagues(ctx, divisions[i].ID)
		if listErr != nil {
			return nil, 0, listErr
		}
		for _, league := range leagues {
			leagueLevel[league.ID] = divisions[i].Level
			standings, standErr := s.repo.ListStandings(ctx, seasonID, league.ID)
			if standErr != nil {
				return nil, 0, standErr
			}
			for _, row := range standings {
				positions[row.TeamID] = row.Position
			}
		}
	}

	assignments, err := s.repo.ListAssignments(ctx, seasonID)
	if err != nil {
		return nil, 0, err
	}
	teamIDs := make([]int64, len(assignments))
	for i, a := range assignments {
		teamIDs[i] = a.TeamID
	}
	followers, err := s.repo.TeamFollowers(ctx, teamIDs)
	if err != nil {
		return nil, 0, err
	}

	destinations := make(map[int64]*destination, len(assignments))
	for _, a := range assignments {
		destinations[a.TeamID] = &destination{
			teamID:    a.TeamID,
			level:     leagueLevel[a.LeagueID],
			reason:    seasonModel.ReasonInitialRanking,
			position:  positions[a.TeamID],
			followers: followers[a.TeamID],
		}
	}
	for _, move := range report.Promotions {
		if dest, ok := destinations[move.TeamID]; ok {
			dest.level = move.TargetLevel
			dest.reason = move.Reason
		}
	}
	for _, move := range report.Relegations {
		if dest, ok := destinations[move.TeamID]; ok {
			dest.level = move.TargetLevel
			dest.reason = seasonModel.ReasonRelegation
		}
	}
	return destinations, maxLevel, nil
}

// rankForLevel orders a level's incoming teams by last-season position,
// then followers, then id, so league refills stay deterministic.
func rankForLevel(destinations map[int64]*destination, level int) []teamService.RankedAssignment {
	var pool []*destination
	for _, dest := range destinations {
		if dest.level == level {
			pool = append(pool, dest)
		}
	}
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].position != pool[j].position {
			return pool[i].position < pool[j].position
		}
		if pool[i].followers != pool[j].followers {
			return pool[i].followers > pool[j].followers
		}
		return pool[i].teamID < pool[j].teamID
	})

	ranked := make([]teamService.RankedAssignment, len(pool))
	for i, dest := range pool {
		ranked[i] = teamService.RankedAssignment{
			TeamID: dest.teamID,
			Reason: dest.reason,
			Metric: dest.followers,
		}
	}
	return ranked
}

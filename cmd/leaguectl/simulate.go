package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jarruego/tiktok-league/internal/database"
	divisionModel "github.com/jarruego/tiktok-league/internal/division/model"
	divisionRepository "github.com/jarruego/tiktok-league/internal/division/repository"
	matchModel "github.com/jarruego/tiktok-league/internal/match/model"
	matchRepository "github.com/jarruego/tiktok-league/internal/match/repository"
	matchService "github.com/jarruego/tiktok-league/internal/match/service"
	playoffModel "github.com/jarruego/tiktok-league/internal/playoff/model"
	playoffRepository "github.com/jarruego/tiktok-league/internal/playoff/repository"
	playoffService "github.com/jarruego/tiktok-league/internal/playoff/service"
	seasonModel "github.com/jarruego/tiktok-league/internal/season/model"
	seasonRepository "github.com/jarruego/tiktok-league/internal/season/repository"
	seasonService "github.com/jarruego/tiktok-league/internal/season/service"
	"github.com/jarruego/tiktok-league/internal/simulation"
	standingsRepository "github.com/jarruego/tiktok-league/internal/standings/repository"
	standingsService "github.com/jarruego/tiktok-league/internal/standings/service"
	teamRepository "github.com/jarruego/tiktok-league/internal/team/repository"
	teamService "github.com/jarruego/tiktok-league/internal/team/service"
)

func simulateCmd(logger *zap.SugaredLogger) *cobra.Command {
	var (
		rngSeed         int64
		daysPerMatchday int
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate the active season end to end and print the closure report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := database.New()
			if err != nil {
				return fmt.Errorf("database connect: %w", err)
			}
			defer func() {
				_ = database.Close(db)
			}()

			sim := newSimulator(db, logger, rngSeed)
			season, err := sim.seasons.GetActiveSeason(ctx)
			if err != nil {
				return err
			}

			if err := sim.regularSeason(ctx, season, daysPerMatchday); err != nil {
				return err
			}
			if err := sim.runPlayoffs(ctx, season); err != nil {
				return err
			}

			report, err := sim.seasons.ClosureReport(ctx, season.ID)
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}

	cmd.Flags().Int64Var(&rngSeed, "seed", 0, "random seed (0 uses the clock)")
	cmd.Flags().IntVar(&daysPerMatchday, "days-per-matchday", 7, "calendar days between matchdays")
	return cmd
}

// simulator bundles the services a full-season run needs.
type simulator struct {
	divisions divisionRepository.Repository
	matches   matchService.Service
	playoffs  playoffService.Service
	seasons   seasonService.Service
	seasonDB  seasonRepository.Repository
	engine    *simulation.Engine
	teamRepo  teamRepository.Repository
	logger    *zap.SugaredLogger
}

func newSimulator(db *gorm.DB, logger *zap.SugaredLogger, rngSeed int64) *simulator {
	divRepo := divisionRepository.New(db)
	teamRepo := teamRepository.New(db)
	snRepo := seasonRepository.New(db)
	standings := standingsService.New(standingsRepository.New(db), db, logger)
	matches := matchService.New(matchRepository.New(db), standings, db, logger)
	playoffs := playoffService.New(playoffRepository.New(db), db, logger)
	teams := teamService.New(teamRepo, db, logger)
	seasons := seasonService.New(snRepo, divRepo, teamRepo, playoffs, teams, db, logger)

	return &simulator{
		divisions: divRepo,
		matches:   matches,
		playoffs: playoffs,
		seasons:   seasons,
		seasonDB:  snRepo,
		engine:    simulation.New(rngSeed),
		teamRepo:  teamRepo,
		logger:    logger,
	}
}

// regularSeason generates missing fixtures and simulates every matchday of
// every league.
func (s *simulator) regularSeason(ctx context.Context, season *seasonModel.Season, daysPerMatchday int) error {
	divisions, err := s.divisions.ListDivisions(ctx)
	if err != nil {
		return err
	}

	for i := range divisions {
		leagues, listErr := s.divisions.ListLeagues(ctx, divisions[i].ID)
		if listErr != nil {
			return listErr
		}
		for _, league := range leagues {
			if err := s.simulateLeague(ctx, season, league, daysPerMatchday); err != nil {
				return fmt.Errorf("league %d: %w", league.ID, err)
			}
		}
	}
	return nil
}

func (s *simulator) simulateLeague(ctx context.Context, season *seasonModel.Season, league divisionModel.League, daysPerMatchday int) error {
	_, err := s.matches.GenerateSchedule(ctx, &matchModel.GenerateScheduleRequest{
		LeagueID:        league.ID,
		SeasonID:        season.ID,
		StartDate:       season.StartDate,
		DaysPerMatchday: daysPerMatchday,
	})
	if err != nil && !errors.Is(err, matchModel.ErrAlreadyGenerated) {
		return err
	}

	assigned, err := s.seasonDB.CountLeagueAssignments(ctx, season.ID, league.ID)
	if err != nil {
		return err
	}
	matchdays := 2 * (int(assigned) - 1)
	for matchday := 1; matchday <= matchdays; matchday++ {
		played, simErr := s.matches.SimulateMatchday(ctx, &matchModel.SimulateRequest{
			SeasonID: season.ID,
			LeagueID: league.ID,
			Matchday: matchday,
		})
		if simErr != nil {
			return simErr
		}
		if len(played) > 0 {
			s.logger.Infow("matchday simulated", "league_id", league.ID, "matchday", matchday, "matches", len(played))
		}
	}
	return nil
}

// runPlayoffs organizes and plays out the promotion playoffs of every division
// that has them, round by round until no scheduled playoff match remains.
func (s *simulator) runPlayoffs(ctx context.Context, season *seasonModel.Season) error {
	divisions, err := s.divisions.ListDivisions(ctx)
	if err != nil {
		return err
	}

	for i := range divisions {
		division := divisions[i]
		if division.PromotePlayoffSlots == 0 {
			continue
		}

		result, orgErr := s.playoffs.Organize(ctx, &playoffModel.OrganizeRequest{
			DivisionID: division.ID,
			SeasonID:   season.ID,
		})
		if orgErr != nil && !errors.Is(orgErr, playoffModel.ErrAlreadyOrganized) {
			return fmt.Errorf("organize division %d: %w", division.ID, orgErr)
		}
		if result != nil && !result.Ready {
			s.logger.Warnw("division not ready for playoffs", "division_id", division.ID, "reasons", result.NotReady)
			continue
		}

		if err := s.playRounds(ctx, season.ID, division.ID); err != nil {
			return fmt.Errorf("playoffs division %d: %w", division.ID, err)
		}
	}
	return nil
}

func (s *simulator) playRounds(ctx context.Context, seasonID, divisionID int64) error {
	for {
		scheduled, err := s.matches.GetMatches(ctx, matchModel.Filter{
			SeasonID:   seasonID,
			DivisionID: divisionID,
			Status:     matchModel.StatusScheduled,
			IsPlayoff:  truePtr(),
		})
		if err != nil {
			return err
		}
		if len(scheduled) == 0 {
			return nil
		}

		for i := range scheduled {
			if err := s.playMatch(ctx, &scheduled[i]); err != nil {
				return err
			}
		}
	}
}

// playMatch simulates one playoff match. A shootout is rolled only when the
// engine rejects the level score, so non-terminal legs keep their draws.
func (s *simulator) playMatch(ctx context.Context, match *matchModel.Match) error {
	followers, err := s.teamFollowers(ctx, match.HomeTeamID, match.AwayTeamID)
	if err != nil {
		return err
	}
	homeGoals, awayGoals := s.engine.Score(followers[match.HomeTeamID], followers[match.AwayTeamID])

	req := &playoffModel.RecordResultRequest{
		MatchID:   match.ID,
		HomeGoals: &homeGoals,
		AwayGoals: &awayGoals,
	}
	_, err = s.playoffs.RecordResult(ctx, req)
	if errors.Is(err, playoffModel.ErrPlayoffDrawNotAllowed) {
		homePens, awayPens := s.engine.Shootout()
		req.HomePenalties = &homePens
		req.AwayPenalties = &awayPens
		_, err = s.playoffs.RecordResult(ctx, req)
	}
	return err
}

func (s *simulator) teamFollowers(ctx context.Context, teamIDs ...int64) (map[int64]int64, error) {
	return s.seasonDB.TeamFollowers(ctx, teamIDs)
}

func truePtr() *bool {
	value := true
	return &value
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

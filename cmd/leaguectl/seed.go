package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jarruego/tiktok-league/internal/database"
	"github.com/jarruego/tiktok-league/internal/database/migrate"
	divisionModel "github.com/jarruego/tiktok-league/internal/division/model"
	divisionRepository "github.com/jarruego/tiktok-league/internal/division/repository"
	seasonModel "github.com/jarruego/tiktok-league/internal/season/model"
	seasonRepository "github.com/jarruego/tiktok-league/internal/season/repository"
	teamRepository "github.com/jarruego/tiktok-league/internal/team/repository"
	teamService "github.com/jarruego/tiktok-league/internal/team/service"
)

// groupCodes label parallel leagues inside a division.
const groupCodes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func seedCmd(logger *zap.SugaredLogger) *cobra.Command {
	var (
		year       int
		startDate  string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the division pyramid, open a season and place registered teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			pyramid, err := loadPyramid(configPath)
			if err != nil {
				return err
			}
			start, err := time.Parse("2006-01-02", startDate)
			if err != nil {
				return fmt.Errorf("invalid --start-date: %w", err)
			}

			db, err := database.New()
			if err != nil {
				return fmt.Errorf("database connect: %w", err)
			}
			defer func() {
				_ = database.Close(db)
			}()
			if err := migrate.Migrate(db); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}

			divRepo := divisionRepository.New(db)
			snRepo := seasonRepository.New(db)
			teamRepo := teamRepository.New(db)
			teams := teamService.New(teamRepo, db, logger)

			for i := range pyramid {
				if err := createDivision(ctx, divRepo, &pyramid[i]); err != nil {
					return err
				}
			}

			season := &seasonModel.Season{Year: year, StartDate: start, IsActive: true}
			if err := snRepo.CreateSeason(ctx, season); err != nil {
				return fmt.Errorf("create season: %w", err)
			}
			logger.Infow("season opened", "season_id", season.ID, "year", year)

			ranked, err := initialRanking(ctx, teamRepo)
			if err != nil {
				return err
			}
			for _, division := range pyramid {
				if len(ranked) == 0 {
					break
				}
				ranked, err = teams.AssignTeamsToDivision(ctx, nil, season.ID, division.Level, ranked)
				if err != nil {
					return fmt.Errorf("assign level %d: %w", division.Level, err)
				}
			}
			if len(ranked) > 0 {
				logger.Warnw("pyramid full, teams left unassigned", "count", len(ranked))
			}

			logger.Infow("seed finished", "divisions", len(pyramid), "season_id", season.ID)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "season year")
	cmd.Flags().StringVar(&startDate, "start-date", fmt.Sprintf("%d-01-01", time.Now().Year()), "season start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&configPath, "config", "", "pyramid config JSON file (defaults to the built-in pyramid)")
	return cmd
}

func createDivision(ctx context.Context, repo divisionRepository.Repository, division *divisionModel.Division) error {
	if err := division.Validate(); err != nil {
		return fmt.Errorf("division level %d: %w", division.Level, err)
	}
	if err := repo.CreateDivision(ctx, division); err != nil {
		return fmt.Errorf("create division level %d: %w", division.Level, err)
	}
	for i := 0; i < division.TotalLeagues; i++ {
		league := &divisionModel.League{
			DivisionID: division.ID,
			GroupCode:  string(groupCodes[i%len(groupCodes)]),
			MaxTeams:   division.TeamsPerLeague,
		}
		if err := repo.CreateLeague(ctx, league); err != nil {
			return fmt.Errorf("create league %s of level %d: %w", league.GroupCode, division.Level, err)
		}
	}
	return nil
}

func initialRanking(ctx context.Context, repo teamRepository.Repository) ([]teamService.RankedAssignment, error) {
	all, err := repo.ListByRanking(ctx)
	if err != nil {
		return nil, err
	}
	ranked := make([]teamService.RankedAssignment, len(all))
	for i, team := range all {
		ranked[i] = teamService.RankedAssignment{
			TeamID: team.ID,
			Reason: seasonModel.ReasonInitialRanking,
			Metric: team.Followers,
		}
	}
	return ranked, nil
}

func loadPyramid(path string) ([]divisionModel.Division, error) {
	if path == "" {
		return defaultPyramid(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pyramid config: %w", err)
	}
	var pyramid []divisionModel.Division
	if err := json.Unmarshal(raw, &pyramid); err != nil {
		return nil, fmt.Errorf("parse pyramid config: %w", err)
	}
	return pyramid, nil
}

func defaultPyramid() []divisionModel.Division {
	return []divisionModel.Division{
		{
			Level: 1, Name: "División 1",
			TotalLeagues: 1, TeamsPerLeague: 10,
			RelegateSlots: 4, EuropeanSlots: 4,
		},
		{
			Level: 2, Name: "División 2",
			TotalLeagues: 2, TeamsPerLeague: 10,
			PromoteSlots: 1, PromotePlayoffSlots: 4, RelegateSlots: 2,
			TwoLeggedSemifinals: true,
		},
		{
			Level: 3, Name: "División 3",
			TotalLeagues: 4, TeamsPerLeague: 10,
			PromoteSlots: 2, PromotePlayoffSlots: 4, RelegateSlots: 0,
			TwoLeggedSemifinals: true,
		},
	}
}

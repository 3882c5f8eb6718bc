// Package service implements the playoff engine: bracket construction from
// frozen standings slices, decisive-result validation, and winner
// advancement across rounds.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	divisionModel "github.com/jarruego/tiktok-league/internal/division/model"
	matchModel "github.com/jarruego/tiktok-league/internal/match/model"
	playoffModel "github.com/jarruego/tiktok-league/internal/playoff/model"
	"github.com/jarruego/tiktok-league/internal/playoff/repository"
)

// daysBetweenPlayoffSlots spaces playoff matchdays on the calendar.
const daysBetweenPlayoffSlots = 7

// OrganizeResult is the outcome of a bracket construction attempt. When the
// division is not ready the result lists why instead of failing.
type OrganizeResult struct {
	Ready    bool                    `json:"ready"`
	NotReady []playoffModel.NotReady `json:"not_ready,omitempty"`
	Matches  []matchModel.Match      `json:"matches,omitempty"`
}

// RecordOutcome is the result of recording one playoff match.
type RecordOutcome struct {
	Match    *matchModel.Match        `json:"match"`
	Decided  *playoffModel.TieOutcome `json:"decided,omitempty"`
	NewRound []matchModel.Match       `json:"new_round,omitempty"`
}

// Service defines the interface for playoff business logic operations.
type Service interface {
	// Organize builds the playoff bracket for every league of a division.
	// Rejected when playoff matches already exist for the season/division.
	Organize(ctx context.Context, req *playoffModel.OrganizeRequest) (*OrganizeResult, error)

	// RecordResult records a playoff match result, enforcing the no-draw
	// policy, and advances winners into the next round when a tie closes.
	RecordResult(ctx context.Context, req *playoffModel.RecordResultRequest) (*RecordOutcome, error)

	// Stage derives the playoff stage of a division for a season.
	Stage(ctx context.Context, divisionID, seasonID int64) (string, error)

	// LeagueWinner returns the playoff winner of a league bracket when the
	// final has been decided.
	LeagueWinner(ctx context.Context, seasonID, leagueID int64) (int64, bool, error)
}

type service struct {
	repo   repository.Repository
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new playoff service instance.
func New(repo repository.Repository, db *gorm.DB, logger *zap.SugaredLogger) Service {
	return &service{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// Organize builds the playoff bracket for every league of a division.
func (s *service) Organize(ctx context.Context, req *playoffModel.OrganizeRequest) (*OrganizeResult, error) {
	division, err := s.repo.GetDivision(ctx, req.DivisionID)
	if err != nil {
		return nil, err
	}
	if division.PromotePlayoffSlots == 0 {
		return nil, playoffModel.ErrNoPlayoffSlots
	}
	if !isPowerOfTwo(division.PromotePlayoffSlots) {
		return nil, fmt.Errorf("%w: promote_playoff_slots must be a power of two, got %d",
			divisionModel.ErrInvalidDivisionConfig, division.PromotePlayoffSlots)
	}

	leagues, err := s.repo.ListLeagues(ctx, req.DivisionID)
	if err != nil {
		return nil, err
	}

	notReady, err := s.readiness(ctx, req.SeasonID, division, leagues)
	if err != nil {
		return nil, err
	}
	if len(notReady) > 0 {
		return &OrganizeResult{Ready: false, NotReady: notReady}, nil
	}

	leagueIDs := make([]int64, len(leagues))
	for i, l := range leagues {
		leagueIDs[i] = l.ID
	}

	var created []matchModel.Match
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx)

		count, countErr := txRepo.CountPlayoffMatches(ctx, req.SeasonID, leagueIDs)
		if countErr != nil {
			return countErr
		}
		if count > 0 {
			return fmt.Errorf("%w: %d playoff matches exist for season %d division %d",
				playoffModel.ErrAlreadyOrganized, count, req.SeasonID, req.DivisionID)
		}

		for _, league := range leagues {
			matches, buildErr := s.buildOpeningRound(ctx, txRepo, division, league.ID, req.SeasonID)
			if buildErr != nil {
				return buildErr
			}
			if createErr := txRepo.CreateMatches(ctx, matches); createErr != nil {
				return createErr
			}
			created = append(created, matches...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("playoffs organized",
		"season_id", req.SeasonID,
		"division_id", req.DivisionID,
		"leagues", len(leagues),
		"matches", len(created),
	)
	return &OrganizeResult{Ready: true, Matches: created}, nil
}

// readiness checks every league of the division for unfinished regular
// matches and stale standings.
func (s *service) readiness(
	ctx context.Context,
	seasonID int64,
	division *divisionModel.Division,
	leagues []divisionModel.League,
) ([]playoffModel.NotReady, error) {
	var notReady []playoffModel.NotReady
	for _, league := range leagues {
		unfinished, err := s.repo.CountUnfinishedRegular(ctx, seasonID, league.ID)
		if err != nil {
			return nil, err
		}
		if unfinished > 0 {
			notReady = append(notReady, playoffModel.NotReady{
				LeagueID:          league.ID,
				Reason:            "unfinished regular matches",
				UnfinishedMatches: int(unfinished),
			})
			continue
		}

		standingsCount, err := s.repo.CountStandings(ctx, seasonID, league.ID)
		if err != nil {
			return nil, err
		}
		assigned, err := s.repo.CountAssigned(ctx, seasonID, league.ID)
		if err != nil {
			return nil, err
		}
		if standingsCount == 0 || standingsCount < assigned {
			notReady = append(notReady, playoffModel.NotReady{
				LeagueID: league.ID,
				Reason:   "standings not current",
			})
			continue
		}
		if int64(division.PromoteSlots+division.PromotePlayoffSlots) > standingsCount {
			notReady = append(notReady, playoffModel.NotReady{
				LeagueID: league.ID,
				Reason:   "standings smaller than playoff slice",
			})
		}
	}
	return notReady, nil
}

// buildOpeningRound seeds the first round of one league's bracket from the
// standings slice, best against worst.
func (s *service) buildOpeningRound(
	ctx context.Context,
	repo repository.Repository,
	division *divisionModel.Division,
	leagueID, seasonID int64,
) ([]matchModel.Match, error) {
	seeds, err := s.seedSlice(ctx, repo, division, seasonID, leagueID)
	if err != nil {
		return nil, err
	}

	lastDate, err := repo.LastRegularDate(ctx, seasonID, leagueID)
	if err != nil {
		return nil, err
	}
	baseDate := lastDate.AddDate(0, 0, daysBetweenPlayoffSlots)

	rounds := bracketRounds(len(seeds))
	name := roundName(0, rounds)
	twoLegged := s.roundTwoLegged(division, 0, rounds)

	var matches []matchModel.Match
	for i := 0; i < len(seeds)/2; i++ {
		better, worse := seeds[i], seeds[len(seeds)-1-i]
		matches = append(matches, buildTieMatches(seasonID, leagueID, better, worse, name, 0, twoLegged, baseDate)...)
	}
	return matches, nil
}

// seedSlice returns the playoff-eligible team ids in seed order, best first.
func (s *service) seedSlice(
	ctx context.Context,
	repo repository.Repository,
	division *divisionModel.Division,
	seasonID, leagueID int64,
) ([]int64, error) {
	standings, err := repo.ListStandings(ctx, seasonID, leagueID)
	if err != nil {
		return nil, err
	}
	from := division.PromoteSlots + 1
	to := division.PromoteSlots + division.PromotePlayoffSlots
	if len(standings) < to {
		return nil, fmt.Errorf("%w: standings have %d rows, playoff slice ends at %d",
			playoffModel.ErrPlayoffsNotReady, len(standings), to)
	}

	seeds := make([]int64, 0, division.PromotePlayoffSlots)
	for _, row := range standings {
		if row.Position >= from && row.Position <= to {
			seeds = append(seeds, row.TeamID)
		}
	}
	return seeds, nil
}

// buildTieMatches creates the match rows of one tie. Two-legged ties put the
// worse seed at home first so the better seed hosts the decisive leg.
func buildTieMatches(
	seasonID, leagueID, better, worse int64,
	round string,
	roundIdx int,
	twoLegged bool,
	baseDate time.Time,
) []matchModel.Match {
	slot := roundIdx * 2
	first := matchModel.Match{
		SeasonID:      seasonID,
		LeagueID:      leagueID,
		HomeTeamID:    worse,
		AwayTeamID:    better,
		Matchday:      matchModel.PlayoffMatchdayBase + slot,
		ScheduledDate: baseDate.AddDate(0, 0, slot*daysBetweenPlayoffSlots),
		Status:        matchModel.StatusScheduled,
		IsPlayoff:     true,
		PlayoffRound:  &round,
	}
	if !twoLegged {
		// Single match: the better seed hosts.
		first.HomeTeamID, first.AwayTeamID = better, worse
		return []matchModel.Match{first}
	}
	second := matchModel.Match{
		SeasonID:      seasonID,
		LeagueID:      leagueID,
		HomeTeamID:    better,
		AwayTeamID:    worse,
		Matchday:      matchModel.PlayoffMatchdayBase + slot + 1,
		ScheduledDate: baseDate.AddDate(0, 0, (slot+1)*daysBetweenPlayoffSlots),
		Status:        matchModel.StatusScheduled,
		IsPlayoff:     true,
		PlayoffRound:  &round,
	}
	return []matchModel.Match{first, second}
}

func (s *service) roundTwoLegged(division *divisionModel.Division, roundIdx, rounds int) bool {
	if roundIdx == rounds-1 {
		return division.TwoLeggedFinal
	}
	return division.TwoLeggedSemifinals
}

func isPowerOfTwo(n int) bool {
	return n >= 2 && n&(n-1) == 0
}

func bracketRounds(size int) int {
	rounds := 0
	for size > 1 {
		size /= 2
		rounds++
	}
	return rounds
}

// roundName maps a round index to its display name by distance from the final.
func roundName(roundIdx, rounds int) string {
	switch rounds - roundIdx {
	case 1:
		return matchModel.RoundFinal
	case 2:
		return matchModel.RoundSemifinal
	default:
		return matchModel.RoundQuarterfinal
	}
}

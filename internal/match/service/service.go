// Package service provides business logic for the match module: fixture
// generation, result recording, and simulation.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	matchModel "github.com/jarruego/tiktok-league/internal/match/model"
	"github.com/jarruego/tiktok-league/internal/match/repository"
	"github.com/jarruego/tiktok-league/internal/simulation"
	standingsModel "github.com/jarruego/tiktok-league/internal/standings/model"
)

// Recomputer rebuilds league standings on the caller's transaction, so the
// result write and its recompute commit or roll back together. Satisfied by
// the standings service.
type Recomputer interface {
	RecomputeTx(ctx context.Context, tx *gorm.DB, seasonID, leagueID int64) ([]standingsModel.Standing, error)
}

// Service defines the interface for match business logic operations.
type Service interface {
	// GenerateSchedule produces the double round-robin fixture set for a
	// league and persists it in one transaction. Rejected when fixtures
	// already exist for the (season, league).
	GenerateSchedule(ctx context.Context, req *matchModel.GenerateScheduleRequest) ([]matchModel.Match, error)

	// RecordResult records a regular match result and recomputes the
	// league standings in the same transaction.
	RecordResult(ctx context.Context, req *matchModel.RecordResultRequest) (*matchModel.Match, error)

	// SimulateMatchday simulates every scheduled match of one matchday
	// (or the whole league when matchday is 0), then recomputes standings.
	SimulateMatchday(ctx context.Context, req *matchModel.SimulateRequest) ([]matchModel.Match, error)

	// GetMatches returns matches narrowed by the filter.
	GetMatches(ctx context.Context, filter matchModel.Filter) ([]matchModel.Match, error)
}

type service struct {
	repo      repository.Repository
	standings Recomputer
	db        *gorm.DB
	logger    *zap.SugaredLogger
}

// New creates a new match service instance.
func New(repo repository.Repository, standings Recomputer, db *gorm.DB, logger *zap.SugaredLogger) Service {
	return &service{
		repo:      repo,
		standings: standings,
		db:        db,
		logger:    logger,
	}
}

// pairing is one fixture slot produced by the round-robin scheduler.
type pairing struct {
	home, away int64
	matchday   int
}

// GenerateSchedule produces the double round-robin fixture set for a league.
func (s *service) GenerateSchedule(ctx context.Context, req *matchModel.GenerateScheduleRequest) ([]matchModel.Match, error) {
	if req.DaysPerMatchday < 1 || req.DaysPerMatchday > 30 {
		return nil, matchModel.ErrInvalidMatchdaySpacing
	}

	teamIDs, err := s.repo.ListAssignedTeamIDs(ctx, req.SeasonID, req.LeagueID)
	if err != nil {
		return nil, err
	}
	if len(teamIDs) < 2 || len(teamIDs)%2 != 0 {
		return nil, fmt.Errorf("%w: league %d has %d teams",
			matchModel.ErrInvalidRosterSize, req.LeagueID, len(teamIDs))
	}

	var result []matchModel.Match
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx)

		// Idempotent guard: existing fixtures must be deleted explicitly
		// before regenerating. The unique constraint on the storage layer
		// is the second net against concurrent double generation.
		count, countErr := txRepo.CountRegular(ctx, req.SeasonID, req.LeagueID)
		if countErr != nil {
			return countErr
		}
		if count > 0 {
			return fmt.Errorf("%w: %d matches exist for season %d league %d",
				matchModel.ErrAlreadyGenerated, count, req.SeasonID, req.LeagueID)
		}

		pairings := doubleRoundRobin(teamIDs)
		matches := make([]matchModel.Match, len(pairings))
		for i, p := range pairings {
			matches[i] = matchModel.Match{
				SeasonID:      req.SeasonID,
				LeagueID:      req.LeagueID,
				HomeTeamID:    p.home,
				AwayTeamID:    p.away,
				Matchday:      p.matchday,
				ScheduledDate: req.StartDate.AddDate(0, 0, (p.matchday-1)*req.DaysPerMatchday),
				Status:        matchModel.StatusScheduled,
			}
		}

		if verifyErr := verifySchedule(matches, teamIDs); verifyErr != nil {
			return verifyErr
		}

		if createErr := txRepo.CreateBatch(ctx, matches); createErr != nil {
			return createErr
		}
		result = matches
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("schedule generated",
		"season_id", req.SeasonID,
		"league_id", req.LeagueID,
		"teams", len(teamIDs),
		"matches", len(result),
	)
	return result, nil
}

// doubleRoundRobin builds the fixture list with the circle method: one team
// stays fixed while the rest rotate each round, then the legs are mirrored
// with home and away swapped.
func doubleRoundRobin(teamIDs []int64) []pairing {
	n := len(teamIDs)
	rotation := make([]int64, n)
	copy(rotation, teamIDs)

	rounds := n - 1
	perRound := n / 2
	pairings := make([]pairing, 0, n*(n-1))

	for round := 0; round < rounds; round++ {
		for i := 0; i < perRound; i++ {
			home, away := rotation[i], rotation[n-1-i]
			// Alternate the fixed team's venue so it does not host every round.
			if i == 0 && round%2 == 1 {
				home, away = away, home
			}
			pairings = append(pairings, pairing{home: home, away: away, matchday: round + 1})
		}
		// Rotate all but the first element.
		last := rotation[n-1]
		copy(rotation[2:], rotation[1:n-1])
		rotation[1] = last
	}

	// Second leg mirrors the first with venues swapped.
	firstLeg := len(pairings)
	for i := 0; i < firstLeg; i++ {
		p := pairings[i]
		pairings = append(pairings, pairing{
			home:     p.away,
			away:     p.home,
			matchday: p.matchday + rounds,
		})
	}
	return pairings
}

// verifySchedule asserts the generated set before anything is persisted:
// N*(N-1) matches total, N-1 home and N-1 away per team, nobody plays itself.
func verifySchedule(matches []matchModel.Match, teamIDs []int64) error {
	n := len(teamIDs)
	if len(matches) != n*(n-1) {
		return fmt.Errorf("%w: got %d matches, want %d",
			matchModel.ErrScheduleIntegrity, len(matches), n*(n-1))
	}

	homeCount := make(map[int64]int, n)
	awayCount := make(map[int64]int, n)
	seen := make(map[[2]int64]bool, len(matches))
	for i := range matches {
		m := &matches[i]
		if m.HomeTeamID == m.AwayTeamID {
			return fmt.Errorf("%w: team %d plays itself on matchday %d",
				matchModel.ErrScheduleIntegrity, m.HomeTeamID, m.Matchday)
		}
		key := [2]int64{m.HomeTeamID, m.AwayTeamID}
		if seen[key] {
			return fmt.Errorf("%w: duplicate fixture %d vs %d",
				matchModel.ErrScheduleIntegrity, m.HomeTeamID, m.AwayTeamID)
		}
		seen[key] = true
		homeCount[m.HomeTeamID]++
		awayCount[m.AwayTeamID]++
	}

	for _, id := range teamIDs {
		if homeCount[id] != n-1 || awayCount[id] != n-1 {
			return fmt.Errorf("%w: team %d has %d home and %d away fixtures, want %d each",
				matchModel.ErrScheduleIntegrity, id, homeCount[id], awayCount[id], n-1)
		}
	}
	return nil
}

// RecordResult records a regular match result and recomputes standings in
// the same transaction.
func (s *service) RecordResult(ctx context.Context, req *matchModel.RecordResultRequest) (*matchModel.Match, error) {
	if req.HomeGoals == nil || req.AwayGoals == nil || *req.HomeGoals < 0 || *req.AwayGoals < 0 {
		return nil, matchModel.ErrInvalidGoals
	}

	var updated *matchModel.Match
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx)

		match, err := txRepo.GetByIDForUpdate(ctx, req.MatchID)
		if err != nil {
			return err
		}
		if match.IsPlayoff {
			return matchModel.ErrPlayoffResultRoute
		}
		switch match.Status {
		case matchModel.StatusFinished:
			return matchModel.ErrMatchAlreadyFinished
		case matchModel.StatusCancelled:
			return matchModel.ErrMatchCancelled
		}

		match.HomeGoals = req.HomeGoals
		match.AwayGoals = req.AwayGoals
		match.Status = matchModel.StatusFinished
		if err := txRepo.Save(ctx, match); err != nil {
			return err
		}

		if _, err := s.standings.RecomputeTx(ctx, tx, match.SeasonID, match.LeagueID); err != nil {
			return fmt.Errorf("standings recompute for result: %w", err)
		}

		updated = match
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// SimulateMatchday simulates scheduled matches and recomputes standings once.
func (s *service) SimulateMatchday(ctx context.Context, req *matchModel.SimulateRequest) ([]matchModel.Match, error) {
	filter := matchModel.Filter{
		SeasonID:  req.SeasonID,
		LeagueID:  req.LeagueID,
		Matchday:  req.Matchday,
		Status:    matchModel.StatusScheduled,
		IsPlayoff: boolPtr(false),
	}
	matches, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return []matchModel.Match{}, nil
	}

	teamIDs := make([]int64, 0, len(matches)*2)
	for i := range matches {
		teamIDs = append(teamIDs, matches[i].HomeTeamID, matches[i].AwayTeamID)
	}
	followers, err := s.repo.TeamFollowers(ctx, teamIDs)
	if err != nil {
		return nil, err
	}

	engine := simulation.New(0)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx)
		now := time.Now()
		for i := range matches {
			m := &matches[i]
			home, away := engine.Score(followers[m.HomeTeamID], followers[m.AwayTeamID])
			m.HomeGoals = &home
			m.AwayGoals = &away
			m.Status = matchModel.StatusFinished
			m.UpdatedAt = now
			if saveErr := txRepo.Save(ctx, m); saveErr != nil {
				return saveErr
			}
		}

		if _, recErr := s.standings.RecomputeTx(ctx, tx, req.SeasonID, req.LeagueID); recErr != nil {
			return fmt.Errorf("standings recompute for matchday: %w", recErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("matchday simulated",
		"season_id", req.SeasonID,
		"league_id", req.LeagueID,
		"matchday", req.Matchday,
		"matches", len(matches),
	)
	return matches, nil
}

// GetMatches returns matches narrowed by the filter.
func (s *service) GetMatches(ctx context.Context, filter matchModel.Filter) ([]matchModel.Match, error) {
	if filter.Status != "" && !matchModel.ValidStatus(filter.Status) {
		return nil, errors.New("unknown match status: " + filter.Status)
	}
	return s.repo.List(ctx, filter)
}

func boolPtr(b bool) *bool {
	return &b
}

package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	divisionModel "github.com/jarruego/tiktok-league/internal/division/model"
	matchModel "github.com/jarruego/tiktok-league/internal/match/model"
	playoffModel "github.com/jarruego/tiktok-league/internal/playoff/model"
	"github.com/jarruego/tiktok-league/internal/playoff/repository"
)

// RecordResult records a playoff match result, enforcing the no-draw policy.
func (s *service) RecordResult(ctx context.Context, req *playoffModel.RecordResultRequest) (*RecordOutcome, error) {
	if req.HomeGoals == nil || req.AwayGoals == nil || *req.HomeGoals < 0 || *req.AwayGoals < 0 {
		return nil, matchModel.ErrInvalidGoals
	}

	var outcome *RecordOutcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx)

		match, err := txRepo.GetMatchForUpdate(ctx, req.MatchID)
		if err != nil {
			return err
		}
		if !match.IsPlayoff {
			return playoffModel.ErrNotPlayoffMatch
		}
		switch match.Status {
		case matchModel.StatusFinished:
			return matchModel.ErrMatchAlreadyFinished
		case matchModel.StatusCancelled:
			return matchModel.ErrMatchCancelled
		}

		league, err := txRepo.GetLeague(ctx, match.LeagueID)
		if err != nil {
			return err
		}
		division, err := txRepo.GetDivision(ctx, league.DivisionID)
		if err != nil {
			return err
		}

		sibling, err := siblingLeg(ctx, txRepo, match)
		if err != nil {
			return err
		}

		terminal := sibling == nil || sibling.IsFinished()
		if err := validateLeg(match, sibling, terminal, req); err != nil {
			return err
		}

		match.HomeGoals = req.HomeGoals
		match.AwayGoals = req.AwayGoals
		match.HomePenalties = req.HomePenalties
		match.AwayPenalties = req.AwayPenalties
		match.Status = matchModel.StatusFinished
		if err := txRepo.SaveMatch(ctx, match); err != nil {
			return err
		}

		outcome = &RecordOutcome{Match: match}
		if terminal {
			winner, loser, _ := tieVerdict(match, sibling)
			outcome.Decided = &playoffModel.TieOutcome{
				LeagueID:     match.LeagueID,
				Round:        *match.PlayoffRound,
				WinnerTeamID: winner,
				LoserTeamID:  loser,
			}

			newRound, advErr := s.advance(ctx, txRepo, division, match.SeasonID, match.LeagueID)
			if advErr != nil {
				return advErr
			}
			outcome.NewRound = newRound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if outcome.Decided != nil {
		s.logger.Infow("playoff tie decided",
			"league_id", outcome.Decided.LeagueID,
			"round", outcome.Decided.Round,
			"winner_team_id", outcome.Decided.WinnerTeamID,
		)
	}
	return outcome, nil
}

// siblingLeg returns the other leg of the same tie, nil for single matches.
func siblingLeg(ctx context.Context, repo repository.Repository, match *matchModel.Match) (*matchModel.Match, error) {
	matches, err := repo.ListPlayoffMatches(ctx, match.SeasonID, match.LeagueID)
	if err != nil {
		return nil, err
	}
	for i := range matches {
		m := &matches[i]
		if m.ID == match.ID || m.PlayoffRound == nil || match.PlayoffRound == nil {
			continue
		}
		if *m.PlayoffRound != *match.PlayoffRound {
			continue
		}
		if samePair(m, match) {
			return m, nil
		}
	}
	return nil, nil
}

func samePair(a, b *matchModel.Match) bool {
	return (a.HomeTeamID == b.HomeTeamID && a.AwayTeamID == b.AwayTeamID) ||
		(a.HomeTeamID == b.AwayTeamID && a.AwayTeamID == b.HomeTeamID)
}

// validateLeg enforces the decisive-result policy for the leg being recorded.
// Non-terminal legs may end level and never take penalties; the leg that
// closes a tie must leave a strict winner, by goals, away goals, or shootout.
func validateLeg(match, sibling *matchModel.Match, terminal bool, req *playoffModel.RecordResultRequest) error {
	hasPenalties := req.HomePenalties != nil || req.AwayPenalties != nil

	if !terminal {
		if hasPenalties {
			return playoffModel.ErrUnexpectedPenalties
		}
		return nil
	}

	level := false
	if sibling == nil {
		level = *req.HomeGoals == *req.AwayGoals
	} else {
		// Aggregate over both legs from this match's perspective.
		homeAgg := *req.HomeGoals + *sibling.AwayGoals
		awayAgg := *req.AwayGoals + *sibling.HomeGoals
		if homeAgg == awayAgg {
			// Away-goals rule: this match's home side scored away in the
			// sibling leg.
			homeAwayGoals := *sibling.AwayGoals
			awayAwayGoals := *req.AwayGoals
			level = homeAwayGoals == awayAwayGoals
		}
	}

	if !level {
		if hasPenalties {
			return playoffModel.ErrUnexpectedPenalties
		}
		return nil
	}

	if req.HomePenalties == nil || req.AwayPenalties == nil {
		return fmt.Errorf("%w: match %d ends level and no shootout was recorded",
			playoffModel.ErrPlayoffDrawNotAllowed, match.ID)
	}
	if *req.HomePenalties == *req.AwayPenalties || *req.HomePenalties < 0 || *req.AwayPenalties < 0 {
		return fmt.Errorf("%w: shootout %d-%d is not decisive",
			playoffModel.ErrPlayoffDrawNotAllowed, *req.HomePenalties, *req.AwayPenalties)
	}
	return nil
}

// tieVerdict resolves the winner of a tie from the leg that closes it.
// Aggregate goals first, away goals across two legs next, shootout last.
// ok is false when the legs end level with no shootout recorded, which the
// record path never persists.
func tieVerdict(terminalLeg, sibling *matchModel.Match) (winner, loser int64, ok bool) {
	home, away := terminalLeg.HomeTeamID, terminalLeg.AwayTeamID

	homeGoals := *terminalLeg.HomeGoals
	awayGoals := *terminalLeg.AwayGoals
	if sibling != nil {
		homeGoals += *sibling.AwayGoals
		awayGoals += *sibling.HomeGoals
	}

	switch {
	case homeGoals > awayGoals:
		return home, away, true
	case homeGoals < awayGoals:
		return away, home, true
	}

	if sibling != nil {
		// Away goals across the two legs.
		homeAway := *sibling.AwayGoals
		awayAway := *terminalLeg.AwayGoals
		if homeAway > awayAway {
			return home, away, true
		}
		if homeAway < awayAway {
			return away, home, true
		}
	}

	if terminalLeg.HomePenalties == nil || terminalLeg.AwayPenalties == nil {
		return 0, 0, false
	}
	if *terminalLeg.HomePenalties > *terminalLeg.AwayPenalties {
		return home, away, true
	}
	return away, home, true
}

// pickTerminal chooses the leg that closed a tie: the one carrying a
// shootout when present, otherwise the later matchday.
func pickTerminal(legs []*matchModel.Match) (terminal, sibling *matchModel.Match) {
	terminal = legs[len(legs)-1]
	if len(legs) == 1 {
		return terminal, nil
	}
	sibling = legs[0]
	if sibling.HomePenalties != nil || sibling.AwayPenalties != nil {
		terminal, sibling = sibling, terminal
	}
	return terminal, sibling
}

// advance creates the next round once every tie of the current round is
// decided. Returns the created matches, empty when nothing advances.
func (s *service) advance(
	ctx context.Context,
	repo repository.Repository,
	division *divisionModel.Division,
	seasonID, leagueID int64,
) ([]matchModel.Match, error) {
	seeds, err := s.seedSlice(ctx, repo, division, seasonID, leagueID)
	if err != nil {
		return nil, err
	}
	matches, err := repo.ListPlayoffMatches(ctx, seasonID, leagueID)
	if err != nil {
		return nil, err
	}

	rounds := bracketRounds(len(seeds))
	seedRank := make(map[int64]int, len(seeds))
	for i, id := range seeds {
		seedRank[id] = i
	}

	// Pairs of the current round, better seed first.
	pairs := make([][2]int64, 0, len(seeds)/2)
	for i := 0; i < len(seeds)/2; i++ {
		pairs = append(pairs, [2]int64{seeds[i], seeds[len(seeds)-1-i]})
	}

	for round := 0; round < rounds; round++ {
		name := roundName(round, rounds)
		roundMatches := filterRound(matches, name)
		if len(roundMatches) == 0 {
			// Previous rounds were all decided or we would have returned;
			// build this round from the surviving pairs.
			lastDate, dateErr := repo.LastRegularDate(ctx, seasonID, leagueID)
			if dateErr != nil {
				return nil, dateErr
			}
			baseDate := lastDate.AddDate(0, 0, daysBetweenPlayoffSlots)
			twoLegged := s.roundTwoLegged(division, round, rounds)

			var created []matchModel.Match
			for _, p := range pairs {
				created = append(created,
					buildTieMatches(seasonID, leagueID, p[0], p[1], name, round, twoLegged, baseDate)...)
			}
			if err := repo.CreateMatches(ctx, created); err != nil {
				return nil, err
			}
			return created, nil
		}

		winners := make([]int64, 0, len(pairs))
		for _, p := range pairs {
			winner, decided := pairWinner(p, roundMatches)
			if !decided {
				// Round still in progress; nothing to advance yet.
				return nil, nil
			}
			winners = append(winners, winner)
		}
		if len(winners) == 1 {
			// Final decided; bracket complete.
			return nil, nil
		}

		// Winners pair up bracket-style, better original seed first.
		next := make([][2]int64, 0, len(winners)/2)
		for i := 0; i < len(winners)/2; i++ {
			a, b := winners[i], winners[len(winners)-1-i]
			if seedRank[b] < seedRank[a] {
				a, b = b, a
			}
			next = append(next, [2]int64{a, b})
		}
		pairs = next
	}
	return nil, nil
}

func filterRound(matches []matchModel.Match, round string) []matchModel.Match {
	var out []matchModel.Match
	for i := range matches {
		if matches[i].PlayoffRound != nil && *matches[i].PlayoffRound == round {
			out = append(out, matches[i])
		}
	}
	return out
}

// pairWinner resolves one tie from its persisted legs.
func pairWinner(pair [2]int64, roundMatches []matchModel.Match) (int64, bool) {
	var legs []*matchModel.Match
	for i := range roundMatches {
		m := &roundMatches[i]
		if (m.HomeTeamID == pair[0] && m.AwayTeamID == pair[1]) ||
			(m.HomeTeamID == pair[1] && m.AwayTeamID == pair[0]) {
			legs = append(legs, m)
		}
	}
	if len(legs) == 0 {
		return 0, false
	}
	for _, leg := range legs {
		if !leg.IsFinished() {
			return 0, false
		}
	}

	terminal, sibling := pickTerminal(legs)
	winner, _, ok := tieVerdict(terminal, sibling)
	return winner, ok
}

// Stage derives the playoff stage of a division for a season.
func (s *service) Stage(ctx context.Context, divisionID, seasonID int64) (string, error) {
	division, err := s.repo.GetDivision(ctx, divisionID)
	if err != nil {
		return "", err
	}
	leagues, err := s.repo.ListLeagues(ctx, divisionID)
	if err != nil {
		return "", err
	}

	for _, league := range leagues {
		unfinished, err := s.repo.CountUnfinishedRegular(ctx, seasonID, league.ID)
		if err != nil {
			return "", err
		}
		if unfinished > 0 {
			return playoffModel.StageRegularSeason, nil
		}
	}

	if division.PromotePlayoffSlots == 0 {
		return playoffModel.StageComplete, nil
	}

	leagueIDs := make([]int64, len(leagues))
	for i, l := range leagues {
		leagueIDs[i] = l.ID
	}
	count, err := s.repo.CountPlayoffMatches(ctx, seasonID, leagueIDs)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return playoffModel.StagePlayoffsPending, nil
	}

	for _, league := range leagues {
		_, decided, err := s.LeagueWinner(ctx, seasonID, league.ID)
		if err != nil {
			return "", err
		}
		if !decided {
			return playoffModel.StagePlayoffsInProgress, nil
		}
	}
	return playoffModel.StagePlayoffsComplete, nil
}

// LeagueWinner returns the playoff winner of a league bracket when decided.
func (s *service) LeagueWinner(ctx context.Context, seasonID, leagueID int64) (int64, bool, error) {
	matches, err := s.repo.ListPlayoffMatches(ctx, seasonID, leagueID)
	if err != nil {
		return 0, false, err
	}
	finals := filterRound(matches, matchModel.RoundFinal)
	if len(finals) == 0 {
		return 0, false, nil
	}
	legs := make([]*matchModel.Match, 0, len(finals))
	for i := range finals {
		if !finals[i].IsFinished() {
			return 0, false, nil
		}
		legs = append(legs, &finals[i])
	}

	terminal, sibling := pickTerminal(legs)
	winner, _, ok := tieVerdict(terminal, sibling)
	return winner, ok, nil
}

// Package simulation produces match results. Scores are sampled from a
// Poisson distribution whose means derive from team popularity, so bigger
// accounts win more often without making results deterministic.
package simulation

import (
	"math"
	"math/rand"
	"time"
)

// Engine samples match scores. Not safe for concurrent use; each caller
// owns its engine.
type Engine struct {
	rng *rand.Rand
}

// New creates an engine with the given seed. A non-positive seed derives
// one from the clock.
func New(seed int64) *Engine {
	if seed <= 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{rng: rand.New(rand.NewSource(seed))}
}

// homeAdvantage inflates the home side's expected goals.
const homeAdvantage = 1.15

// totalExpectedGoals keeps the average match around three goals.
const totalExpectedGoals = 3.0

// Score samples a scoreline for a match between two teams identified by
// their follower counts. Draws are possible.
func (e *Engine) Score(homeFollowers, awayFollowers int64) (homeGoals, awayGoals int) {
	home := strength(homeFollowers) * homeAdvantage
	away := strength(awayFollowers)

	total := home + away
	lambdaHome := home / total * totalExpectedGoals
	lambdaAway := away / total * totalExpectedGoals

	homeGoals = e.samplePoisson(lambdaHome)
	awayGoals = e.samplePoisson(lambdaAway)
	return homeGoals, awayGoals
}

// Shootout samples a penalty shootout with a strict winner.
func (e *Engine) Shootout() (home, away int) {
	for home == away {
		home = 3 + e.rng.Intn(3)
		away = 3 + e.rng.Intn(3)
	}
	return home, away
}

// strength maps a follower count onto a bounded scale. The log keeps a
// ten-million-follower club from shutting out a thousand-follower one.
func strength(followers int64) float64 {
	if followers < 0 {
		followers = 0
	}
	return 1.0 + math.Log10(float64(followers)+10)
}

// samplePoisson draws from a Poisson distribution with mean lambda using
// Knuth's method. League lambdas stay small, so the loop is short.
func (e *Engine) samplePoisson(lambda float64) int {
	limit := math.Exp(-lambda)
	p := 1.0
	k := 0
	for p > limit {
		k++
		p *= e.rng.Float64()
	}
	return k - 1
}

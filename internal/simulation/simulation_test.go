package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Score(t *testing.T) {
	t.Run("same seed reproduces the same scores", func(t *testing.T) {
		a := New(42)
		b := New(42)

		for i := 0; i < 50; i++ {
			ah, aa := a.Score(1_000_000, 50_000)
			bh, ba := b.Score(1_000_000, 50_000)
			assert.Equal(t, ah, bh)
			assert.Equal(t, aa, ba)
		}
	})

	t.Run("scores are never negative", func(t *testing.T) {
		engine := New(7)
		for i := 0; i < 200; i++ {
			home, away := engine.Score(0, 10_000_000)
			assert.GreaterOrEqual(t, home, 0)
			assert.GreaterOrEqual(t, away, 0)
		}
	})

	t.Run("stronger side wins more often over many matches", func(t *testing.T) {
		engine := New(99)
		strongWins, weakWins := 0, 0
		for i := 0; i < 500; i++ {
			home, away := engine.Score(10_000_000, 1_000)
			switch {
			case home > away:
				strongWins++
			case away > home:
				weakWins++
			}
		}
		assert.Greater(t, strongWins, weakWins)
	})

	t.Run("negative follower counts are tolerated", func(t *testing.T) {
		engine := New(3)
		home, away := engine.Score(-5, -5)
		assert.GreaterOrEqual(t, home, 0)
		assert.GreaterOrEqual(t, away, 0)
	})
}

func TestEngine_Shootout(t *testing.T) {
	engine := New(11)
	for i := 0; i < 100; i++ {
		home, away := engine.Shootout()
		require.NotEqual(t, home, away)
		assert.GreaterOrEqual(t, home, 3)
		assert.GreaterOrEqual(t, away, 3)
		assert.LessOrEqual(t, home, 5)
		assert.LessOrEqual(t, away, 5)
	}
}

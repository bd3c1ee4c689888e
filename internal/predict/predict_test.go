package predict

import (
	"testing"

	"github.com/jfoessettjr/cbb-tracker/internal/elo"

	"github.com/stretchr/testify/assert"
)

func TestComputePrediction_HomeCourtEdge(t *testing.T) {
	pred := computePrediction(1, 2, "2026", 1500, 1500, false)

	// Equal ratings plus home court: the home side is favored
	assert.Greater(t, pred.HomeWinProb, 0.5)
	assert.InDelta(t, 1.0, pred.HomeWinProb+pred.AwayWinProb, 1e-9)
	assert.Equal(t, elo.HomeAdvantage, pred.HomeAdvantageApplied)
	assert.InDelta(t, elo.HomeAdvantage, pred.EloGap, 1e-9)
}

func TestComputePrediction_NeutralSite(t *testing.T) {
	pred := computePrediction(1, 2, "2026", 1500, 1500, true)

	assert.InDelta(t, 0.5, pred.HomeWinProb, 1e-9)
	assert.InDelta(t, 0.5, pred.AwayWinProb, 1e-9)
	assert.Equal(t, 0.0, pred.HomeAdvantageApplied)
	assert.InDelta(t, 0.0, pred.EloGap, 1e-9)
}

func TestComputePrediction_MatchesEngineCurve(t *testing.T) {
	pred := computePrediction(1, 2, "2026", 1620, 1480, false)

	// The quote must use the exact expectancy the rating engine applies
	want := elo.ExpectedScore(1620+elo.HomeAdvantage, 1480)
	assert.InDelta(t, want, pred.HomeWinProb, 1e-9)
	assert.InDelta(t, (1620+elo.HomeAdvantage)-1480, pred.EloGap, 1e-9)

	assert.Equal(t, 1620.0, pred.HomeElo)
	assert.Equal(t, 1480.0, pred.AwayElo)
	assert.Equal(t, "2026", pred.Season)
}

func TestComputePrediction_UnderdogHome(t *testing.T) {
	// A big away edge overwhelms home court
	pred := computePrediction(1, 2, "2026", 1450, 1700, false)
	assert.Less(t, pred.HomeWinProb, 0.5)
	assert.Negative(t, pred.EloGap)
}

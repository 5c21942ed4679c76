package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/models"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidates(weights ...float64) []Candidate {
	out := make([]Candidate, len(weights))
	for i, w := range weights {
		out[i] = Candidate{
			Prize: models.Prize{Base: models.Base{ID: string(rune('a' + i))}},
			Rule:  models.PrizeRule{Probability: w},
		}
	}
	return out
}

func TestDrawWeighted_Convergence(t *testing.T) {
	cands := candidates(0.5, 0.3, 0.2)
	rng := utils.NewLockedRand(42)

	const draws = 100000
	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		counts[drawWeighted(cands, rng).Prize.ID]++
	}
	assert.InDelta(t, 0.5, float64(counts["a"])/draws, 0.01)
	assert.InDelta(t, 0.3, float64(counts["b"])/draws, 0.01)
	assert.InDelta(t, 0.2, float64(counts["c"])/draws, 0.01)
}

func TestDrawWeighted_UnnormalisedWeights(t *testing.T) {
	cands := candidates(2, 6)
	rng := utils.NewLockedRand(7)

	const draws = 50000
	hits := 0
	for i := 0; i < draws; i++ {
		if drawWeighted(cands, rng).Prize.ID == "a" {
			hits++
		}
	}
	assert.InDelta(t, 0.25, float64(hits)/draws, 0.01)
}

func TestDrawWeighted_Edges(t *testing.T) {
	// zero weight prizes are never drawn while another has weight
	cands := candidates(0, 0.4, 0)
	assert.Equal(t, "b", drawWeighted(cands, stubRand{f: 0}).Prize.ID)
	assert.Equal(t, "b", drawWeighted(cands, stubRand{f: 0.999999}).Prize.ID)

	// all zero falls back to a uniform pick
	cands = candidates(0, 0, 0)
	assert.Equal(t, "c", drawWeighted(cands, stubRand{n: 2}).Prize.ID)

	cands = candidates(0.5, 0.5)
	assert.Equal(t, "a", drawWeighted(cands, stubRand{f: 0.5}).Prize.ID)
	assert.Equal(t, "b", drawWeighted(cands, stubRand{f: 0.51}).Prize.ID)
}

func TestSelectPrize_NoRules(t *testing.T) {
	f := newFixture(t)
	svc := NewPrizeService(f.db, stubRand{}, fixedClock(testNow))

	_, err := svc.SelectPrize(context.Background(), nil, f.campaign.ID, f.location.ID)
	assert.ErrorIs(t, err, ErrNoPrizeRules)
}

func TestSelectPrize_InactivePrizes(t *testing.T) {
	f := newFixture(t)
	p := f.addPrize(t, "Bottle", "product", 1, nil, nil)
	require.NoError(t, f.db.Model(&models.Prize{}).Where("id = ?", p.ID).Update("is_active", false).Error)
	svc := NewPrizeService(f.db, stubRand{}, fixedClock(testNow))

	_, err := svc.SelectPrize(context.Background(), nil, f.campaign.ID, f.location.ID)
	assert.ErrorIs(t, err, ErrNoActivePrizes)
	assert.Contains(t, err.Error(), "Found 1 prize(s)")

	require.NoError(t, f.db.Delete(&models.Prize{}, "id = ?", p.ID).Error)
	_, err = svc.SelectPrize(context.Background(), nil, f.campaign.ID, f.location.ID)
	assert.ErrorIs(t, err, ErrNoPrizesConfigured)
}

func TestSelectPrize_ZeroStockIsExhausted(t *testing.T) {
	f := newFixture(t)
	f.addPrize(t, "Generator", "electronics", 1, nil, intPtr(0))
	svc := NewPrizeService(f.db, stubRand{}, fixedClock(testNow))

	_, err := svc.SelectPrize(context.Background(), nil, f.campaign.ID, f.location.ID)
	assert.ErrorIs(t, err, ErrNoPrizesAvailable)
}

func TestSelectPrize_ConsumedStockIsExhausted(t *testing.T) {
	f := newFixture(t)
	p := f.addPrize(t, "Generator", "electronics", 1, nil, intPtr(2))
	f.addWin(t, p.ID, f.location.ID, testNow.AddDate(0, 0, -3))
	f.addWin(t, p.ID, f.location.ID, testNow.AddDate(0, 0, -2))
	svc := NewPrizeService(f.db, stubRand{}, fixedClock(testNow))

	_, err := svc.SelectPrize(context.Background(), nil, f.campaign.ID, f.location.ID)
	assert.ErrorIs(t, err, ErrNoPrizesAvailable)
}

func TestSelectPrize_CappedPrizeGivesWayToLoss(t *testing.T) {
	f := newFixture(t)
	a := f.addPrize(t, "Prize A", "product", 0.5, nil, intPtr(1))
	b := f.addPrize(t, "Prize B", models.PrizeTypeLoss, 0.5, nil, nil)
	svc := NewPrizeService(f.db, utils.NewLockedRand(1), fixedClock(testNow))

	f.addWin(t, a.ID, f.location.ID, testNow.Add(-time.Hour))

	for i := 0; i < 50; i++ {
		picked, err := svc.SelectPrize(context.Background(), nil, f.campaign.ID, f.location.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, picked.Prize.ID)
		assert.True(t, picked.Prize.IsLoss())
	}
}

func TestSelectPrize_DailyCaps(t *testing.T) {
	f := newFixture(t)
	p := f.addPrize(t, "Bottle", "product", 1, intPtr(1), nil)
	svc := NewPrizeService(f.db, stubRand{}, fixedClock(testNow))
	ctx := context.Background()

	// yesterday's win does not count against today
	f.addWin(t, p.ID, f.location.ID, testNow.AddDate(0, 0, -1))
	picked, err := svc.SelectPrize(ctx, nil, f.campaign.ID, f.location.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, picked.Prize.ID)

	// a win today at another outlet exhausts the campaign-wide daily cap
	f.addWin(t, p.ID, "other-outlet", testNow.Add(-time.Hour))
	_, err = svc.SelectPrize(ctx, nil, f.campaign.ID, f.location.ID)
	assert.ErrorIs(t, err, ErrNoPrizesAvailable)
}

func TestAvailablePrizes(t *testing.T) {
	f := newFixture(t)
	a := f.addPrize(t, "Bottle", "product", 0.3, nil, nil)
	f.addPrize(t, "Generator", "electronics", 0.1, nil, intPtr(0))
	loss := f.addPrize(t, "Try Again", models.PrizeTypeNoWin, 0.1, nil, nil)
	svc := NewPrizeService(f.db, stubRand{}, fixedClock(testNow))

	list, err := svc.AvailablePrizes(context.Background(), f.campaign.ID, f.location.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := map[string]AvailablePrize{}
	for _, p := range list {
		byID[p.ID] = p
	}
	assert.Equal(t, 75.0, byID[a.ID].Chance)
	assert.True(t, byID[a.ID].IsWin)
	assert.Equal(t, 25.0, byID[loss.ID].Chance)
	assert.False(t, byID[loss.ID].IsWin)

	_, err = svc.AvailablePrizes(context.Background(), "missing", f.location.ID)
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestAvailablePrizes_EmptyWhenUnconfigured(t *testing.T) {
	f := newFixture(t)
	svc := NewPrizeService(f.db, stubRand{}, fixedClock(testNow))

	list, err := svc.AvailablePrizes(context.Background(), f.campaign.ID, f.location.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGenerateRedemptionCode(t *testing.T) {
	re := regexp.MustCompile(`^PO-[0-9A-F]{8}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := GenerateRedemptionCode("PO-")
		assert.Regexp(t, re, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 95)
}

func TestPrizeIsLoss(t *testing.T) {
	assert.True(t, models.Prize{Type: models.PrizeTypeLoss, Name: "Better luck"}.IsLoss())
	assert.True(t, models.Prize{Type: models.PrizeTypeNoWin, Name: "Nothing"}.IsLoss())
	assert.True(t, models.Prize{Type: "product", Name: "  try AGAIN "}.IsLoss())
	assert.True(t, models.Prize{Type: "lossprize ", Name: "Better luck"}.IsLoss())
	assert.True(t, models.Prize{Type: " No Win", Name: "Nothing"}.IsLoss())
	assert.False(t, models.Prize{Type: "product", Name: "Power Oil 1L"}.IsLoss())
}

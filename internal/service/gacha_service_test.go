package service

import (
	"testing"

	"hamsterhub/internal/domain"
	"hamsterhub/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog(rates ...float64) []*domain.GachaItem {
	items := make([]*domain.GachaItem, len(rates))
	for i, rate := range rates {
		items[i] = &domain.GachaItem{
			ID:       int64(i + 1),
			Name:     "item",
			Rarity:   domain.RarityCommon,
			DropRate: rate,
			IsActive: true,
		}
	}
	return items
}

func TestPickItemEmptyCatalog(t *testing.T) {
	_, err := PickItem(nil, 0.5)
	assert.ErrorIs(t, err, ErrNoActiveItems)
}

func TestPickItemZeroTotalRate(t *testing.T) {
	_, err := PickItem(catalog(0, 0, 0), 0.5)
	assert.ErrorIs(t, err, ErrNoActiveItems)
}

func TestPickItemCumulativeWalk(t *testing.T) {
	// rates 70 / 25 / 5, cumulative cut points at 0.70 and 0.95
	items := catalog(70, 25, 5)

	cases := []struct {
		roll float64
		want int64
	}{
		{0.0, 1},
		{0.5, 1},
		{0.699, 1},
		{0.71, 2},
		{0.94, 2},
		{0.96, 3},
		{0.999, 3},
	}
	for _, tc := range cases {
		item, err := PickItem(items, tc.roll)
		require.NoError(t, err)
		assert.Equal(t, tc.want, item.ID, "roll %v", tc.roll)
	}
}

func TestPickItemSingleItemAlwaysWins(t *testing.T) {
	items := catalog(3.5)
	for _, roll := range []float64{0, 0.25, 0.5, 0.999999} {
		item, err := PickItem(items, roll)
		require.NoError(t, err)
		assert.Equal(t, int64(1), item.ID)
	}
}

func TestPickItemRatesNeedNoNormalization(t *testing.T) {
	// rates sum to 20, the roll is scaled against the actual total
	items := catalog(10, 10)

	item, err := PickItem(items, 0.49)
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.ID)

	item, err = PickItem(items, 0.51)
	require.NoError(t, err)
	assert.Equal(t, int64(2), item.ID)
}

func TestPickItemDistribution(t *testing.T) {
	items := catalog(80, 20)
	counts := make(map[int64]int)

	const draws = 20000
	for i := 0; i < draws; i++ {
		item, err := PickItem(items, game.RandFloat())
		require.NoError(t, err)
		counts[item.ID]++
	}

	// 80/20 split with generous slack, the draw is random
	assert.InDelta(t, 0.80, float64(counts[1])/draws, 0.03)
	assert.InDelta(t, 0.20, float64(counts[2])/draws, 0.03)
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyMergesAtWeightedAverage(t *testing.T) {
	p := NewPortfolio(1)
	now := time.Now()

	require.NoError(t, p.ApplyBuy("AAPL", 10, 100, now))
	require.NoError(t, p.ApplyBuy("AAPL", 10, 200, now))

	h := p.Stocks["AAPL"]
	require.NotNil(t, h)
	assert.InDelta(t, 20.0, h.Shares, 1e-9)
	assert.InDelta(t, 150.0, h.AvgPrice, 1e-9)
	assert.InDelta(t, 3000.0, h.TotalCost, 1e-9)
	assert.InDelta(t, StartingCash-3000.0, p.Cash, 1e-9)
	assert.Equal(t, 2, p.TotalTrades)
	assert.Len(t, h.PurchaseHistory, 2)
}

func TestBuyRejectsBadInput(t *testing.T) {
	p := NewPortfolio(1)
	now := time.Now()

	assert.ErrorIs(t, p.ApplyBuy("AAPL", 0, 100, now), ErrInvalidTrade)
	assert.ErrorIs(t, p.ApplyBuy("AAPL", -5, 100, now), ErrInvalidTrade)
	assert.ErrorIs(t, p.ApplyBuy("AAPL", 5, 0, now), ErrInvalidTrade)
	assert.ErrorIs(t, p.ApplyBuy("AAPL", 1000, 100, now), ErrInsufficientCash)
	assert.Equal(t, 0, p.TotalTrades)
}

func TestSellAllRemovesHolding(t *testing.T) {
	p := NewPortfolio(1)
	now := time.Now()

	// 5 AAPL at avg 100 with nothing left in cash
	require.NoError(t, p.ApplyBuy("AAPL", 5, 100, now))
	p.Cash = 0

	proceeds, win, err := p.ApplySell("AAPL", 5, 120, now)
	require.NoError(t, err)

	assert.InDelta(t, 600.0, proceeds, 1e-9)
	assert.True(t, win)
	assert.InDelta(t, 600.0, p.Cash, 1e-9)
	assert.NotContains(t, p.Stocks, "AAPL")
	assert.Equal(t, 1, p.SuccessfulTrades)
	assert.Equal(t, 2, p.TotalTrades)
}

func TestSellAtLossIsNotAWin(t *testing.T) {
	p := NewPortfolio(1)
	now := time.Now()

	require.NoError(t, p.ApplyBuy("AAPL", 5, 100, now))
	_, win, err := p.ApplySell("AAPL", 5, 80, now)
	require.NoError(t, err)

	assert.False(t, win)
	assert.Equal(t, 0, p.SuccessfulTrades)
}

func TestPartialSellReducesCostBasis(t *testing.T) {
	p := NewPortfolio(1)
	now := time.Now()

	require.NoError(t, p.ApplyBuy("AAPL", 10, 100, now))
	_, _, err := p.ApplySell("AAPL", 4, 110, now)
	require.NoError(t, err)

	h := p.Stocks["AAPL"]
	require.NotNil(t, h)
	assert.InDelta(t, 6.0, h.Shares, 1e-9)
	assert.InDelta(t, 600.0, h.TotalCost, 1e-9)
	assert.InDelta(t, 100.0, h.AvgPrice, 1e-9)
}

func TestSellRejectsBadInput(t *testing.T) {
	p := NewPortfolio(1)
	now := time.Now()
	require.NoError(t, p.ApplyBuy("AAPL", 5, 100, now))

	_, _, err := p.ApplySell("AAPL", 0, 100, now)
	assert.ErrorIs(t, err, ErrInvalidTrade)
	_, _, err = p.ApplySell("AAPL", -1, 100, now)
	assert.ErrorIs(t, err, ErrInvalidTrade)
	_, _, err = p.ApplySell("MSFT", 1, 100, now)
	assert.ErrorIs(t, err, ErrNoHolding)
	_, _, err = p.ApplySell("AAPL", 6, 100, now)
	assert.ErrorIs(t, err, ErrInsufficientShares)
}

func TestValuationFallsBackToAvgPrice(t *testing.T) {
	p := NewPortfolio(1)
	now := time.Now()
	require.NoError(t, p.ApplyBuy("AAPL", 10, 100, now))
	require.NoError(t, p.ApplyBuy("MSFT", 10, 50, now))

	total := p.Valuation(map[string]float64{"AAPL": 120})

	// cash 8500 + AAPL 10*120 + MSFT 10*50 (no quote, avg price)
	assert.InDelta(t, 8500+1200+500, total, 1e-9)
}

func TestValueHistoryCapped(t *testing.T) {
	p := NewPortfolio(1)
	now := time.Now()

	for i := 0; i < ValueHistoryCap+20; i++ {
		p.RecordValue(float64(i), now.Add(time.Duration(i)*time.Minute))
	}

	assert.Len(t, p.ValueHistory, ValueHistoryCap)
	// oldest points dropped off the front
	assert.InDelta(t, 20.0, p.ValueHistory[0].Value, 1e-9)
	assert.InDelta(t, float64(ValueHistoryCap+19), p.TotalValue, 1e-9)
}

package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidTrade       = errors.New("shares and price must be positive")
	ErrInsufficientCash   = errors.New("insufficient cash")
	ErrNoHolding          = errors.New("no holding for symbol")
	ErrInsufficientShares = errors.New("insufficient shares")
)

// ValueHistoryCap bounds the rolling valuation history, oldest points drop off
const ValueHistoryCap = 100

const StartingCash = 10000

type TradeSide string

const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

type TradeLot struct {
	Side   TradeSide `json:"side"`
	Shares float64   `json:"shares"`
	Price  float64   `json:"price"`
	Date   time.Time `json:"date"`
}

type Holding struct {
	Symbol          string     `json:"symbol"`
	Shares          float64    `json:"shares"`
	AvgPrice        float64    `json:"avg_price"`
	TotalCost       float64    `json:"total_cost"`
	PurchaseHistory []TradeLot `json:"purchase_history"`
}

type ValuePoint struct {
	Value float64   `json:"value"`
	Date  time.Time `json:"date"`
}

type Portfolio struct {
	MemberID         int64               `json:"member_id"`
	Cash             float64             `json:"cash"`
	Stocks           map[string]*Holding `json:"stocks"`
	TotalValue       float64             `json:"total_value"`
	ValueHistory     []ValuePoint        `json:"value_history"`
	SuccessfulTrades int                 `json:"successful_trades"`
	TotalTrades      int                 `json:"total_trades"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

func NewPortfolio(memberID int64) *Portfolio {
	return &Portfolio{
		MemberID:   memberID,
		Cash:       StartingCash,
		Stocks:     make(map[string]*Holding),
		TotalValue: StartingCash,
	}
}

// ApplyBuy merges shares into the holding at the weighted average price
func (p *Portfolio) ApplyBuy(symbol string, shares, price float64, now time.Time) error {
	if shares <= 0 || price <= 0 {
		return ErrInvalidTrade
	}
	cost := shares * price
	if p.Cash < cost {
		return ErrInsufficientCash
	}

	p.Cash -= cost

	if p.Stocks == nil {
		p.Stocks = make(map[string]*Holding)
	}
	h, ok := p.Stocks[symbol]
	if !ok {
		h = &Holding{Symbol: symbol}
		p.Stocks[symbol] = h
	}

	h.TotalCost += cost
	h.Shares += shares
	h.AvgPrice = h.TotalCost / h.Shares
	h.PurchaseHistory = append(h.PurchaseHistory, TradeLot{
		Side:   SideBuy,
		Shares: shares,
		Price:  price,
		Date:   now,
	})

	p.TotalTrades++
	p.UpdatedAt = now
	return nil
}

// ApplySell credits cash at the given price and reduces the cost basis by
// shares*avgPrice. That is not proportional-lot accounting and can drift the
// meaning of avgPrice after partial sells; the behavior is kept as the
// simulation has always had it. The holding is removed once shares hit zero.
// Returns the proceeds and whether the trade counted as a win.
func (p *Portfolio) ApplySell(symbol string, shares, price float64, now time.Time) (float64, bool, error) {
	if shares <= 0 || price <= 0 {
		return 0, false, ErrInvalidTrade
	}
	h, ok := p.Stocks[symbol]
	if !ok {
		return 0, false, ErrNoHolding
	}
	if h.Shares < shares {
		return 0, false, ErrInsufficientShares
	}

	proceeds := shares * price
	costBasis := shares * h.AvgPrice

	p.Cash += proceeds
	h.Shares -= shares
	h.TotalCost -= costBasis
	h.PurchaseHistory = append(h.PurchaseHistory, TradeLot{
		Side:   SideSell,
		Shares: shares,
		Price:  price,
		Date:   now,
	})

	if h.Shares == 0 {
		delete(p.Stocks, symbol)
	}

	win := proceeds-costBasis > 0
	if win {
		p.SuccessfulTrades++
	}
	p.TotalTrades++
	p.UpdatedAt = now
	return proceeds, win, nil
}

// Valuation prices every holding with the supplied quotes, falling back to
// the holding's average price when a symbol has no quote
func (p *Portfolio) Valuation(prices map[string]float64) float64 {
	total := p.Cash
	for sym, h := range p.Stocks {
		price, ok := prices[sym]
		if !ok {
			price = h.AvgPrice
		}
		total += h.Shares * price
	}
	return total
}

// RecordValue appends a valuation point, keeping at most ValueHistoryCap
func (p *Portfolio) RecordValue(value float64, now time.Time) {
	p.TotalValue = value
	p.ValueHistory = append(p.ValueHistory, ValuePoint{Value: value, Date: now})
	if len(p.ValueHistory) > ValueHistoryCap {
		p.ValueHistory = p.ValueHistory[len(p.ValueHistory)-ValueHistoryCap:]
	}
	p.UpdatedAt = now
}

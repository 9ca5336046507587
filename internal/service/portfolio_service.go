package service

import (
	"context"
	"time"

	"hamsterhub/internal/domain"
	"hamsterhub/internal/metrics"
	"hamsterhub/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PortfolioService wraps the domain portfolio math in row-locked
// transactions, so concurrent trades against the same member serialize
// instead of racing the read-modify-write.
type PortfolioService struct {
	db            *pgxpool.Pool
	portfolioRepo *repository.PortfolioRepository
}

func NewPortfolioService(db *pgxpool.Pool) *PortfolioService {
	return &PortfolioService{
		db:            db,
		portfolioRepo: repository.NewPortfolioRepository(db),
	}
}

// Get returns the member's portfolio, creating one with starting cash on
// first access
func (s *PortfolioService) Get(ctx context.Context, memberID int64) (*domain.Portfolio, error) {
	p, err := s.portfolioRepo.GetByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p = domain.NewPortfolio(memberID)
	if err := s.portfolioRepo.CreateWithTx(ctx, tx, p); err != nil {
		return nil, err
	}
	return p, tx.Commit(ctx)
}

type TradeResult struct {
	Portfolio *domain.Portfolio `json:"portfolio"`
	Proceeds  float64           `json:"proceeds,omitempty"`
	Win       bool              `json:"win,omitempty"`
}

// Buy locks the portfolio row, applies the purchase and writes it back
func (s *PortfolioService) Buy(ctx context.Context, memberID int64, symbol string, shares, price float64) (*TradeResult, error) {
	var result TradeResult
	err := s.withPortfolio(ctx, memberID, func(p *domain.Portfolio) error {
		if err := p.ApplyBuy(symbol, shares, price, time.Now()); err != nil {
			return err
		}
		result.Portfolio = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.Trades.WithLabelValues("buy").Inc()
	return &result, nil
}

// Sell locks the portfolio row, applies the sale and writes it back
func (s *PortfolioService) Sell(ctx context.Context, memberID int64, symbol string, shares, price float64) (*TradeResult, error) {
	var result TradeResult
	err := s.withPortfolio(ctx, memberID, func(p *domain.Portfolio) error {
		proceeds, win, err := p.ApplySell(symbol, shares, price, time.Now())
		if err != nil {
			return err
		}
		result.Portfolio = p
		result.Proceeds = proceeds
		result.Win = win
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.Trades.WithLabelValues("sell").Inc()
	return &result, nil
}

// RecordValue revalues the portfolio with the supplied quotes and appends a
// point to the rolling history
func (s *PortfolioService) RecordValue(ctx context.Context, memberID int64, prices map[string]float64) (float64, error) {
	var total float64
	err := s.withPortfolio(ctx, memberID, func(p *domain.Portfolio) error {
		total = p.Valuation(prices)
		p.RecordValue(total, time.Now())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// withPortfolio runs fn against the row-locked portfolio and persists the
// mutation, creating the portfolio first when the member has none
func (s *PortfolioService) withPortfolio(ctx context.Context, memberID int64, fn func(p *domain.Portfolio) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p, err := s.portfolioRepo.GetForUpdate(ctx, tx, memberID)
	if err != nil {
		return err
	}
	if p == nil {
		p = domain.NewPortfolio(memberID)
		if err := s.portfolioRepo.CreateWithTx(ctx, tx, p); err != nil {
			return err
		}
	}

	if err := fn(p); err != nil {
		return err
	}

	if err := s.portfolioRepo.SaveWithTx(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

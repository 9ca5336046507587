package repository

import (
	"context"
	"encoding/json"

	"hamsterhub/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Portfolios keep their holdings map and value history as jsonb, one row per
// member. Mutations go through GetForUpdate/SaveWithTx so the row stays locked
// for the whole read-modify-write.
type PortfolioRepository struct {
	db *pgxpool.Pool
}

func NewPortfolioRepository(db *pgxpool.Pool) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

func (r *PortfolioRepository) GetByMemberID(ctx context.Context, memberID int64) (*domain.Portfolio, error) {
	row := r.db.QueryRow(ctx, `
		SELECT member_id, cash, stocks, total_value, value_history, successful_trades, total_trades, updated_at
		FROM portfolios
		WHERE member_id = $1
	`, memberID)
	return scanPortfolio(row)
}

// GetForUpdate locks the portfolio row inside tx, nil when absent
func (r *PortfolioRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, memberID int64) (*domain.Portfolio, error) {
	row := tx.QueryRow(ctx, `
		SELECT member_id, cash, stocks, total_value, value_history, successful_trades, total_trades, updated_at
		FROM portfolios
		WHERE member_id = $1
		FOR UPDATE
	`, memberID)
	return scanPortfolio(row)
}

// CreateWithTx inserts a fresh portfolio row
func (r *PortfolioRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, p *domain.Portfolio) error {
	stocksJSON, historyJSON, err := marshalPortfolio(p)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO portfolios (member_id, cash, stocks, total_value, value_history, successful_trades, total_trades, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
	`, p.MemberID, p.Cash, stocksJSON, p.TotalValue, historyJSON, p.SuccessfulTrades, p.TotalTrades)
	return err
}

// SaveWithTx writes back a mutated portfolio under the row lock
func (r *PortfolioRepository) SaveWithTx(ctx context.Context, tx pgx.Tx, p *domain.Portfolio) error {
	stocksJSON, historyJSON, err := marshalPortfolio(p)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE portfolios
		SET cash = $2, stocks = $3, total_value = $4, value_history = $5,
		    successful_trades = $6, total_trades = $7, updated_at = now()
		WHERE member_id = $1
	`, p.MemberID, p.Cash, stocksJSON, p.TotalValue, historyJSON, p.SuccessfulTrades, p.TotalTrades)
	return err
}

func marshalPortfolio(p *domain.Portfolio) (stocksJSON, historyJSON []byte, err error) {
	stocksJSON, err = json.Marshal(p.Stocks)
	if err != nil {
		return nil, nil, err
	}
	historyJSON, err = json.Marshal(p.ValueHistory)
	if err != nil {
		return nil, nil, err
	}
	return stocksJSON, historyJSON, nil
}

func scanPortfolio(row pgx.Row) (*domain.Portfolio, error) {
	var p domain.Portfolio
	var stocksJSON, historyJSON []byte

	err := row.Scan(&p.MemberID, &p.Cash, &stocksJSON, &p.TotalValue, &historyJSON,
		&p.SuccessfulTrades, &p.TotalTrades, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	p.Stocks = make(map[string]*domain.Holding)
	if len(stocksJSON) > 0 {
		if err := json.Unmarshal(stocksJSON, &p.Stocks); err != nil {
			return nil, err
		}
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &p.ValueHistory); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

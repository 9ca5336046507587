package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hamsterhub/internal/domain"
	"hamsterhub/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrInsufficientFunds   = errors.New("insufficient hamster coins")
	ErrInsufficientTickets = errors.New("insufficient gacha tickets")
	ErrMemberNotFound      = errors.New("member not found")
	ErrInvalidAmount       = errors.New("invalid amount")
)

// RewardCooldownError is returned when the recurring reward is claimed again
// before the cooldown has elapsed
type RewardCooldownError struct {
	NextAt time.Time
}

func (e *RewardCooldownError) Error() string {
	return fmt.Sprintf("reward on cooldown until %s", e.NextAt.Format(time.RFC3339))
}

// CurrencyService owns every hamster-coin and ticket mutation. Each mutation
// locks the member row, checks the balance, and writes a ledger entry in the
// same transaction, so a balance can never go negative and never drifts from
// its history.
type CurrencyService struct {
	db              *pgxpool.Pool
	transactionRepo *repository.TransactionRepository
}

func NewCurrencyService(db *pgxpool.Pool) *CurrencyService {
	return &CurrencyService{
		db:              db,
		transactionRepo: repository.NewTransactionRepository(db),
	}
}

// GetBalance returns the member's current coin balance
func (s *CurrencyService) GetBalance(ctx context.Context, memberID int64) (int64, error) {
	var balance int64
	err := s.db.QueryRow(ctx, `SELECT hamster_coins FROM members WHERE id = $1`, memberID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrMemberNotFound
		}
		return 0, err
	}
	return balance, nil
}

// Credit adds coins, bumps total_earned and records a ledger entry
func (s *CurrencyService) Credit(ctx context.Context, memberID int64, amount int64, txType string, meta map[string]interface{}) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	newBalance, err = s.CreditWithTx(ctx, tx, memberID, amount)
	if err != nil {
		return 0, err
	}

	entry := &domain.Transaction{
		MemberID: memberID,
		Type:     txType,
		Amount:   amount,
		Meta:     meta,
	}
	if err = s.transactionRepo.CreateWithTx(ctx, tx, entry); err != nil {
		return 0, err
	}

	return newBalance, tx.Commit(ctx)
}

// Debit removes coins, bumps total_spent and records a ledger entry
func (s *CurrencyService) Debit(ctx context.Context, memberID int64, amount int64, txType string, meta map[string]interface{}) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	newBalance, err = s.DebitWithTx(ctx, tx, memberID, amount)
	if err != nil {
		return 0, err
	}

	entry := &domain.Transaction{
		MemberID: memberID,
		Type:     txType,
		Amount:   -amount,
		Meta:     meta,
	}
	if err = s.transactionRepo.CreateWithTx(ctx, tx, entry); err != nil {
		return 0, err
	}

	return newBalance, tx.Commit(ctx)
}

// DebitWithTx removes coins inside an existing transaction. The guarded
// UPDATE keeps hamster_coins >= 0 without a separate read.
func (s *CurrencyService) DebitWithTx(ctx context.Context, tx pgx.Tx, memberID int64, amount int64) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	err = tx.QueryRow(ctx, `
		UPDATE members
		SET hamster_coins = hamster_coins - $1, total_spent = total_spent + $1
		WHERE id = $2 AND hamster_coins >= $1
		RETURNING hamster_coins
	`, amount, memberID).Scan(&newBalance)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			_ = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM members WHERE id = $1)`, memberID).Scan(&exists)
			if !exists {
				return 0, ErrMemberNotFound
			}
			return 0, ErrInsufficientFunds
		}
		return 0, err
	}

	return newBalance, nil
}

// CreditWithTx adds coins inside an existing transaction
func (s *CurrencyService) CreditWithTx(ctx context.Context, tx pgx.Tx, memberID int64, amount int64) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	err = tx.QueryRow(ctx, `
		UPDATE members
		SET hamster_coins = hamster_coins + $1, total_earned = total_earned + $1
		WHERE id = $2
		RETURNING hamster_coins
	`, amount, memberID).Scan(&newBalance)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrMemberNotFound
		}
		return 0, err
	}

	return newBalance, nil
}

// DebitTicketsWithTx spends gacha tickets inside an existing transaction
func (s *CurrencyService) DebitTicketsWithTx(ctx context.Context, tx pgx.Tx, memberID int64, count int64) (remaining int64, err error) {
	if count <= 0 {
		return 0, ErrInvalidAmount
	}

	err = tx.QueryRow(ctx, `
		UPDATE members
		SET gacha_tickets = gacha_tickets - $1
		WHERE id = $2 AND gacha_tickets >= $1
		RETURNING gacha_tickets
	`, count, memberID).Scan(&remaining)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			_ = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM members WHERE id = $1)`, memberID).Scan(&exists)
			if !exists {
				return 0, ErrMemberNotFound
			}
			return 0, ErrInsufficientTickets
		}
		return 0, err
	}

	return remaining, nil
}

// CreditTicketsWithTx grants gacha tickets inside an existing transaction
func (s *CurrencyService) CreditTicketsWithTx(ctx context.Context, tx pgx.Tx, memberID int64, count int64) (remaining int64, err error) {
	if count <= 0 {
		return 0, ErrInvalidAmount
	}

	err = tx.QueryRow(ctx, `
		UPDATE members
		SET gacha_tickets = gacha_tickets + $1
		WHERE id = $2
		RETURNING gacha_tickets
	`, count, memberID).Scan(&remaining)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrMemberNotFound
		}
		return 0, err
	}

	return remaining, nil
}

// BuyTickets exchanges coins for gacha tickets at the fixed shop price
func (s *CurrencyService) BuyTickets(ctx context.Context, memberID int64, count int64) (coins, tickets int64, err error) {
	if count <= 0 {
		return 0, 0, ErrInvalidAmount
	}
	cost := count * domain.TicketPriceCoins

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	coins, err = s.DebitWithTx(ctx, tx, memberID, cost)
	if err != nil {
		return 0, 0, err
	}
	tickets, err = s.CreditTicketsWithTx(ctx, tx, memberID, count)
	if err != nil {
		return 0, 0, err
	}

	entry := &domain.Transaction{
		MemberID: memberID,
		Type:     domain.TxTypeTicketBuy,
		Amount:   -cost,
		Meta:     map[string]interface{}{"tickets": count},
	}
	if err = s.transactionRepo.CreateWithTx(ctx, tx, entry); err != nil {
		return 0, 0, err
	}

	return coins, tickets, tx.Commit(ctx)
}

// ClaimReward grants the recurring reward unless the member claimed within
// the cooldown window
func (s *CurrencyService) ClaimReward(ctx context.Context, memberID int64, amount int64, cooldown time.Duration) (newBalance int64, err error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var lastRewardAt *time.Time
	err = tx.QueryRow(ctx, `SELECT last_reward_at FROM members WHERE id = $1 FOR UPDATE`, memberID).Scan(&lastRewardAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrMemberNotFound
		}
		return 0, err
	}

	now := time.Now()
	if lastRewardAt != nil && now.Sub(*lastRewardAt) < cooldown {
		return 0, &RewardCooldownError{NextAt: lastRewardAt.Add(cooldown)}
	}

	err = tx.QueryRow(ctx, `
		UPDATE members
		SET hamster_coins = hamster_coins + $1, total_earned = total_earned + $1, last_reward_at = $2
		WHERE id = $3
		RETURNING hamster_coins
	`, amount, now, memberID).Scan(&newBalance)
	if err != nil {
		return 0, err
	}

	entry := &domain.Transaction{
		MemberID: memberID,
		Type:     domain.TxTypeReward,
		Amount:   amount,
	}
	if err = s.transactionRepo.CreateWithTx(ctx, tx, entry); err != nil {
		return 0, err
	}

	return newBalance, tx.Commit(ctx)
}

// GetTransactionHistory returns a member's ledger entries
func (s *CurrencyService) GetTransactionHistory(ctx context.Context, memberID int64, limit int) ([]*domain.Transaction, error) {
	return s.transactionRepo.GetByMemberID(ctx, memberID, limit)
}

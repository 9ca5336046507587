package repository

import (
	"context"
	"encoding/json"

	"hamsterhub/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create writes a ledger entry
func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	metaJSON, err := json.Marshal(t.Meta)
	if err != nil {
		metaJSON = []byte("{}")
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO transactions (member_id, type, amount, meta)
		VALUES ($1, $2, $3, $4)
	`, t.MemberID, t.Type, t.Amount, metaJSON)
	return err
}

// CreateWithTx writes a ledger entry inside an existing transaction
func (r *TransactionRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	metaJSON, err := json.Marshal(t.Meta)
	if err != nil {
		metaJSON = []byte("{}")
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (member_id, type, amount, meta)
		VALUES ($1, $2, $3, $4)
	`, t.MemberID, t.Type, t.Amount, metaJSON)
	return err
}

// GetByMemberID returns the most recent ledger entries for a member
func (r *TransactionRepository) GetByMemberID(ctx context.Context, memberID int64, limit int) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, member_id, type, amount, meta, created_at
		FROM transactions
		WHERE member_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, memberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var metaJSON []byte
		if err := rows.Scan(&t.ID, &t.MemberID, &t.Type, &t.Amount, &metaJSON, &t.CreatedAt); err != nil {
			return nil, err
		}
		if len(metaJSON) > 0 {
			_ = json.Unmarshal(metaJSON, &t.Meta)
		}
		result = append(result, &t)
	}
	return result, rows.Err()
}

package repository

import (
	"context"

	"hamsterhub/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GachaRepository struct {
	db *pgxpool.Pool
}

func NewGachaRepository(db *pgxpool.Pool) *GachaRepository {
	return &GachaRepository{db: db}
}

const gachaItemColumns = `id, name, rarity, drop_rate, is_active, created_at`

// GetActiveItems returns the catalog entries eligible for draws
func (r *GachaRepository) GetActiveItems(ctx context.Context) ([]*domain.GachaItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+gachaItemColumns+` FROM gacha_items WHERE is_active = true ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGachaItems(rows)
}

func (r *GachaRepository) GetAllItems(ctx context.Context) ([]*domain.GachaItem, error) {
	rows, err := r.db.Query(ctx, `SELECT `+gachaItemColumns+` FROM gacha_items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGachaItems(rows)
}

func (r *GachaRepository) GetItemByID(ctx context.Context, id int64) (*domain.GachaItem, error) {
	var it domain.GachaItem
	err := r.db.QueryRow(ctx,
		`SELECT `+gachaItemColumns+` FROM gacha_items WHERE id = $1`, id,
	).Scan(&it.ID, &it.Name, &it.Rarity, &it.DropRate, &it.IsActive, &it.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

func (r *GachaRepository) CreateItem(ctx context.Context, it *domain.GachaItem) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO gacha_items (name, rarity, drop_rate, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, it.Name, it.Rarity, it.DropRate, it.IsActive).Scan(&it.ID, &it.CreatedAt)
}

func (r *GachaRepository) UpdateItem(ctx context.Context, it *domain.GachaItem) error {
	_, err := r.db.Exec(ctx, `
		UPDATE gacha_items
		SET name = $2, rarity = $3, drop_rate = $4, is_active = $5
		WHERE id = $1
	`, it.ID, it.Name, it.Rarity, it.DropRate, it.IsActive)
	return err
}

// CreatePullWithTx appends a pull record inside the pull transaction
func (r *GachaRepository) CreatePullWithTx(ctx context.Context, tx pgx.Tx, p *domain.GachaPull) error {
	return tx.QueryRow(ctx, `
		INSERT INTO gacha_pulls (member_id, item_id, item_name, item_rarity, cost_coins, cost_tickets)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, pull_date
	`, p.MemberID, p.ItemID, p.ItemName, p.ItemRarity, p.CostCoins, p.CostTickets).Scan(&p.ID, &p.PullDate)
}

// GetPullsByMemberID returns a member's most recent pulls
func (r *GachaRepository) GetPullsByMemberID(ctx context.Context, memberID int64, limit int) ([]*domain.GachaPull, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, member_id, item_id, item_name, item_rarity, cost_coins, cost_tickets, pull_date
		FROM gacha_pulls
		WHERE member_id = $1
		ORDER BY pull_date DESC
		LIMIT $2
	`, memberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.GachaPull
	for rows.Next() {
		var p domain.GachaPull
		if err := rows.Scan(&p.ID, &p.MemberID, &p.ItemID, &p.ItemName, &p.ItemRarity,
			&p.CostCoins, &p.CostTickets, &p.PullDate); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	return result, rows.Err()
}

func scanGachaItems(rows pgx.Rows) ([]*domain.GachaItem, error) {
	var result []*domain.GachaItem
	for rows.Next() {
		var it domain.GachaItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Rarity, &it.DropRate, &it.IsActive, &it.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &it)
	}
	return result, rows.Err()
}

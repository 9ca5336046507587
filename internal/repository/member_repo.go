package repository

import (
	"context"

	"hamsterhub/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MemberRepository struct {
	db *pgxpool.Pool
}

func NewMemberRepository(db *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{db: db}
}

const memberColumns = `id, discord_id, username, created_at, hamster_coins, total_earned, total_spent, gacha_tickets, last_reward_at`

func scanMember(row pgx.Row) (*domain.Member, error) {
	var m domain.Member
	err := row.Scan(&m.ID, &m.DiscordID, &m.Username, &m.CreatedAt,
		&m.HamsterCoins, &m.TotalEarned, &m.TotalSpent, &m.GachaTickets, &m.LastRewardAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// GetByID fetches a member, nil when not found
func (r *MemberRepository) GetByID(ctx context.Context, id int64) (*domain.Member, error) {
	row := r.db.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
	return scanMember(row)
}

func (r *MemberRepository) GetByDiscordID(ctx context.Context, discordID string) (*domain.Member, error) {
	row := r.db.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE discord_id = $1`, discordID)
	return scanMember(row)
}

// Create inserts a member, reusing the existing row on discord_id conflict
func (r *MemberRepository) Create(ctx context.Context, m *domain.Member) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO members (discord_id, username)
		VALUES ($1, $2)
		ON CONFLICT (discord_id) DO UPDATE SET username = EXCLUDED.username
		RETURNING id, created_at
	`, m.DiscordID, m.Username).Scan(&m.ID, &m.CreatedAt)
}

// Leaderboard returns the top members ordered by coin balance
func (r *MemberRepository) Leaderboard(ctx context.Context, limit int) ([]*domain.LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, username, hamster_coins
		FROM members
		ORDER BY hamster_coins DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.LeaderboardEntry
	rank := 0
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.MemberID, &e.Username, &e.HamsterCoins); err != nil {
			return nil, err
		}
		rank++
		e.Rank = rank
		result = append(result, &e)
	}
	return result, rows.Err()
}

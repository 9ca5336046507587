package domain

import "time"

type Member struct {
	ID           int64      `db:"id" json:"id"`
	DiscordID    string     `db:"discord_id" json:"discord_id"`
	Username     string     `db:"username" json:"username"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	HamsterCoins int64      `db:"hamster_coins" json:"hamster_coins"`
	TotalEarned  int64      `db:"total_earned" json:"total_earned"`
	TotalSpent   int64      `db:"total_spent" json:"total_spent"`
	GachaTickets int64      `db:"gacha_tickets" json:"gacha_tickets"`
	LastRewardAt *time.Time `db:"last_reward_at" json:"last_reward_at,omitempty"`
}

// Entry on the coin leaderboard
type LeaderboardEntry struct {
	MemberID     int64  `json:"member_id"`
	Username     string `json:"username"`
	HamsterCoins int64  `json:"hamster_coins"`
	Rank         int    `json:"rank"`
}

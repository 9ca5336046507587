package domain

import "time"

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Payment methods accepted by the pull endpoint
type PullMethod string

const (
	PullWithCoins   PullMethod = "coins"
	PullWithTickets PullMethod = "tickets"
)

const (
	PullCostCoins   int64 = 10
	PullCostTickets int64 = 1
	// shop price for one gacha ticket
	TicketPriceCoins int64 = 10
)

type GachaItem struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Rarity    Rarity    `db:"rarity" json:"rarity"`
	DropRate  float64   `db:"drop_rate" json:"drop_rate"` // 0-100, relative weight
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Append-only pull audit record
type GachaPull struct {
	ID          int64     `db:"id" json:"id"`
	MemberID    int64     `db:"member_id" json:"member_id"`
	ItemID      int64     `db:"item_id" json:"item_id"`
	ItemName    string    `db:"item_name" json:"item_name"`
	ItemRarity  Rarity    `db:"item_rarity" json:"item_rarity"`
	CostCoins   int64     `db:"cost_coins" json:"cost_coins"`
	CostTickets int64     `db:"cost_tickets" json:"cost_tickets"`
	PullDate    time.Time `db:"pull_date" json:"pull_date"`
}

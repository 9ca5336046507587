package domain

import "time"

// Ledger entry, one per coin or ticket mutation
type Transaction struct {
	ID        int64                  `db:"id" json:"id"`
	MemberID  int64                  `db:"member_id" json:"member_id"`
	Type      string                 `db:"type" json:"type"`
	Amount    int64                  `db:"amount" json:"amount"`
	Meta      map[string]interface{} `db:"meta" json:"meta,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Transaction types written by the services
const (
	TxTypeGachaPull    = "gacha_pull"
	TxTypeTicketBuy    = "ticket_buy"
	TxTypeTaskEscrow   = "task_escrow"
	TxTypeTaskRefund   = "task_refund"
	TxTypeTaskReward   = "task_reward"
	TxTypeTaskOverflow = "task_overflow"
	TxTypeReward       = "recurring_reward"
	TxTypeAdminAdjust  = "admin_adjust"
)

package service

import (
	"context"
	"errors"

	"hamsterhub/internal/domain"
	"hamsterhub/internal/game"
	"hamsterhub/internal/metrics"
	"hamsterhub/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNoActiveItems = errors.New("no active gacha items")
	ErrInvalidPull   = errors.New("invalid pull method")
	ErrItemNotFound  = errors.New("gacha item not found")
	ErrInvalidItem   = errors.New("invalid gacha item")
)

// GachaService runs weighted draws against the active catalog. The balance
// debit and the pull record commit in one transaction, so a member can never
// pay without receiving an item.
type GachaService struct {
	db              *pgxpool.Pool
	gachaRepo       *repository.GachaRepository
	currency        *CurrencyService
	transactionRepo *repository.TransactionRepository
	roll            func() float64
}

func NewGachaService(db *pgxpool.Pool, currency *CurrencyService) *GachaService {
	return &GachaService{
		db:              db,
		gachaRepo:       repository.NewGachaRepository(db),
		currency:        currency,
		transactionRepo: repository.NewTransactionRepository(db),
		roll:            game.RandFloat,
	}
}

// PickItem selects one item from the catalog by cumulative drop rate.
// roll must be in [0, 1). When floating point accumulation never reaches the
// drawn point, the draw landed at the top of the range and the last item is
// returned.
func PickItem(items []*domain.GachaItem, roll float64) (*domain.GachaItem, error) {
	if len(items) == 0 {
		return nil, ErrNoActiveItems
	}

	total := 0.0
	for _, it := range items {
		total += it.DropRate
	}
	if total <= 0 {
		return nil, ErrNoActiveItems
	}

	r := roll * total
	running := 0.0
	for _, it := range items {
		running += it.DropRate
		if running >= r {
			return it, nil
		}
	}
	return items[len(items)-1], nil
}

type PullResult struct {
	Pull       *domain.GachaPull `json:"pull"`
	Item       *domain.GachaItem `json:"item"`
	NewCoins   int64             `json:"hamster_coins"`
	NewTickets int64             `json:"gacha_tickets"`
}

// Pull charges the member (10 coins or 1 ticket), draws an item and appends
// the pull record, all in one transaction
func (s *GachaService) Pull(ctx context.Context, memberID int64, method domain.PullMethod) (*PullResult, error) {
	if method != domain.PullWithCoins && method != domain.PullWithTickets {
		return nil, ErrInvalidPull
	}

	items, err := s.gachaRepo.GetActiveItems(ctx)
	if err != nil {
		return nil, err
	}

	item, err := PickItem(items, s.roll())
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result := &PullResult{Item: item}
	pull := &domain.GachaPull{
		MemberID:   memberID,
		ItemID:     item.ID,
		ItemName:   item.Name,
		ItemRarity: item.Rarity,
	}

	if method == domain.PullWithCoins {
		pull.CostCoins = domain.PullCostCoins
		result.NewCoins, err = s.currency.DebitWithTx(ctx, tx, memberID, domain.PullCostCoins)
		if err != nil {
			return nil, err
		}
		entry := &domain.Transaction{
			MemberID: memberID,
			Type:     domain.TxTypeGachaPull,
			Amount:   -domain.PullCostCoins,
			Meta:     map[string]interface{}{"item_id": item.ID, "rarity": item.Rarity},
		}
		if err = s.transactionRepo.CreateWithTx(ctx, tx, entry); err != nil {
			return nil, err
		}
	} else {
		pull.CostTickets = domain.PullCostTickets
		result.NewTickets, err = s.currency.DebitTicketsWithTx(ctx, tx, memberID, domain.PullCostTickets)
		if err != nil {
			return nil, err
		}
		// amount is the coin delta, zero here; the ticket spend lives in meta
		entry := &domain.Transaction{
			MemberID: memberID,
			Type:     domain.TxTypeGachaPull,
			Amount:   0,
			Meta:     map[string]interface{}{"item_id": item.ID, "rarity": item.Rarity, "cost_tickets": domain.PullCostTickets},
		}
		if err = s.transactionRepo.CreateWithTx(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err = s.gachaRepo.CreatePullWithTx(ctx, tx, pull); err != nil {
		return nil, err
	}
	result.Pull = pull

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.GachaPulls.WithLabelValues(string(method), string(item.Rarity)).Inc()
	return result, nil
}

// ActiveItems lists the catalog entries currently in the draw pool
func (s *GachaService) ActiveItems(ctx context.Context) ([]*domain.GachaItem, error) {
	return s.gachaRepo.GetActiveItems(ctx)
}

// AllItems lists the whole catalog, inactive entries included (admin)
func (s *GachaService) AllItems(ctx context.Context) ([]*domain.GachaItem, error) {
	return s.gachaRepo.GetAllItems(ctx)
}

// RecentPulls returns a member's pull history, newest first
func (s *GachaService) RecentPulls(ctx context.Context, memberID int64, limit int) ([]*domain.GachaPull, error) {
	return s.gachaRepo.GetPullsByMemberID(ctx, memberID, limit)
}

// CreateItem adds a catalog entry (admin)
func (s *GachaService) CreateItem(ctx context.Context, item *domain.GachaItem) error {
	if item.Name == "" || item.DropRate < 0 || item.DropRate > 100 {
		return ErrInvalidItem
	}
	switch item.Rarity {
	case domain.RarityCommon, domain.RarityRare, domain.RarityEpic, domain.RarityLegendary:
	default:
		return ErrInvalidItem
	}
	return s.gachaRepo.CreateItem(ctx, item)
}

// UpdateItem edits or deactivates a catalog entry (admin)
func (s *GachaService) UpdateItem(ctx context.Context, item *domain.GachaItem) error {
	existing, err := s.gachaRepo.GetItemByID(ctx, item.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrItemNotFound
	}
	if item.DropRate < 0 || item.DropRate > 100 {
		return ErrInvalidItem
	}
	return s.gachaRepo.UpdateItem(ctx, item)
}

package service

import (
	"context"
	"errors"

	"hamsterhub/internal/domain"
	"hamsterhub/internal/logger"
	"hamsterhub/internal/metrics"
	"hamsterhub/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrNotTaskPoster     = errors.New("task does not belong to you")
	ErrTaskNotInProgress = errors.New("task is not in progress")
	ErrTaskNotOpen       = errors.New("task is not open for acceptance")
	ErrTaskTerminal      = errors.New("task is already completed or cancelled")
	ErrOwnTask           = errors.New("cannot accept your own task")
	ErrAlreadyAccepted   = errors.New("task already accepted")
	ErrNotAccepted       = errors.New("task was not accepted by this member")
	ErrWinnerNotEligible = errors.New("winner did not accept and complete the task")
	ErrInvalidReward     = errors.New("winner reward must be positive")
	ErrNoWinners         = errors.New("at least one winner required")
)

// HamsterboardService runs the task/reward marketplace. The reward pool is
// escrowed from the poster when the task is created and redistributed to the
// winners when it completes; if the poster hands out more than the pool, the
// excess comes off their own balance. Every payout step of a completion
// commits in a single transaction.
type HamsterboardService struct {
	db              *pgxpool.Pool
	taskRepo        *repository.TaskRepository
	currency        *CurrencyService
	transactionRepo *repository.TransactionRepository

	// optional, called after a completed payout commits
	notifyWinner func(memberID int64, taskName string, reward int64)
}

func NewHamsterboardService(db *pgxpool.Pool, currency *CurrencyService) *HamsterboardService {
	return &HamsterboardService{
		db:              db,
		taskRepo:        repository.NewTaskRepository(db),
		currency:        currency,
		transactionRepo: repository.NewTransactionRepository(db),
	}
}

// SetWinnerNotifyCallback wires the Discord DM notifier
func (s *HamsterboardService) SetWinnerNotifyCallback(cb func(memberID int64, taskName string, reward int64)) {
	s.notifyWinner = cb
}

// isUniqueViolation reports whether err is a Postgres unique-constraint error
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// PostTask creates a task and escrows the reward from the poster's coins
func (s *HamsterboardService) PostTask(ctx context.Context, posterID int64, name, description string, reward int64) (*domain.Task, error) {
	if reward <= 0 {
		return nil, ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := s.currency.DebitWithTx(ctx, tx, posterID, reward); err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:          uuid.NewString(),
		TaskName:    name,
		Description: description,
		Reward:      reward,
		PostedBy:    posterID,
		Status:      domain.TaskStatusOpen,
	}
	if err := s.taskRepo.CreateWithTx(ctx, tx, task); err != nil {
		return nil, err
	}

	entry := &domain.Transaction{
		MemberID: posterID,
		Type:     domain.TxTypeTaskEscrow,
		Amount:   -reward,
		Meta:     map[string]interface{}{"task_id": task.ID},
	}
	if err := s.transactionRepo.CreateWithTx(ctx, tx, entry); err != nil {
		return nil, err
	}

	return task, tx.Commit(ctx)
}

// AcceptTask registers a member on a task, moving it open -> in_progress on
// the first acceptance
func (s *HamsterboardService) AcceptTask(ctx context.Context, taskID string, memberID int64) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	task, err := s.taskRepo.GetForUpdate(ctx, tx, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrTaskNotFound
	}
	if task.PostedBy == memberID {
		return ErrOwnTask
	}
	if task.Status != domain.TaskStatusOpen && task.Status != domain.TaskStatusInProgress {
		return ErrTaskNotOpen
	}

	existing, err := s.taskRepo.GetAcceptanceWithTx(ctx, tx, taskID, memberID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrAlreadyAccepted
	}

	acceptance := &domain.TaskAcceptance{TaskID: taskID, MemberID: memberID}
	if err := s.taskRepo.CreateAcceptanceWithTx(ctx, tx, acceptance); err != nil {
		// the (task_id, member_id) key catches accepts that raced past the read
		if isUniqueViolation(err) {
			return ErrAlreadyAccepted
		}
		return err
	}

	if task.Status == domain.TaskStatusOpen {
		if err := s.taskRepo.UpdateStatusWithTx(ctx, tx, taskID, domain.TaskStatusInProgress); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// CompleteTask stamps the caller's acceptance as completed
func (s *HamsterboardService) CompleteTask(ctx context.Context, taskID string, memberID int64) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrTaskNotFound
	}
	if task.Status != domain.TaskStatusInProgress {
		return ErrTaskNotInProgress
	}

	ok, err := s.taskRepo.MarkCompleted(ctx, taskID, memberID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAccepted
	}
	return nil
}

// CancelTask refunds the escrow to the poster and closes the task
func (s *HamsterboardService) CancelTask(ctx context.Context, taskID string, posterID int64) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	task, err := s.taskRepo.GetForUpdate(ctx, tx, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrTaskNotFound
	}
	if task.PostedBy != posterID {
		return ErrNotTaskPoster
	}
	if task.Status == domain.TaskStatusCompleted || task.Status == domain.TaskStatusCancelled {
		return ErrTaskTerminal
	}

	if _, err := s.currency.CreditWithTx(ctx, tx, posterID, task.Reward); err != nil {
		return err
	}
	entry := &domain.Transaction{
		MemberID: posterID,
		Type:     domain.TxTypeTaskRefund,
		Amount:   task.Reward,
		Meta:     map[string]interface{}{"task_id": task.ID},
	}
	if err := s.transactionRepo.CreateWithTx(ctx, tx, entry); err != nil {
		return err
	}

	if err := s.taskRepo.UpdateStatusWithTx(ctx, tx, taskID, domain.TaskStatusCancelled); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ValidateWinners checks a winner selection against the task and its
// acceptances, in the order the board has always validated: eligibility
// first, then reward amounts. Returns the payout total and the overflow the
// poster must cover beyond the escrowed pool.
func ValidateWinners(task *domain.Task, acceptances []*domain.TaskAcceptance, winners []domain.TaskWinner) (total, overflow int64, err error) {
	if len(winners) == 0 {
		return 0, 0, ErrNoWinners
	}

	completed := make(map[int64]bool, len(acceptances))
	for _, a := range acceptances {
		if a.CompletedAt != nil {
			completed[a.MemberID] = true
		}
	}

	for _, w := range winners {
		if !completed[w.MemberID] {
			return 0, 0, ErrWinnerNotEligible
		}
	}
	for _, w := range winners {
		if w.Reward <= 0 {
			return 0, 0, ErrInvalidReward
		}
		total += w.Reward
	}

	if total > task.Reward {
		overflow = total - task.Reward
	}
	return total, overflow, nil
}

// SelectWinners pays out the reward pool to the chosen winners and completes
// the task. Overflow beyond the pool is debited from the poster; unspent pool
// is refunded to the poster. All credits, the overflow debit and the status
// flip commit atomically.
func (s *HamsterboardService) SelectWinners(ctx context.Context, taskID string, posterID int64, winners []domain.TaskWinner) (*domain.Task, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	task, err := s.taskRepo.GetForUpdate(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	if task.PostedBy != posterID {
		return nil, ErrNotTaskPoster
	}
	if task.Status != domain.TaskStatusInProgress {
		return nil, ErrTaskNotInProgress
	}

	acceptances, err := s.taskRepo.GetAcceptances(ctx, taskID)
	if err != nil {
		return nil, err
	}

	total, overflow, err := ValidateWinners(task, acceptances, winners)
	if err != nil {
		return nil, err
	}

	if overflow > 0 {
		// poster covers the excess or the whole selection is rejected
		if _, err := s.currency.DebitWithTx(ctx, tx, posterID, overflow); err != nil {
			return nil, err
		}
		entry := &domain.Transaction{
			MemberID: posterID,
			Type:     domain.TxTypeTaskOverflow,
			Amount:   -overflow,
			Meta:     map[string]interface{}{"task_id": task.ID},
		}
		if err := s.transactionRepo.CreateWithTx(ctx, tx, entry); err != nil {
			return nil, err
		}
	} else if leftover := task.Reward - total; leftover > 0 {
		// unspent escrow goes back to the poster
		if _, err := s.currency.CreditWithTx(ctx, tx, posterID, leftover); err != nil {
			return nil, err
		}
		entry := &domain.Transaction{
			MemberID: posterID,
			Type:     domain.TxTypeTaskRefund,
			Amount:   leftover,
			Meta:     map[string]interface{}{"task_id": task.ID},
		}
		if err := s.transactionRepo.CreateWithTx(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	for _, w := range winners {
		if _, err := s.currency.CreditWithTx(ctx, tx, w.MemberID, w.Reward); err != nil {
			return nil, err
		}
		entry := &domain.Transaction{
			MemberID: w.MemberID,
			Type:     domain.TxTypeTaskReward,
			Amount:   w.Reward,
			Meta:     map[string]interface{}{"task_id": task.ID},
		}
		if err := s.transactionRepo.CreateWithTx(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := s.taskRepo.CompleteWithTx(ctx, tx, taskID, winners); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.TasksCompleted.Inc()
	task.Status = domain.TaskStatusCompleted
	task.Winners = winners

	if s.notifyWinner != nil {
		for _, w := range winners {
			go s.notifyWinner(w.MemberID, task.TaskName, w.Reward)
		}
	}
	logger.Info("task completed", "task_id", task.ID, "winners", len(winners), "total", total, "overflow", overflow)

	return task, nil
}

// ListTasks returns tasks filtered by status ("" for all)
func (s *HamsterboardService) ListTasks(ctx context.Context, status domain.TaskStatus, limit int) ([]*domain.Task, error) {
	return s.taskRepo.List(ctx, status, limit)
}

// GetTask returns a task with its acceptances
func (s *HamsterboardService) GetTask(ctx context.Context, taskID string) (*domain.Task, []*domain.TaskAcceptance, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if task == nil {
		return nil, nil, ErrTaskNotFound
	}
	acceptances, err := s.taskRepo.GetAcceptances(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	return task, acceptances, nil
}

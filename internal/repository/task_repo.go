package repository

import (
	"context"
	"encoding/json"

	"hamsterhub/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, task_name, description, reward, posted_by, status, winners, created_at, completed_at`

// CreateWithTx inserts the task inside the escrow transaction
func (r *TaskRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, t *domain.Task) error {
	return tx.QueryRow(ctx, `
		INSERT INTO tasks (id, task_name, description, reward, posted_by, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, t.ID, t.TaskName, t.Description, t.Reward, t.PostedBy, t.Status).Scan(&t.CreatedAt)
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

// GetForUpdate locks the task row for a status transition
func (r *TaskRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Task, error) {
	row := tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id)
	return scanTask(row)
}

// List returns tasks, optionally filtered by status, newest first
func (r *TaskRepository) List(ctx context.Context, status domain.TaskStatus, limit int) ([]*domain.Task, error) {
	var rows pgx.Rows
	var err error
	if status == "" {
		rows, err = r.db.Query(ctx,
			`SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC LIMIT $1`, limit)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE status = $1 ORDER BY created_at DESC LIMIT $2`, status, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// UpdateStatusWithTx flips the status under the row lock
func (r *TaskRepository) UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, id string, status domain.TaskStatus) error {
	_, err := tx.Exec(ctx, `UPDATE tasks SET status = $2 WHERE id = $1`, id, status)
	return err
}

// CompleteWithTx records the winners and moves the task to completed
func (r *TaskRepository) CompleteWithTx(ctx context.Context, tx pgx.Tx, id string, winners []domain.TaskWinner) error {
	winnersJSON, err := json.Marshal(winners)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE tasks
		SET status = $2, winners = $3, completed_at = now()
		WHERE id = $1
	`, id, domain.TaskStatusCompleted, winnersJSON)
	return err
}

// CreateAcceptanceWithTx records that a member accepted a task
func (r *TaskRepository) CreateAcceptanceWithTx(ctx context.Context, tx pgx.Tx, a *domain.TaskAcceptance) error {
	return tx.QueryRow(ctx, `
		INSERT INTO task_acceptances (task_id, member_id)
		VALUES ($1, $2)
		RETURNING accepted_at
	`, a.TaskID, a.MemberID).Scan(&a.AcceptedAt)
}

func (r *TaskRepository) GetAcceptances(ctx context.Context, taskID string) ([]*domain.TaskAcceptance, error) {
	rows, err := r.db.Query(ctx, `
		SELECT task_id, member_id, accepted_at, completed_at
		FROM task_acceptances
		WHERE task_id = $1
		ORDER BY accepted_at
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.TaskAcceptance
	for rows.Next() {
		var a domain.TaskAcceptance
		if err := rows.Scan(&a.TaskID, &a.MemberID, &a.AcceptedAt, &a.CompletedAt); err != nil {
			return nil, err
		}
		result = append(result, &a)
	}
	return result, rows.Err()
}

// GetAcceptanceWithTx reads one acceptance inside the accept transaction, so
// the duplicate check sees the same snapshot the insert will run against
func (r *TaskRepository) GetAcceptanceWithTx(ctx context.Context, tx pgx.Tx, taskID string, memberID int64) (*domain.TaskAcceptance, error) {
	var a domain.TaskAcceptance
	err := tx.QueryRow(ctx, `
		SELECT task_id, member_id, accepted_at, completed_at
		FROM task_acceptances
		WHERE task_id = $1 AND member_id = $2
	`, taskID, memberID).Scan(&a.TaskID, &a.MemberID, &a.AcceptedAt, &a.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// MarkCompleted stamps completed_at on an acceptance
func (r *TaskRepository) MarkCompleted(ctx context.Context, taskID string, memberID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE task_acceptances
		SET completed_at = now()
		WHERE task_id = $1 AND member_id = $2 AND completed_at IS NULL
	`, taskID, memberID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	var winnersJSON []byte

	err := row.Scan(&t.ID, &t.TaskName, &t.Description, &t.Reward, &t.PostedBy,
		&t.Status, &winnersJSON, &t.CreatedAt, &t.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if len(winnersJSON) > 0 {
		if err := json.Unmarshal(winnersJSON, &t.Winners); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

package domain

import "time"

type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Hamsterboard posting. The reward is escrowed from the poster's coins the
// moment the task is created.
type Task struct {
	ID          string       `db:"id" json:"id"`
	TaskName    string       `db:"task_name" json:"task_name"`
	Description string       `db:"description" json:"description"`
	Reward      int64        `db:"reward" json:"reward"`
	PostedBy    int64        `db:"posted_by" json:"posted_by"`
	Status      TaskStatus   `db:"status" json:"status"`
	Winners     []TaskWinner `db:"winners" json:"winners,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	CompletedAt *time.Time   `db:"completed_at" json:"completed_at,omitempty"`
}

type TaskWinner struct {
	MemberID int64 `json:"member_id"`
	Reward   int64 `json:"reward"`
}

type TaskAcceptance struct {
	TaskID      string     `db:"task_id" json:"task_id"`
	MemberID    int64      `db:"member_id" json:"member_id"`
	AcceptedAt  time.Time  `db:"accepted_at" json:"accepted_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

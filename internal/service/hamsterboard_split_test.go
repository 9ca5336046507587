package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"hamsterhub/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardTask(reward int64) *domain.Task {
	return &domain.Task{
		ID:       "task-1",
		TaskName: "draw the mascot",
		Reward:   reward,
		PostedBy: 1,
		Status:   domain.TaskStatusInProgress,
	}
}

func completedAcceptance(memberID int64) *domain.TaskAcceptance {
	now := time.Now()
	return &domain.TaskAcceptance{
		TaskID:      "task-1",
		MemberID:    memberID,
		AcceptedAt:  now.Add(-time.Hour),
		CompletedAt: &now,
	}
}

func pendingAcceptance(memberID int64) *domain.TaskAcceptance {
	return &domain.TaskAcceptance{
		TaskID:     "task-1",
		MemberID:   memberID,
		AcceptedAt: time.Now(),
	}
}

func TestValidateWinnersSplitWithinPool(t *testing.T) {
	task := boardTask(100)
	acceptances := []*domain.TaskAcceptance{
		completedAcceptance(2),
		completedAcceptance(3),
	}
	winners := []domain.TaskWinner{
		{MemberID: 2, Reward: 60},
		{MemberID: 3, Reward: 40},
	}

	total, overflow, err := ValidateWinners(task, acceptances, winners)
	require.NoError(t, err)
	assert.Equal(t, int64(100), total)
	assert.Equal(t, int64(0), overflow)
}

func TestValidateWinnersOverflowBeyondPool(t *testing.T) {
	task := boardTask(100)
	acceptances := []*domain.TaskAcceptance{
		completedAcceptance(2),
		completedAcceptance(3),
	}
	winners := []domain.TaskWinner{
		{MemberID: 2, Reward: 100},
		{MemberID: 3, Reward: 50},
	}

	total, overflow, err := ValidateWinners(task, acceptances, winners)
	require.NoError(t, err)
	assert.Equal(t, int64(150), total)
	assert.Equal(t, int64(50), overflow)
}

func TestValidateWinnersPartialPayoutLeavesLeftover(t *testing.T) {
	task := boardTask(100)
	acceptances := []*domain.TaskAcceptance{completedAcceptance(2)}
	winners := []domain.TaskWinner{{MemberID: 2, Reward: 30}}

	total, overflow, err := ValidateWinners(task, acceptances, winners)
	require.NoError(t, err)
	assert.Equal(t, int64(30), total)
	assert.Equal(t, int64(0), overflow)
}

func TestValidateWinnersRequiresCompletion(t *testing.T) {
	task := boardTask(100)

	// accepted but never completed
	acceptances := []*domain.TaskAcceptance{pendingAcceptance(2)}
	_, _, err := ValidateWinners(task, acceptances, []domain.TaskWinner{{MemberID: 2, Reward: 50}})
	assert.ErrorIs(t, err, ErrWinnerNotEligible)

	// never accepted at all
	_, _, err = ValidateWinners(task, nil, []domain.TaskWinner{{MemberID: 9, Reward: 50}})
	assert.ErrorIs(t, err, ErrWinnerNotEligible)
}

func TestValidateWinnersEligibilityCheckedBeforeRewards(t *testing.T) {
	task := boardTask(100)
	acceptances := []*domain.TaskAcceptance{completedAcceptance(2)}

	// member 9 is ineligible and member 2 has a bad reward; eligibility wins
	winners := []domain.TaskWinner{
		{MemberID: 2, Reward: 0},
		{MemberID: 9, Reward: 50},
	}
	_, _, err := ValidateWinners(task, acceptances, winners)
	assert.ErrorIs(t, err, ErrWinnerNotEligible)
}

func TestValidateWinnersRejectsNonPositiveReward(t *testing.T) {
	task := boardTask(100)
	acceptances := []*domain.TaskAcceptance{completedAcceptance(2)}

	_, _, err := ValidateWinners(task, acceptances, []domain.TaskWinner{{MemberID: 2, Reward: 0}})
	assert.ErrorIs(t, err, ErrInvalidReward)

	_, _, err = ValidateWinners(task, acceptances, []domain.TaskWinner{{MemberID: 2, Reward: -10}})
	assert.ErrorIs(t, err, ErrInvalidReward)
}

func TestValidateWinnersRejectsEmptySelection(t *testing.T) {
	_, _, err := ValidateWinners(boardTask(100), nil, nil)
	assert.ErrorIs(t, err, ErrNoWinners)
}

func TestUniqueViolationDetection(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "task_acceptances_pkey"}

	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", dup)))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
	assert.False(t, isUniqueViolation(nil))
}

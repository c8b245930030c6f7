// Package lifecycle implements the task state machine: creation, assignment,
// completion, and cancellation, with role-gated transitions.
//
// States: open -> assigned -> completed, open -> cancelled. Transitions are
// one-directional; the assignee is set exactly once. Every transition is a
// single atomic ledger commit covering the task record and, where a profile
// changes, exactly one user profile record. Racing transitions on the same
// task resolve to one winner; losers see market.ErrConflict at commit time
// and market.ErrInvalidState after a re-read.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openpost/tradepost/internal/registry"
	"github.com/openpost/tradepost/internal/reputation"
	"github.com/openpost/tradepost/pkg/ledger"
	"github.com/openpost/tradepost/pkg/market"
)

// DefaultMinReward is the smallest reward a task may carry.
const DefaultMinReward uint64 = 1

// Machine enforces the task lifecycle against the ledger.
type Machine struct {
	ledger    *ledger.Client
	registry  *registry.Registry
	policy    *reputation.Policy
	minReward uint64
}

// New creates a lifecycle machine. A zero minReward selects DefaultMinReward.
func New(l *ledger.Client, reg *registry.Registry, pol *reputation.Policy, minReward uint64) *Machine {
	if minReward == 0 {
		minReward = DefaultMinReward
	}
	return &Machine{
		ledger:    l,
		registry:  reg,
		policy:    pol,
		minReward: minReward,
	}
}

// CreateTask opens a new task for the authenticated creator. The task id is
// creator-scoped: two creators may both use id 1 without collision because
// the address derivation folds in the creator identity.
//
// Errors: market.ErrInvalidInput (empty or oversize title/description, reward
// below minimum), market.ErrNotFound (creator has no profile),
// market.ErrAlreadyExists (duplicate (creator, id)).
func (m *Machine) CreateTask(ctx context.Context, creator market.Identity, id uint64, title, description string, reward uint64) (*market.Task, *market.Receipt, error) {
	if err := m.validateTaskInput(title, description, reward); err != nil {
		return nil, nil, err
	}

	// Creator must have an initialized profile; the same read supplies the
	// version for the counter bump.
	profileWrite, err := m.registry.TaskCreatedWrite(ctx, creator)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create task %d: %w", id, err)
	}

	task := &market.Task{
		Creator:      creator,
		ID:           id,
		Title:        title,
		Description:  description,
		RewardAmount: reward,
		Status:       market.TaskStatusOpen,
		CreatedAtMs:  time.Now().UnixMilli(),
	}

	addr := market.TaskAddress(creator, id)
	err = m.ledger.CommitRecords(ctx,
		ledger.Write{Address: addr, Fields: market.TaskToHash(task), ExpectedVersion: ledger.Absent},
		profileWrite,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create task %d: %w", id, err)
	}

	if err := m.ledger.AddTaskToIndex(ctx, creator, addr); err != nil {
		return nil, nil, err
	}

	if err := m.publish(ctx, market.EventTaskCreated, addr, creator, 1); err != nil {
		return nil, nil, err
	}

	return task, market.NewReceipt(addr, 1), nil
}

// AssignTask moves an open task to assigned and sets the assignee. Only the
// task's creator may assign, and never to themselves.
//
// Errors: market.ErrNotFound (no such task), market.ErrInvalidState (task not
// open), market.ErrUnauthorized (caller is not the creator),
// market.ErrInvalidInput (zero or self assignee), market.ErrConflict (lost a
// racing commit; exactly one assign wins).
func (m *Machine) AssignTask(ctx context.Context, caller market.Identity, creator market.Identity, id uint64, assignee market.Identity) (*market.Receipt, error) {
	task, version, err := m.readTask(ctx, creator, id)
	if err != nil {
		return nil, err
	}

	if task.Status != market.TaskStatusOpen {
		return nil, fmt.Errorf("task %d is %s: %w", id, task.Status, market.ErrInvalidState)
	}
	if caller != task.Creator {
		return nil, fmt.Errorf("only the task creator may assign: %w", market.ErrUnauthorized)
	}
	if assignee.IsZero() {
		return nil, fmt.Errorf("assignee cannot be the zero identity: %w", market.ErrInvalidInput)
	}
	if assignee == task.Creator {
		return nil, fmt.Errorf("creator cannot assign a task to themselves: %w", market.ErrInvalidInput)
	}

	task.Status = market.TaskStatusAssigned
	task.Assignee = &assignee

	addr := market.TaskAddress(creator, id)
	if err := m.ledger.CommitRecord(ctx, addr, market.TaskToHash(task), version); err != nil {
		return nil, fmt.Errorf("failed to assign task %d: %w", id, err)
	}

	if err := m.publish(ctx, market.EventTaskAssigned, addr, caller, version+1); err != nil {
		return nil, err
	}

	return market.NewReceipt(addr, version+1), nil
}

// CompleteTask moves an assigned task to completed. Only the current assignee
// may complete. The assignee's profile is updated in the same commit: the
// completed-task counter increments and reputation moves by the policy delta,
// clamped to the valid range.
//
// Errors: market.ErrNotFound (no such task, or assignee has no profile),
// market.ErrInvalidState (task not assigned), market.ErrUnauthorized (caller
// is not the assignee), market.ErrConflict (lost a racing commit).
func (m *Machine) CompleteTask(ctx context.Context, caller market.Identity, creator market.Identity, id uint64) (*market.Receipt, error) {
	task, version, err := m.readTask(ctx, creator, id)
	if err != nil {
		return nil, err
	}

	if task.Status != market.TaskStatusAssigned {
		return nil, fmt.Errorf("task %d is %s: %w", id, task.Status, market.ErrInvalidState)
	}
	if task.Assignee == nil || caller != *task.Assignee {
		return nil, fmt.Errorf("only the assignee may complete: %w", market.ErrUnauthorized)
	}

	delta, err := m.policy.CompletionDelta(task.RewardAmount)
	if err != nil {
		return nil, err
	}

	profileWrite, err := m.registry.TaskCompletedWrite(ctx, caller, delta)
	if err != nil {
		return nil, fmt.Errorf("failed to complete task %d: %w", id, err)
	}

	task.Status = market.TaskStatusCompleted
	task.CompletedAtMs = time.Now().UnixMilli()

	addr := market.TaskAddress(creator, id)
	err = m.ledger.CommitRecords(ctx,
		ledger.Write{Address: addr, Fields: market.TaskToHash(task), ExpectedVersion: version},
		profileWrite,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to complete task %d: %w", id, err)
	}

	if err := m.publish(ctx, market.EventTaskCompleted, addr, caller, version+1); err != nil {
		return nil, err
	}

	return market.NewReceipt(addr, version+1), nil
}

// CancelTask withdraws an open task. Only the creator may cancel, and only
// while the task is still open; cancelled is terminal.
//
// Errors: market.ErrNotFound, market.ErrInvalidState (task not open),
// market.ErrUnauthorized (caller is not the creator), market.ErrConflict.
func (m *Machine) CancelTask(ctx context.Context, caller market.Identity, creator market.Identity, id uint64) (*market.Receipt, error) {
	task, version, err := m.readTask(ctx, creator, id)
	if err != nil {
		return nil, err
	}

	if task.Status != market.TaskStatusOpen {
		return nil, fmt.Errorf("task %d is %s: %w", id, task.Status, market.ErrInvalidState)
	}
	if caller != task.Creator {
		return nil, fmt.Errorf("only the task creator may cancel: %w", market.ErrUnauthorized)
	}

	task.Status = market.TaskStatusCancelled

	addr := market.TaskAddress(creator, id)
	if err := m.ledger.CommitRecord(ctx, addr, market.TaskToHash(task), version); err != nil {
		return nil, fmt.Errorf("failed to cancel task %d: %w", id, err)
	}

	if err := m.publish(ctx, market.EventTaskCancelled, addr, caller, version+1); err != nil {
		return nil, err
	}

	return market.NewReceipt(addr, version+1), nil
}

// GetTask retrieves a task by its (creator, id) pair.
// Returns market.ErrNotFound if no such task exists.
func (m *Machine) GetTask(ctx context.Context, creator market.Identity, id uint64) (*market.Task, error) {
	task, _, err := m.readTask(ctx, creator, id)
	return task, err
}

func (m *Machine) readTask(ctx context.Context, creator market.Identity, id uint64) (*market.Task, int64, error) {
	hash, version, err := m.ledger.ReadRecord(ctx, market.TaskAddress(creator, id))
	if err != nil {
		return nil, 0, fmt.Errorf("task %d of %s: %w", id, creator, err)
	}

	task, err := market.HashToTask(hash)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode task %d: %w", id, err)
	}

	return task, version, nil
}

func (m *Machine) validateTaskInput(title, description string, reward uint64) error {
	if title == "" {
		return fmt.Errorf("task title cannot be empty: %w", market.ErrInvalidInput)
	}
	if len(title) > market.TitleMaxLen {
		return fmt.Errorf("task title exceeds %d bytes: %w", market.TitleMaxLen, market.ErrInvalidInput)
	}
	if len(description) > market.DescriptionMaxLen {
		return fmt.Errorf("task description exceeds %d bytes: %w", market.DescriptionMaxLen, market.ErrInvalidInput)
	}
	if reward < m.minReward {
		return fmt.Errorf("reward %d below minimum %d: %w", reward, m.minReward, market.ErrInvalidInput)
	}
	return nil
}

func (m *Machine) publish(ctx context.Context, kind market.EventKind, addr market.Address, actor market.Identity, version int64) error {
	return m.ledger.PublishEvent(ctx, &market.Event{
		ID:      uuid.New().String(),
		Kind:    kind,
		Address: addr,
		Actor:   actor,
		Version: version,
		AtMs:    time.Now().UnixMilli(),
	})
}

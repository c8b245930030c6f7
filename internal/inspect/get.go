package inspect

import (
	"context"
	"fmt"
	"io"

	"github.com/openpost/tradepost/pkg/ledger"
	"github.com/openpost/tradepost/pkg/market"
)

// TaskNotFoundError provides a user-friendly "task not found" error.
type TaskNotFoundError struct {
	Creator market.Identity
	ID      uint64
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("task %d of creator %s not found", e.ID, e.Creator)
}

// ProfileNotFoundError provides a user-friendly "profile not found" error.
type ProfileNotFoundError struct {
	Identity market.Identity
}

func (e *ProfileNotFoundError) Error() string {
	return fmt.Sprintf("no profile for identity %s", e.Identity)
}

// WriteTask fetches the task at (creator, id) and writes it as pretty-printed
// JSON.
func WriteTask(ctx context.Context, l *ledger.Client, creator market.Identity, id uint64, w io.Writer) error {
	hash, _, err := l.ReadRecord(ctx, market.TaskAddress(creator, id))
	if err != nil {
		if market.IsNotFound(err) {
			return &TaskNotFoundError{Creator: creator, ID: id}
		}
		return fmt.Errorf("failed to fetch task: %w", err)
	}

	task, err := market.HashToTask(hash)
	if err != nil {
		return fmt.Errorf("failed to decode task: %w", err)
	}

	return FormatSingleJSON(w, task)
}

// WriteProfile fetches an identity's profile and writes it as pretty-printed
// JSON.
func WriteProfile(ctx context.Context, l *ledger.Client, identity market.Identity, w io.Writer) error {
	hash, _, err := l.ReadRecord(ctx, market.UserProfileAddress(identity))
	if err != nil {
		if market.IsNotFound(err) {
			return &ProfileNotFoundError{Identity: identity}
		}
		return fmt.Errorf("failed to fetch profile: %w", err)
	}

	profile, err := market.HashToProfile(hash)
	if err != nil {
		return fmt.Errorf("failed to decode profile: %w", err)
	}

	return FormatSingleJSON(w, profile)
}

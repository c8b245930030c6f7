// Package registry owns per-user profile records. Profiles are created
// exactly once per identity and mutated only by task lifecycle events: task
// creation bumps the created counter, task completion bumps the completed
// counter and adjusts reputation. Every mutation is a versioned CAS commit
// through the ledger.
package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openpost/tradepost/pkg/ledger"
	"github.com/openpost/tradepost/pkg/market"
)

// Registry provides user profile operations on top of the ledger.
type Registry struct {
	ledger *ledger.Client
}

// New creates a user registry backed by the given ledger client.
func New(l *ledger.Client) *Registry {
	return &Registry{ledger: l}
}

// InitializeUser creates the profile record for an identity with zeroed
// counters and the initial reputation score. Fails with
// market.ErrAlreadyExists if the identity already has a profile; exactly one
// of any set of racing initializers succeeds.
func (r *Registry) InitializeUser(ctx context.Context, identity market.Identity) (*market.UserProfile, *market.Receipt, error) {
	profile := market.NewUserProfile(identity)
	addr := market.UserProfileAddress(identity)

	if err := r.ledger.CreateRecord(ctx, addr, market.ProfileToHash(profile)); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize user %s: %w", identity, err)
	}

	if err := r.ledger.AddIdentityToIndex(ctx, identity); err != nil {
		return nil, nil, err
	}

	ev := &market.Event{
		ID:      uuid.New().String(),
		Kind:    market.EventUserInitialized,
		Address: addr,
		Actor:   identity,
		Version: 1,
		AtMs:    time.Now().UnixMilli(),
	}
	if err := r.ledger.PublishEvent(ctx, ev); err != nil {
		return nil, nil, err
	}

	return profile, market.NewReceipt(addr, 1), nil
}

// GetProfile retrieves an identity's profile and its committed version.
// Returns market.ErrNotFound if the identity has no profile.
func (r *Registry) GetProfile(ctx context.Context, identity market.Identity) (*market.UserProfile, int64, error) {
	hash, version, err := r.ledger.ReadRecord(ctx, market.UserProfileAddress(identity))
	if err != nil {
		return nil, 0, fmt.Errorf("no profile for %s: %w", identity, err)
	}

	profile, err := market.HashToProfile(hash)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode profile for %s: %w", identity, err)
	}

	return profile, version, nil
}

// TaskCreatedWrite reads the identity's profile and returns the ledger write
// that increments its created-task counter. Lifecycle transitions compose
// this write with the task record write into a single atomic commit.
// Returns market.ErrNotFound if the identity has no profile.
func (r *Registry) TaskCreatedWrite(ctx context.Context, identity market.Identity) (ledger.Write, error) {
	profile, version, err := r.GetProfile(ctx, identity)
	if err != nil {
		return ledger.Write{}, err
	}

	profile.TasksCreated++

	return ledger.Write{
		Address:         market.UserProfileAddress(identity),
		Fields:          market.ProfileToHash(profile),
		ExpectedVersion: version,
	}, nil
}

// TaskCompletedWrite reads the identity's profile and returns the ledger
// write that increments its completed-task counter and applies the reputation
// delta, clamped to the valid range.
// Returns market.ErrNotFound if the identity has no profile.
func (r *Registry) TaskCompletedWrite(ctx context.Context, identity market.Identity, delta int64) (ledger.Write, error) {
	profile, version, err := r.GetProfile(ctx, identity)
	if err != nil {
		return ledger.Write{}, err
	}

	profile.TasksCompleted++
	profile.ReputationScore = market.ClampReputation(profile.ReputationScore + delta)

	return ledger.Write{
		Address:         market.UserProfileAddress(identity),
		Fields:          market.ProfileToHash(profile),
		ExpectedVersion: version,
	}, nil
}

// RecordTaskCreated increments the identity's created-task counter in a
// standalone commit. Fails with market.ErrNotFound if no profile exists;
// a lost commit race fails market.ErrConflict and is not retried here.
func (r *Registry) RecordTaskCreated(ctx context.Context, identity market.Identity) error {
	w, err := r.TaskCreatedWrite(ctx, identity)
	if err != nil {
		return err
	}
	return r.ledger.CommitRecords(ctx, w)
}

// AdjustReputation applies a delta to the identity's reputation score,
// clamped to the valid range, in a standalone commit. Counters are untouched.
// Fails with market.ErrNotFound if no profile exists.
func (r *Registry) AdjustReputation(ctx context.Context, identity market.Identity, delta int64) error {
	profile, version, err := r.GetProfile(ctx, identity)
	if err != nil {
		return err
	}

	profile.ReputationScore = market.ClampReputation(profile.ReputationScore + delta)

	return r.ledger.CommitRecord(ctx, market.UserProfileAddress(identity), market.ProfileToHash(profile), version)
}

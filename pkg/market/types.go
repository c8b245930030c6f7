package market

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Field and policy bounds. Title and description limits follow the record
// sizing of the reference marketplace; reputation is clamped to [ReputationMin,
// ReputationMax] and every profile starts at ReputationInitial.
const (
	TitleMaxLen       = 256
	DescriptionMaxLen = 512

	ReputationInitial int64 = 100
	ReputationMin     int64 = 0
	ReputationMax     int64 = 1000
)

// IdentitySize is the byte length of an identity (an ed25519 public key).
const IdentitySize = 32

// Identity is an authenticated actor reference: a fixed-width ed25519 public
// key. The zero value is not a valid identity.
type Identity [IdentitySize]byte

// IdentityFromBytes converts a raw public key to an Identity.
// Returns an error if b is not exactly IdentitySize bytes.
func IdentityFromBytes(b []byte) (Identity, error) {
	var id Identity
	if len(b) != IdentitySize {
		return id, fmt.Errorf("identity must be %d bytes, got %d", IdentitySize, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// ParseIdentity parses the hex form produced by Identity.String.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid identity %q: %w", s, err)
	}
	return IdentityFromBytes(b)
}

// IsZero reports whether the identity is the (invalid) zero value.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// String returns the canonical 64-character lowercase hex form.
func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalText implements encoding.TextMarshaler so identities render as hex
// in JSON documents.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// UserProfile is the per-identity record. Created exactly once per identity
// and mutated only by task lifecycle transitions; never deleted.
type UserProfile struct {
	Owner           Identity `json:"owner"`            // Immutable: the identity this profile belongs to
	TasksCreated    uint64   `json:"tasks_created"`    // Monotonically non-decreasing
	TasksCompleted  uint64   `json:"tasks_completed"`  // Monotonically non-decreasing
	ReputationScore int64    `json:"reputation_score"` // Always within [ReputationMin, ReputationMax]
}

// NewUserProfile returns the initial profile for an identity.
func NewUserProfile(owner Identity) *UserProfile {
	return &UserProfile{
		Owner:           owner,
		TasksCreated:    0,
		TasksCompleted:  0,
		ReputationScore: ReputationInitial,
	}
}

// Validate checks if the UserProfile has valid field values.
func (p *UserProfile) Validate() error {
	if p.Owner.IsZero() {
		return fmt.Errorf("profile owner cannot be the zero identity")
	}
	if p.ReputationScore < ReputationMin || p.ReputationScore > ReputationMax {
		return fmt.Errorf("reputation score %d outside [%d, %d]", p.ReputationScore, ReputationMin, ReputationMax)
	}
	return nil
}

// TaskStatus defines the lifecycle state of a task.
// Tasks progress open -> assigned -> completed, or open -> cancelled.
// Completed and cancelled are terminal.
type TaskStatus string

const (
	// TaskStatusOpen indicates the task is accepting an assignee
	TaskStatusOpen TaskStatus = "open"

	// TaskStatusAssigned indicates an assignee has been set
	TaskStatusAssigned TaskStatus = "assigned"

	// TaskStatusCompleted indicates the assignee finished the task (terminal)
	TaskStatusCompleted TaskStatus = "completed"

	// TaskStatusCancelled indicates the creator withdrew the task (terminal)
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Validate checks if the TaskStatus is a valid enum value.
func (s TaskStatus) Validate() error {
	switch s {
	case TaskStatusOpen, TaskStatusAssigned, TaskStatusCompleted, TaskStatusCancelled:
		return nil
	default:
		return fmt.Errorf("unknown task status: %q", s)
	}
}

// Terminal reports whether the status admits no further transitions.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

// Task is one unit of work on the marketplace. Creator, ID, and RewardAmount
// are immutable after creation; Assignee is set exactly once at the
// open->assigned transition.
type Task struct {
	Creator       Identity   `json:"creator"`
	ID            uint64     `json:"id"` // Creator-scoped sequence id
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	RewardAmount  uint64     `json:"reward_amount"`
	Status        TaskStatus `json:"status"`
	Assignee      *Identity  `json:"assignee,omitempty"` // Present iff status != open
	CreatedAtMs   int64      `json:"created_at_ms"`
	CompletedAtMs int64      `json:"completed_at_ms,omitempty"` // Zero until completed
}

// Validate checks if the Task has valid field values, including the
// status/assignee coupling invariant.
func (t *Task) Validate() error {
	if t.Creator.IsZero() {
		return fmt.Errorf("task creator cannot be the zero identity")
	}
	if t.Title == "" {
		return fmt.Errorf("task title cannot be empty")
	}
	if len(t.Title) > TitleMaxLen {
		return fmt.Errorf("task title exceeds %d bytes", TitleMaxLen)
	}
	if len(t.Description) > DescriptionMaxLen {
		return fmt.Errorf("task description exceeds %d bytes", DescriptionMaxLen)
	}
	if err := t.Status.Validate(); err != nil {
		return fmt.Errorf("invalid status: %w", err)
	}
	if t.Status == TaskStatusOpen && t.Assignee != nil {
		return fmt.Errorf("open task cannot have an assignee")
	}
	if (t.Status == TaskStatusAssigned || t.Status == TaskStatusCompleted) && t.Assignee == nil {
		return fmt.Errorf("%s task must have an assignee", t.Status)
	}
	return nil
}

// ClampReputation bounds a reputation value to [ReputationMin, ReputationMax].
func ClampReputation(v int64) int64 {
	if v < ReputationMin {
		return ReputationMin
	}
	if v > ReputationMax {
		return ReputationMax
	}
	return v
}

// Receipt confirms a committed mutation. The ID is opaque to callers; the
// address and version identify exactly which record state the commit produced.
type Receipt struct {
	ID            string  `json:"id"` // UUID
	Address       Address `json:"address"`
	Version       int64   `json:"version"`
	CommittedAtMs int64   `json:"committed_at_ms"`
}

// NewReceipt builds a receipt for a commit that produced the given record
// version.
func NewReceipt(addr Address, version int64) *Receipt {
	return &Receipt{
		ID:            uuid.New().String(),
		Address:       addr,
		Version:       version,
		CommittedAtMs: time.Now().UnixMilli(),
	}
}

// EventKind labels a record event published after a successful commit.
type EventKind string

const (
	EventUserInitialized EventKind = "user_initialized"
	EventTaskCreated     EventKind = "task_created"
	EventTaskAssigned    EventKind = "task_assigned"
	EventTaskCompleted   EventKind = "task_completed"
	EventTaskCancelled   EventKind = "task_cancelled"
)

// Validate checks if the EventKind is a valid enum value.
func (k EventKind) Validate() error {
	switch k {
	case EventUserInitialized, EventTaskCreated, EventTaskAssigned,
		EventTaskCompleted, EventTaskCancelled:
		return nil
	default:
		return fmt.Errorf("unknown event kind: %q", k)
	}
}

// Event is published on the record events channel after a successful commit.
// Events are advisory: the committed record state in the ledger is
// authoritative.
type Event struct {
	ID      string    `json:"id"` // UUID
	Kind    EventKind `json:"kind"`
	Address Address   `json:"address"`
	Actor   Identity  `json:"actor"`   // The authenticated caller that drove the mutation
	Version int64     `json:"version"` // Record version produced by the commit
	AtMs    int64     `json:"at_ms"`
}

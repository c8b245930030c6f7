package market

import (
	"fmt"
	"strconv"
)

// Serialization helpers for converting between Go structs and Redis hashes
//
// Records are stored as string-to-string maps (hashes). Every record carries a
// "record_type" field so read-side tooling can decode a hash without knowing
// the derivation inputs, and a "version" field managed by the ledger (never
// set here).

// Record type discriminators stored in the "record_type" hash field.
const (
	RecordTypeUserProfile = "user_profile"
	RecordTypeTask        = "task"
)

// FieldRecordType names the hash field holding the record type discriminator.
const FieldRecordType = "record_type"

// ProfileToHash converts a UserProfile to Redis hash format.
func ProfileToHash(p *UserProfile) map[string]interface{} {
	return map[string]interface{}{
		FieldRecordType:    RecordTypeUserProfile,
		"owner":            p.Owner.String(),
		"tasks_created":    p.TasksCreated,
		"tasks_completed":  p.TasksCompleted,
		"reputation_score": p.ReputationScore,
	}
}

// HashToProfile converts a Redis hash back to a UserProfile.
func HashToProfile(hash map[string]string) (*UserProfile, error) {
	if rt := hash[FieldRecordType]; rt != RecordTypeUserProfile {
		return nil, fmt.Errorf("record is %q, not a user profile", rt)
	}

	owner, err := ParseIdentity(hash["owner"])
	if err != nil {
		return nil, fmt.Errorf("invalid owner field: %w", err)
	}

	tasksCreated, err := strconv.ParseUint(hash["tasks_created"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid tasks_created field: %w", err)
	}

	tasksCompleted, err := strconv.ParseUint(hash["tasks_completed"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid tasks_completed field: %w", err)
	}

	reputation, err := strconv.ParseInt(hash["reputation_score"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid reputation_score field: %w", err)
	}

	return &UserProfile{
		Owner:           owner,
		TasksCreated:    tasksCreated,
		TasksCompleted:  tasksCompleted,
		ReputationScore: reputation,
	}, nil
}

// TaskToHash converts a Task to Redis hash format.
// The assignee field is the empty string while the task is open.
func TaskToHash(t *Task) map[string]interface{} {
	assignee := ""
	if t.Assignee != nil {
		assignee = t.Assignee.String()
	}

	return map[string]interface{}{
		FieldRecordType:   RecordTypeTask,
		"id":              t.ID,
		"creator":         t.Creator.String(),
		"assignee":        assignee,
		"title":           t.Title,
		"description":     t.Description,
		"status":          string(t.Status),
		"reward_amount":   t.RewardAmount,
		"created_at_ms":   t.CreatedAtMs,
		"completed_at_ms": t.CompletedAtMs,
	}
}

// HashToTask converts a Redis hash back to a Task.
func HashToTask(hash map[string]string) (*Task, error) {
	if rt := hash[FieldRecordType]; rt != RecordTypeTask {
		return nil, fmt.Errorf("record is %q, not a task", rt)
	}

	id, err := strconv.ParseUint(hash["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id field: %w", err)
	}

	creator, err := ParseIdentity(hash["creator"])
	if err != nil {
		return nil, fmt.Errorf("invalid creator field: %w", err)
	}

	var assignee *Identity
	if s := hash["assignee"]; s != "" {
		parsed, err := ParseIdentity(s)
		if err != nil {
			return nil, fmt.Errorf("invalid assignee field: %w", err)
		}
		assignee = &parsed
	}

	reward, err := strconv.ParseUint(hash["reward_amount"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid reward_amount field: %w", err)
	}

	createdAtMs, _ := strconv.ParseInt(hash["created_at_ms"], 10, 64)
	completedAtMs, _ := strconv.ParseInt(hash["completed_at_ms"], 10, 64)

	task := &Task{
		Creator:       creator,
		ID:            id,
		Title:         hash["title"],
		Description:   hash["description"],
		RewardAmount:  reward,
		Status:        TaskStatus(hash["status"]),
		Assignee:      assignee,
		CreatedAtMs:   createdAtMs,
		CompletedAtMs: completedAtMs,
	}

	if err := task.Status.Validate(); err != nil {
		return nil, fmt.Errorf("invalid status field: %w", err)
	}

	return task, nil
}

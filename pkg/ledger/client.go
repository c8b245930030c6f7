// Package ledger is the atomic, authenticated commit substrate the
// marketplace state machines are built on. Records live in Redis hashes at
// derivation-computed addresses; every record carries a ledger-managed
// "version" field and all mutations are compare-and-swap commits against that
// version. Concurrency control needs no in-process locks: WATCH/MULTI gives
// linearizable semantics per address, and a lost race surfaces as
// market.ErrConflict (or market.ErrAlreadyExists for create races).
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/openpost/tradepost/pkg/market"
)

// FieldVersion names the hash field holding the ledger-managed record
// version. State machines must never set it themselves.
const FieldVersion = "version"

// Absent is the expected-version value meaning "the record must not exist
// yet". A successful create commits version 1.
const Absent int64 = 0

// Write is one record mutation inside a commit. ExpectedVersion is the
// version the caller read (or Absent for create-if-absent); the commit fails
// if the stored version differs.
type Write struct {
	Address         market.Address
	Fields          map[string]interface{}
	ExpectedVersion int64
}

// Client provides instance-scoped ledger operations over Redis.
// All keys and channels are automatically namespaced with the instance name.
// The client is safe for concurrent use from multiple goroutines.
type Client struct {
	rdb          *redis.Client
	instanceName string
}

// NewClient creates a ledger client for the specified instance.
// Returns an error if instanceName is empty.
func NewClient(redisOpts *redis.Options, instanceName string) (*Client, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}

	return &Client{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
	}, nil
}

// InstanceName returns the namespace this client operates in.
func (c *Client) InstanceName() string {
	return c.instanceName
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// ReadRecord retrieves the record at addr along with its committed version.
// Reads are strongly consistent with the latest committed state.
// Returns market.ErrNotFound if no record exists at the address.
func (c *Client) ReadRecord(ctx context.Context, addr market.Address) (map[string]string, int64, error) {
	key := market.RecordKey(c.instanceName, addr)

	hash, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read record %s: %w", addr, err)
	}

	// HGetAll returns an empty map for non-existent keys
	if len(hash) == 0 {
		return nil, 0, fmt.Errorf("record %s: %w", addr, market.ErrNotFound)
	}

	version, err := strconv.ParseInt(hash[FieldVersion], 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("record %s has corrupt version field: %w", addr, err)
	}

	return hash, version, nil
}

// CommitRecords atomically applies one or more record writes. Either every
// write commits or none does. Preconditions are checked under WATCH:
//
//   - ExpectedVersion == Absent and a record exists: market.ErrAlreadyExists
//   - ExpectedVersion != Absent and no record exists: market.ErrNotFound
//   - stored version differs from ExpectedVersion: market.ErrConflict
//
// A race lost between the precondition check and EXEC surfaces as
// market.ErrAlreadyExists for create writes whose address now holds a record,
// and market.ErrConflict otherwise. The ledger never retries; callers decide.
func (c *Client) CommitRecords(ctx context.Context, writes ...Write) error {
	if len(writes) == 0 {
		return nil
	}

	keys := make([]string, len(writes))
	for i, w := range writes {
		keys[i] = market.RecordKey(c.instanceName, w.Address)
	}

	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		for i, w := range writes {
			verStr, err := tx.HGet(ctx, keys[i], FieldVersion).Result()
			switch {
			case errors.Is(err, redis.Nil):
				if w.ExpectedVersion != Absent {
					return fmt.Errorf("record %s: %w", w.Address, market.ErrNotFound)
				}
			case err != nil:
				return fmt.Errorf("failed to read version of %s: %w", w.Address, err)
			default:
				if w.ExpectedVersion == Absent {
					return fmt.Errorf("record %s: %w", w.Address, market.ErrAlreadyExists)
				}
				current, perr := strconv.ParseInt(verStr, 10, 64)
				if perr != nil {
					return fmt.Errorf("record %s has corrupt version field: %w", w.Address, perr)
				}
				if current != w.ExpectedVersion {
					return fmt.Errorf("record %s is at version %d, expected %d: %w",
						w.Address, current, w.ExpectedVersion, market.ErrConflict)
				}
			}
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, w := range writes {
				pipe.HSet(ctx, keys[i], w.Fields)
				pipe.HSet(ctx, keys[i], FieldVersion, w.ExpectedVersion+1)
			}
			return nil
		})
		return err
	}, keys...)

	if errors.Is(err, redis.TxFailedErr) {
		// A watched key changed before EXEC. Re-check create writes so a lost
		// create race reports AlreadyExists, not a bare conflict.
		for _, w := range writes {
			if w.ExpectedVersion != Absent {
				continue
			}
			exists, exErr := c.rdb.Exists(ctx, market.RecordKey(c.instanceName, w.Address)).Result()
			if exErr == nil && exists > 0 {
				return fmt.Errorf("record %s: %w", w.Address, market.ErrAlreadyExists)
			}
		}
		return fmt.Errorf("commit aborted by concurrent mutation: %w", market.ErrConflict)
	}

	return err
}

// CreateRecord commits a single record with create-if-absent semantics.
// Exactly one of any set of racing creators succeeds; the rest fail
// market.ErrAlreadyExists.
func (c *Client) CreateRecord(ctx context.Context, addr market.Address, fields map[string]interface{}) error {
	return c.CommitRecords(ctx, Write{Address: addr, Fields: fields, ExpectedVersion: Absent})
}

// CommitRecord commits a single record mutation against an expected prior
// version.
func (c *Client) CommitRecord(ctx context.Context, addr market.Address, fields map[string]interface{}, expectedVersion int64) error {
	return c.CommitRecords(ctx, Write{Address: addr, Fields: fields, ExpectedVersion: expectedVersion})
}

// AddTaskToIndex adds a task address to the creator's task index SET.
// The index is advisory (read-side listing only) and is written after the
// task record itself commits.
func (c *Client) AddTaskToIndex(ctx context.Context, creator market.Identity, addr market.Address) error {
	key := market.CreatorTasksKey(c.instanceName, creator)
	if err := c.rdb.SAdd(ctx, key, addr.String()).Err(); err != nil {
		return fmt.Errorf("failed to index task %s: %w", addr, err)
	}
	return nil
}

// AddIdentityToIndex adds an identity to the instance-wide identity index SET.
// Written after the profile record itself commits; the index is advisory.
func (c *Client) AddIdentityToIndex(ctx context.Context, identity market.Identity) error {
	key := market.IdentitiesKey(c.instanceName)
	if err := c.rdb.SAdd(ctx, key, identity.String()).Err(); err != nil {
		return fmt.Errorf("failed to index identity %s: %w", identity, err)
	}
	return nil
}

// KnownIdentities returns every identity that has initialized a profile.
// Returns an empty slice if none have (not an error).
func (c *Client) KnownIdentities(ctx context.Context) ([]market.Identity, error) {
	key := market.IdentitiesKey(c.instanceName)

	members, err := c.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read identity index: %w", err)
	}

	ids := make([]market.Identity, 0, len(members))
	for _, m := range members {
		id, err := market.ParseIdentity(m)
		if err != nil {
			return nil, fmt.Errorf("corrupt identity index entry %q: %w", m, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// CreatorTasks returns the addresses of every task the creator has created.
// Returns an empty slice if the creator has no tasks (not an error).
func (c *Client) CreatorTasks(ctx context.Context, creator market.Identity) ([]market.Address, error) {
	key := market.CreatorTasksKey(c.instanceName, creator)

	members, err := c.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read task index: %w", err)
	}

	addrs := make([]market.Address, 0, len(members))
	for _, m := range members {
		addr, err := market.ParseAddress(m)
		if err != nil {
			return nil, fmt.Errorf("corrupt task index entry %q: %w", m, err)
		}
		addrs = append(addrs, addr)
	}

	return addrs, nil
}

package ledger

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpost/tradepost/pkg/market"
)

// setupTestClient creates a test client connected to a miniredis instance
func setupTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr := miniredis.NewMiniRedis()
	err := mr.Start()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient(&redis.Options{Addr: mr.Addr()}, "test-instance")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func testIdentity(fill byte) market.Identity {
	var id market.Identity
	for i := range id {
		id[i] = fill
	}
	return id
}

func testFields(title string) map[string]interface{} {
	return map[string]interface{}{
		market.FieldRecordType: market.RecordTypeTask,
		"title":                title,
	}
}

func TestNewClient(t *testing.T) {
	t.Run("creates client successfully", func(t *testing.T) {
		client, _ := setupTestClient(t)
		assert.NotNil(t, client)
		assert.Equal(t, "test-instance", client.InstanceName())
	})

	t.Run("rejects empty instance name", func(t *testing.T) {
		_, err := NewClient(&redis.Options{Addr: "localhost:6379"}, "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "instance name cannot be empty")
	})
}

func TestPing(t *testing.T) {
	client, _ := setupTestClient(t)
	err := client.Ping(context.Background())
	assert.NoError(t, err)
}

func TestReadRecordNotFound(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	addr := market.TaskAddress(testIdentity(0x01), 1)
	_, _, err := client.ReadRecord(ctx, addr)
	assert.True(t, market.IsNotFound(err))
}

func TestCreateRecord(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()
	addr := market.TaskAddress(testIdentity(0x01), 1)

	t.Run("creates and commits version 1", func(t *testing.T) {
		err := client.CreateRecord(ctx, addr, testFields("first"))
		require.NoError(t, err)

		hash, version, err := client.ReadRecord(ctx, addr)
		require.NoError(t, err)
		assert.Equal(t, int64(1), version)
		assert.Equal(t, "first", hash["title"])
	})

	t.Run("second create fails AlreadyExists", func(t *testing.T) {
		err := client.CreateRecord(ctx, addr, testFields("second"))
		assert.True(t, market.IsAlreadyExists(err))

		// Losing creator must not have overwritten anything
		hash, version, err := client.ReadRecord(ctx, addr)
		require.NoError(t, err)
		assert.Equal(t, int64(1), version)
		assert.Equal(t, "first", hash["title"])
	})
}

func TestCommitRecord(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()
	addr := market.TaskAddress(testIdentity(0x02), 1)

	require.NoError(t, client.CreateRecord(ctx, addr, testFields("v1")))

	t.Run("commit against missing record fails NotFound", func(t *testing.T) {
		missing := market.TaskAddress(testIdentity(0x02), 99)
		err := client.CommitRecord(ctx, missing, testFields("x"), 1)
		assert.True(t, market.IsNotFound(err))
	})

	t.Run("commit with matching version succeeds", func(t *testing.T) {
		err := client.CommitRecord(ctx, addr, testFields("v2"), 1)
		require.NoError(t, err)

		hash, version, err := client.ReadRecord(ctx, addr)
		require.NoError(t, err)
		assert.Equal(t, int64(2), version)
		assert.Equal(t, "v2", hash["title"])
	})

	t.Run("commit with stale version fails Conflict", func(t *testing.T) {
		err := client.CommitRecord(ctx, addr, testFields("stale"), 1)
		assert.True(t, market.IsConflict(err))

		hash, version, err := client.ReadRecord(ctx, addr)
		require.NoError(t, err)
		assert.Equal(t, int64(2), version)
		assert.Equal(t, "v2", hash["title"])
	})
}

func TestCommitRecordsAtomicPair(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	taskAddr := market.TaskAddress(testIdentity(0x03), 1)
	profileAddr := market.UserProfileAddress(testIdentity(0x03))

	require.NoError(t, client.CreateRecord(ctx, profileAddr, map[string]interface{}{
		market.FieldRecordType: market.RecordTypeUserProfile,
		"tasks_created":        0,
	}))

	t.Run("create plus commit in one transaction", func(t *testing.T) {
		err := client.CommitRecords(ctx,
			Write{Address: taskAddr, Fields: testFields("task"), ExpectedVersion: Absent},
			Write{Address: profileAddr, Fields: map[string]interface{}{"tasks_created": 1}, ExpectedVersion: 1},
		)
		require.NoError(t, err)

		_, taskVersion, err := client.ReadRecord(ctx, taskAddr)
		require.NoError(t, err)
		assert.Equal(t, int64(1), taskVersion)

		hash, profileVersion, err := client.ReadRecord(ctx, profileAddr)
		require.NoError(t, err)
		assert.Equal(t, int64(2), profileVersion)
		assert.Equal(t, "1", hash["tasks_created"])
	})

	t.Run("one failed precondition aborts every write", func(t *testing.T) {
		otherAddr := market.TaskAddress(testIdentity(0x03), 2)
		err := client.CommitRecords(ctx,
			Write{Address: otherAddr, Fields: testFields("other"), ExpectedVersion: Absent},
			Write{Address: profileAddr, Fields: map[string]interface{}{"tasks_created": 2}, ExpectedVersion: 1}, // stale
		)
		assert.True(t, market.IsConflict(err))

		// The create write must not have been applied
		_, _, err = client.ReadRecord(ctx, otherAddr)
		assert.True(t, market.IsNotFound(err))
	})
}

func TestIdentityIndex(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	t.Run("empty index returns empty slice", func(t *testing.T) {
		ids, err := client.KnownIdentities(ctx)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("indexed identities round-trip", func(t *testing.T) {
		alice := testIdentity(0x0A)
		bob := testIdentity(0x0B)

		require.NoError(t, client.AddIdentityToIndex(ctx, alice))
		require.NoError(t, client.AddIdentityToIndex(ctx, bob))
		require.NoError(t, client.AddIdentityToIndex(ctx, alice))

		ids, err := client.KnownIdentities(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []market.Identity{alice, bob}, ids)
	})
}

func TestTaskIndex(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()
	creator := testIdentity(0x04)

	t.Run("empty index returns empty slice", func(t *testing.T) {
		addrs, err := client.CreatorTasks(ctx, creator)
		require.NoError(t, err)
		assert.Empty(t, addrs)
	})

	t.Run("indexed addresses round-trip", func(t *testing.T) {
		a1 := market.TaskAddress(creator, 1)
		a2 := market.TaskAddress(creator, 2)

		require.NoError(t, client.AddTaskToIndex(ctx, creator, a1))
		require.NoError(t, client.AddTaskToIndex(ctx, creator, a2))
		// Re-adding is a no-op
		require.NoError(t, client.AddTaskToIndex(ctx, creator, a1))

		addrs, err := client.CreatorTasks(ctx, creator)
		require.NoError(t, err)
		assert.Len(t, addrs, 2)
		assert.ElementsMatch(t, []market.Address{a1, a2}, addrs)
	})
}

package watch

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpost/tradepost/pkg/ledger"
	"github.com/openpost/tradepost/pkg/market"
)

func setupTestLedger(t *testing.T) *ledger.Client {
	mr := miniredis.NewMiniRedis()
	err := mr.Start()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := ledger.NewClient(&redis.Options{Addr: mr.Addr()}, "test-instance")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client
}

func testIdentity(fill byte) market.Identity {
	var id market.Identity
	for i := range id {
		id[i] = fill
	}
	return id
}

// syncBuffer serializes writes so the watcher goroutine and the test can
// share a buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFollow(t *testing.T) {
	l := setupTestLedger(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var buf syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, l, &buf)
	}()

	// Give the subscriber goroutine time to register
	time.Sleep(50 * time.Millisecond)

	actor := testIdentity(0x01)
	require.NoError(t, l.PublishEvent(ctx, &market.Event{
		ID:      uuid.New().String(),
		Kind:    market.EventTaskCreated,
		Address: market.TaskAddress(actor, 1),
		Actor:   actor,
		Version: 1,
		AtMs:    time.Now().UnixMilli(),
	}))

	require.Eventually(t, func() bool {
		return len(buf.String()) > 0
	}, 2*time.Second, 20*time.Millisecond, "no event line written")

	out := buf.String()
	assert.Contains(t, out, string(market.EventTaskCreated))
	assert.Contains(t, out, actor.String())
	assert.Contains(t, out, "v1")

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Follow did not return after cancellation")
	}
}

func TestPollForRecord(t *testing.T) {
	l := setupTestLedger(t)
	ctx := context.Background()
	alice := testIdentity(0x01)
	addr := market.UserProfileAddress(alice)

	t.Run("times out when the record never appears", func(t *testing.T) {
		_, _, err := PollForRecord(ctx, l, addr, 500*time.Millisecond)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "timeout")
	})

	t.Run("returns the record once committed", func(t *testing.T) {
		go func() {
			time.Sleep(300 * time.Millisecond)
			profile := market.NewUserProfile(alice)
			_ = l.CreateRecord(ctx, addr, market.ProfileToHash(profile))
		}()

		hash, version, err := PollForRecord(ctx, l, addr, 5*time.Second)
		require.NoError(t, err)
		assert.Equal(t, int64(1), version)
		assert.Equal(t, market.RecordTypeUserProfile, hash[market.FieldRecordType])
	})

	t.Run("cancelled context stops polling", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()

		_, _, err := PollForRecord(cancelCtx, l, market.TaskAddress(alice, 9), 5*time.Second)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

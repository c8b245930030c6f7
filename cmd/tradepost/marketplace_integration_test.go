// go:build integration
//go:build integration

package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/openpost/tradepost/internal/lifecycle"
	"github.com/openpost/tradepost/internal/registry"
	"github.com/openpost/tradepost/internal/reputation"
	"github.com/openpost/tradepost/pkg/ledger"
	"github.com/openpost/tradepost/pkg/market"
)

// setupRedis starts a Redis container for testing.
func setupRedis(t *testing.T) (string, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisC.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisC.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisURL := fmt.Sprintf("redis://%s:%s", host, port.Port())

	cleanup := func() {
		if err := redisC.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate Redis container: %v", err)
		}
	}

	return redisURL, cleanup
}

func integrationIdentity(fill byte) market.Identity {
	var id market.Identity
	for i := range id {
		id[i] = fill
	}
	return id
}

// TestMarketplace_FullLifecycle drives a task from creation through
// completion against a real Redis and verifies profile side effects.
func TestMarketplace_FullLifecycle(t *testing.T) {
	redisURL, cleanup := setupRedis(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}

	client, err := ledger.NewClient(opts, "test-instance")
	if err != nil {
		t.Fatalf("Failed to create ledger client: %v", err)
	}
	defer client.Close()

	pol, err := reputation.NewPolicy("")
	if err != nil {
		t.Fatalf("Failed to compile reputation policy: %v", err)
	}

	reg := registry.New(client)
	machine := lifecycle.New(client, reg, pol, 0)

	alice := integrationIdentity(0x01)
	bob := integrationIdentity(0x02)

	for _, id := range []market.Identity{alice, bob} {
		if _, _, err := reg.InitializeUser(ctx, id); err != nil {
			t.Fatalf("Failed to initialize user: %v", err)
		}
	}

	sub, err := client.SubscribeRecordEvents(ctx)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()
	time.Sleep(100 * time.Millisecond)

	task, receipt, err := machine.CreateTask(ctx, alice, 1, "Integration Task", "end to end", 100)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.Status != market.TaskStatusOpen || receipt.Version != 1 {
		t.Fatalf("Unexpected create result: status=%s version=%d", task.Status, receipt.Version)
	}

	if _, err := machine.AssignTask(ctx, alice, alice, 1, bob); err != nil {
		t.Fatalf("AssignTask failed: %v", err)
	}

	if _, err := machine.CompleteTask(ctx, bob, alice, 1); err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}

	got, err := machine.GetTask(ctx, alice, 1)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Status != market.TaskStatusCompleted {
		t.Errorf("Expected completed task, got %s", got.Status)
	}

	profile, _, err := reg.GetProfile(ctx, bob)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.TasksCompleted != 1 {
		t.Errorf("Expected 1 completed task, got %d", profile.TasksCompleted)
	}
	if profile.ReputationScore != market.ReputationInitial+10 {
		t.Errorf("Expected reputation %d, got %d", market.ReputationInitial+10, profile.ReputationScore)
	}

	wantKinds := map[market.EventKind]bool{
		market.EventTaskCreated:   false,
		market.EventTaskAssigned:  false,
		market.EventTaskCompleted: false,
	}
	deadline := time.After(10 * time.Second)
	for remaining := len(wantKinds); remaining > 0; {
		select {
		case ev := <-sub.Events():
			if seen, tracked := wantKinds[ev.Kind]; tracked && !seen {
				wantKinds[ev.Kind] = true
				remaining--
			}
		case <-deadline:
			t.Fatalf("Timed out waiting for events, still missing: %v", wantKinds)
		}
	}
}

// TestMarketplace_ConcurrentCreates verifies that exactly one of a set of
// racing creators of the same (creator, id) pair wins.
func TestMarketplace_ConcurrentCreates(t *testing.T) {
	redisURL, cleanup := setupRedis(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}

	client, err := ledger.NewClient(opts, "test-instance")
	if err != nil {
		t.Fatalf("Failed to create ledger client: %v", err)
	}
	defer client.Close()

	pol, err := reputation.NewPolicy("")
	if err != nil {
		t.Fatalf("Failed to compile reputation policy: %v", err)
	}
	reg := registry.New(client)
	machine := lifecycle.New(client, reg, pol, 0)

	alice := integrationIdentity(0x01)
	if _, _, err := reg.InitializeUser(ctx, alice); err != nil {
		t.Fatalf("Failed to initialize user: %v", err)
	}

	const racers = 8
	results := make(chan error, racers)
	for i := 0; i < racers; i++ {
		go func() {
			_, _, err := machine.CreateTask(ctx, alice, 7, "Contested Task", "", 100)
			results <- err
		}()
	}

	var wins, losses int
	for i := 0; i < racers; i++ {
		err := <-results
		switch {
		case err == nil:
			wins++
		case market.IsAlreadyExists(err) || market.IsConflict(err):
			losses++
		default:
			t.Fatalf("Unexpected error from racing create: %v", err)
		}
	}

	if wins != 1 {
		t.Errorf("Expected exactly 1 winning create, got %d (losses=%d)", wins, losses)
	}

	if _, err := machine.GetTask(ctx, alice, 7); err != nil {
		t.Errorf("Winning task should be readable: %v", err)
	}
}

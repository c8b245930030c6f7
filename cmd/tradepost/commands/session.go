package commands

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/openpost/tradepost/internal/config"
	"github.com/openpost/tradepost/internal/keys"
	"github.com/openpost/tradepost/internal/lifecycle"
	"github.com/openpost/tradepost/internal/printer"
	"github.com/openpost/tradepost/internal/registry"
	"github.com/openpost/tradepost/internal/reputation"
	"github.com/openpost/tradepost/internal/resolver"
	"github.com/openpost/tradepost/pkg/ledger"
	"github.com/openpost/tradepost/pkg/market"
)

// session wires configuration, the ledger client, and the state machines for
// one command invocation. Caller must Close().
type session struct {
	cfg      *config.Config
	ledger   *ledger.Client
	registry *registry.Registry
	machine  *lifecycle.Machine
	signer   ed25519.PrivateKey // nil for read-only sessions
}

// newSession builds a session from the configured Redis instance. When
// requireKey is set, the local signing key must exist.
func newSession(requireKey bool) (*session, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}

	l, err := ledger.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Instance)
	if err != nil {
		return nil, err
	}

	pol, err := reputation.NewPolicy(cfg.Market.ReputationDelta)
	if err != nil {
		l.Close()
		return nil, err
	}

	reg := registry.New(l)

	s := &session{
		cfg:      cfg,
		ledger:   l,
		registry: reg,
		machine:  lifecycle.New(l, reg, pol, cfg.Market.MinReward),
	}

	if requireKey {
		priv, err := keys.Load(cfg.Keys.File)
		if err != nil {
			l.Close()
			return nil, printer.Error(
				"no signing key available",
				fmt.Sprintf("Could not load the signing key from %s:\n  %v", cfg.Keys.File, err),
				[]string{"Create one first:\n  tradepost keygen"},
			)
		}
		s.signer = priv
	}

	return s, nil
}

func (s *session) Close() {
	s.ledger.Close()
}

// authenticate signs the canonical intent payload with the local key and
// verifies it through the gateway, yielding the caller identity every
// mutating operation uses.
func (s *session) authenticate(op string, args ...string) (market.Identity, error) {
	cred := ledger.SignIntent(s.signer, ledger.IntentPayload(op, args...))
	identity, err := ledger.Authenticate(cred)
	if err != nil {
		return market.Identity{}, fmt.Errorf("authentication failed: %w", err)
	}
	return identity, nil
}

// resolveIdentity accepts a full identity or a short hex prefix and resolves
// it against the instance's initialized users.
func (s *session) resolveIdentity(ctx context.Context, value string) (market.Identity, error) {
	id, err := resolver.ResolveIdentity(ctx, s.ledger, value)
	if err != nil {
		var ambiguous *resolver.AmbiguousError
		if errors.As(err, &ambiguous) {
			fmt.Println(resolver.FormatAmbiguousError(ambiguous))
		}
		return market.Identity{}, err
	}
	return id, nil
}

// printReceipt renders a mutation receipt.
func printReceipt(r *market.Receipt) {
	printer.Info("  receipt:  %s\n", r.ID)
	printer.Info("  address:  %s\n", r.Address)
	printer.Info("  version:  %d\n", r.Version)
}

// Package keys loads and creates the local ed25519 signing key the CLI uses
// to authenticate intents. The key file holds a hex-encoded 32-byte seed.
// Custody, rotation, and hardware wallets are out of scope.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/openpost/tradepost/pkg/market"
)

// Load reads the hex seed file at path and derives the private key.
func Load(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	seed, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("key file %s is not valid hex: %w", path, err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("key seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	return ed25519.NewKeyFromSeed(seed), nil
}

// Generate creates a new random seed file at path (mode 0600) and returns the
// derived private key. Fails if the file already exists.
func Generate(path string) (ed25519.PrivateKey, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("key file %s already exists", path)
	}

	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("failed to generate key seed: %w", err)
	}

	if err := os.WriteFile(path, []byte(hex.EncodeToString(seed)+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}

	return ed25519.NewKeyFromSeed(seed), nil
}

// Identity returns the marketplace identity (public key) of a private key.
func Identity(priv ed25519.PrivateKey) market.Identity {
	pub := priv.Public().(ed25519.PublicKey)
	id, err := market.IdentityFromBytes(pub)
	if err != nil {
		// ed25519 public keys are always 32 bytes
		panic(err)
	}
	return id
}

package ledger

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpost/tradepost/pkg/market"
)

func testKeyPair(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub, priv
}

func TestAuthenticate(t *testing.T) {
	pub, priv := testKeyPair(t)
	payload := IntentPayload("create_task", "7", "fix the roof")

	t.Run("valid credential yields signer identity", func(t *testing.T) {
		cred := SignIntent(priv, payload)

		identity, err := Authenticate(cred)
		require.NoError(t, err)

		want, err := market.IdentityFromBytes(pub)
		require.NoError(t, err)
		assert.Equal(t, want, identity)
	})

	t.Run("tampered payload fails Unauthorized", func(t *testing.T) {
		cred := SignIntent(priv, payload)
		cred.Payload = IntentPayload("create_task", "8", "fix the roof")

		_, err := Authenticate(cred)
		assert.True(t, market.IsUnauthorized(err))
	})

	t.Run("tampered signature fails Unauthorized", func(t *testing.T) {
		cred := SignIntent(priv, payload)
		cred.Signature[0] ^= 0xFF

		_, err := Authenticate(cred)
		assert.True(t, market.IsUnauthorized(err))
	})

	t.Run("wrong signer fails Unauthorized", func(t *testing.T) {
		_, otherPriv := testKeyPair(t)
		cred := SignIntent(otherPriv, payload)
		cred.PublicKey = append([]byte(nil), pub...)

		_, err := Authenticate(cred)
		assert.True(t, market.IsUnauthorized(err))
	})

	t.Run("malformed public key fails Unauthorized", func(t *testing.T) {
		cred := SignIntent(priv, payload)
		cred.PublicKey = cred.PublicKey[:16]

		_, err := Authenticate(cred)
		assert.True(t, market.IsUnauthorized(err))
	})
}

func TestIntentPayload(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := IntentPayload("assign_task", "1", "bob")
		b := IntentPayload("assign_task", "1", "bob")
		assert.Equal(t, a, b)
	})

	t.Run("argument boundaries are framed", func(t *testing.T) {
		// Without length framing these would serialize identically
		a := IntentPayload("op", "ab", "c")
		b := IntentPayload("op", "a", "bc")
		assert.NotEqual(t, a, b)
	})

	t.Run("operation name is part of the payload", func(t *testing.T) {
		a := IntentPayload("assign_task", "1")
		b := IntentPayload("cancel_task", "1")
		assert.NotEqual(t, a, b)
	})
}

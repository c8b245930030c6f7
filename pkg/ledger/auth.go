package ledger

import (
	"crypto/ed25519"
	"encoding/binary"
	"fmt"

	"github.com/openpost/tradepost/pkg/market"
)

// Credential carries a caller's proof of identity for a single intent: the
// public key, the canonical intent payload, and an ed25519 signature over
// that payload.
type Credential struct {
	PublicKey []byte `json:"public_key"`
	Payload   []byte `json:"payload"`
	Signature []byte `json:"signature"`
}

// Authenticate verifies the credential and returns the caller's identity.
// Returns market.ErrUnauthorized if the key is malformed or the signature
// does not verify. Pure function: no ledger state is consulted.
func Authenticate(cred Credential) (market.Identity, error) {
	if len(cred.PublicKey) != ed25519.PublicKeySize {
		return market.Identity{}, fmt.Errorf("public key must be %d bytes: %w",
			ed25519.PublicKeySize, market.ErrUnauthorized)
	}

	if !ed25519.Verify(ed25519.PublicKey(cred.PublicKey), cred.Payload, cred.Signature) {
		return market.Identity{}, fmt.Errorf("signature verification failed: %w", market.ErrUnauthorized)
	}

	return market.IdentityFromBytes(cred.PublicKey)
}

// SignIntent produces a credential for the given intent payload.
func SignIntent(priv ed25519.PrivateKey, payload []byte) Credential {
	pub := priv.Public().(ed25519.PublicKey)
	return Credential{
		PublicKey: append([]byte(nil), pub...),
		Payload:   append([]byte(nil), payload...),
		Signature: ed25519.Sign(priv, payload),
	}
}

// IntentPayload builds the canonical byte form of an intent: the operation
// name followed by its arguments, each segment length-framed so distinct
// argument lists can never serialize identically.
func IntentPayload(op string, args ...string) []byte {
	var buf []byte
	var frame [binary.MaxVarintLen64]byte

	appendSegment := func(s string) {
		n := binary.PutUvarint(frame[:], uint64(len(s)))
		buf = append(buf, frame[:n]...)
		buf = append(buf, s...)
	}

	appendSegment(op)
	for _, a := range args {
		appendSegment(a)
	}
	return buf
}

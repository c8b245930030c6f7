package market

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Namespace tags for address derivation. These are the only tags the
// marketplace derives under.
const (
	TagUserProfile = "user_profile"
	TagTask        = "task"
)

// AddressSize is the byte length of a derived address (a SHA-256 digest).
const AddressSize = 32

// Address is a derived record identifier. Addresses are never stored inside
// records; they are recomputed from derivation inputs on every access.
type Address [AddressSize]byte

// ParseAddress parses the hex form produced by Address.String.
func ParseAddress(s string) (Address, error) {
	var a Address
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(b) != AddressSize {
		return a, fmt.Errorf("address must be %d bytes, got %d", AddressSize, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// String returns the canonical 64-character lowercase hex form.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// DeriveAddress computes the address of an owner-scoped record such as a user
// profile. Deterministic and pure: identical inputs always yield the same
// address.
func DeriveAddress(tag string, owner Identity) Address {
	return deriveFromSegments([]byte(tag), owner[:])
}

// DeriveTaskAddress computes the address of a task record from its creator and
// creator-scoped sequence id. The sequence id is framed as its canonical
// decimal text form; callers must use this function on both the write path
// and the read path so the serialization can never diverge.
func DeriveTaskAddress(tag string, creator Identity, seq uint64) Address {
	return deriveFromSegments([]byte(tag), creator[:], []byte(strconv.FormatUint(seq, 10)))
}

// deriveFromSegments hashes length-framed segments so that no two distinct
// segment lists can produce the same input stream. Each segment is written as
// uvarint(len) || bytes.
func deriveFromSegments(segments ...[]byte) Address {
	h := sha256.New()
	var frame [binary.MaxVarintLen64]byte
	for _, seg := range segments {
		n := binary.PutUvarint(frame[:], uint64(len(seg)))
		h.Write(frame[:n])
		h.Write(seg)
	}
	var a Address
	copy(a[:], h.Sum(nil))
	return a
}

// UserProfileAddress is shorthand for the profile record address of an
// identity.
func UserProfileAddress(owner Identity) Address {
	return DeriveAddress(TagUserProfile, owner)
}

// TaskAddress is shorthand for the task record address of a (creator, id)
// pair.
func TaskAddress(creator Identity, id uint64) Address {
	return DeriveTaskAddress(TagTask, creator, id)
}

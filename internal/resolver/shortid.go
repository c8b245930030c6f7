// Package resolver turns short identity prefixes into full identities so CLI
// users do not have to paste 64-character hex strings.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/openpost/tradepost/pkg/ledger"
	"github.com/openpost/tradepost/pkg/market"
)

// MinPrefixLength is the minimum required length for identity prefixes.
// Set to 6 characters to balance usability with collision avoidance.
const MinPrefixLength = 6

// ResolveIdentity resolves a hex prefix to a full identity. Returns the
// identity if exactly one initialized user matches.
//
// Three cases:
//  1. Input is a full 64-character identity - parsed and returned as-is
//  2. Input is too short (< MinPrefixLength) - validation error
//  3. Input is a prefix - matched against the instance's identity index
func ResolveIdentity(ctx context.Context, l *ledger.Client, prefix string) (market.Identity, error) {
	prefix = strings.ToLower(prefix)

	// A full identity needs no index lookup
	if len(prefix) == 64 {
		id, err := market.ParseIdentity(prefix)
		if err != nil {
			return market.Identity{}, fmt.Errorf("invalid identity: %w", err)
		}
		return id, nil
	}

	if len(prefix) < MinPrefixLength {
		return market.Identity{}, fmt.Errorf("identity prefix must be at least %d characters (got %d)", MinPrefixLength, len(prefix))
	}

	known, err := l.KnownIdentities(ctx)
	if err != nil {
		return market.Identity{}, fmt.Errorf("failed to search for identity: %w", err)
	}

	var matches []market.Identity
	for _, id := range known {
		if strings.HasPrefix(id.String(), prefix) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return market.Identity{}, &NotFoundError{Prefix: prefix}
	case 1:
		return matches[0], nil
	default:
		return market.Identity{}, &AmbiguousError{Prefix: prefix, Matches: matches}
	}
}

// NotFoundError indicates no initialized identity matched the prefix.
type NotFoundError struct {
	Prefix string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no identities found matching '%s'", e.Prefix)
}

// AmbiguousError indicates multiple identities matched the prefix.
type AmbiguousError struct {
	Prefix  string
	Matches []market.Identity
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous prefix '%s' matches %d identities", e.Prefix, len(e.Matches))
}

// FormatAmbiguousError creates a user-friendly message for ambiguous prefixes.
// Lists all matching identities (up to 10, then "...and N more").
func FormatAmbiguousError(err *AmbiguousError) string {
	msg := fmt.Sprintf("Error: ambiguous prefix '%s' matches %d identities:\n", err.Prefix, len(err.Matches))

	displayCount := len(err.Matches)
	if displayCount > 10 {
		displayCount = 10
	}

	for i := 0; i < displayCount; i++ {
		msg += fmt.Sprintf("  %s\n", err.Matches[i])
	}

	if len(err.Matches) > 10 {
		msg += fmt.Sprintf("  ...and %d more\n", len(err.Matches)-10)
	}

	msg += "\nUse a longer prefix to uniquely identify the user."
	return msg
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// IsAmbiguousError checks if an error is an AmbiguousError.
func IsAmbiguousError(err error) bool {
	_, ok := err.(*AmbiguousError)
	return ok
}

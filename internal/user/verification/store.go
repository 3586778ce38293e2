// Package verification implements the TTL-bound, single-redeem token store
// behind the email verification flow. An entry is Active until it is either
// redeemed (consumed, exactly once) or its TTL elapses; neither state ever
// resolves to a principal again, and a token string is never reissued.
package verification

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is the verification token lifetime. The mail tells users to
// act within 15 minutes, so this is a product constant, not a tunable.
const DefaultTTL = 15 * time.Minute

var (
	// ErrNotFound reports a token that was never issued, already redeemed,
	// or expired. Callers cannot and must not distinguish the three.
	ErrNotFound = errors.New("verification: token not found")

	// ErrTimeout reports a backing-store deadline. Transient: the caller
	// may retry. It never means the token itself is invalid.
	ErrTimeout = errors.New("verification: store timeout")
)

// Store maps random opaque tokens to principal ids for one-time redemption.
type Store interface {
	// Put generates a cryptographically random opaque token, stores the
	// mapping with an absolute expiry of now+ttl, and returns the raw
	// token. Only its fingerprint is stored.
	Put(ctx context.Context, principalID string, ttl time.Duration) (string, error)

	// Redeem atomically looks up and deletes the entry. Two concurrent
	// redemptions of the same token resolve to exactly one winner; the
	// loser observes ErrNotFound. Entries past expiry are treated as
	// absent even if not yet physically deleted.
	Redeem(ctx context.Context, token string) (string, error)

	// Invalidate deletes the entry early (operator-forced). Deleting an
	// absent entry is not an error.
	Invalidate(ctx context.Context, token string) error
}

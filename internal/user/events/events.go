// Package events publishes domain events onto the mesh event bus. Delivery
// is at-least-once: events are published after the owning transaction
// commits, and consumers must tolerate duplicates.
package events

import (
	"context"

	"github.com/aussiebroadwan/meshauth/internal/user/domain"
)

// StreamUserRegistered is the bus stream carrying registration events.
const StreamUserRegistered = "user.registered"

// Publisher emits domain events to downstream consumers.
type Publisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
}

// NopPublisher discards every event. Used in tests and when the event bus
// is not configured.
type NopPublisher struct{}

var _ Publisher = NopPublisher{}

func (NopPublisher) PublishUserRegistered(context.Context, domain.UserRegisteredEvent) error {
	return nil
}

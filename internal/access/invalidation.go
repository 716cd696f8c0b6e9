package access

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/property-hub/internal/core/events"
)

// Subscriber is the subscribe side of the event bus.
type Subscriber interface {
	Subscribe(eventType string, handler events.Handler)
}

// RegisterInvalidation evicts cached profiles whenever an identity mutation
// is published. User-scoped events evict one subject; workstream status
// changes affect every holder of a grant and flush the cache.
func RegisterInvalidation(bus Subscriber, cache *ProfileCache, logger *slog.Logger) {
	evictUser := func(ctx context.Context, event events.Event) error {
		e, ok := event.(*events.UserAccessChangedEvent)
		if !ok {
			cache.Flush()
			return fmt.Errorf("unexpected payload %T for %s, cache flushed", event, event.EventType())
		}
		cache.Evict(e.UserID)
		logger.Debug("profile evicted",
			"user_id", e.UserID,
			"event_type", event.EventType())
		return nil
	}

	bus.Subscribe(events.EventTypeGrantChanged, evictUser)
	bus.Subscribe(events.EventTypeUserStatusChanged, evictUser)
	bus.Subscribe(events.EventTypeRoleAssigned, evictUser)
	bus.Subscribe(events.EventTypeWorkstreamStatusChanged, func(ctx context.Context, event events.Event) error {
		cache.Flush()
		logger.Debug("profile cache flushed", "event_type", event.EventType())
		return nil
	})
}

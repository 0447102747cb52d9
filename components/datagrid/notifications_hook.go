package datagrid

import (
	"context"
	"slices"
)

// NotificationsClient defines the minimal interface needed from a
// notification service.
type NotificationsClient interface {
	PublishGridEvent(ctx context.Context, channel string, event GridEvent) error
}

// NotificationsHook forwards grid events to an external notifications client.
type NotificationsHook struct {
	Client  NotificationsClient
	Channel string
	// Reasons limits forwarding to these event reasons. Empty forwards all.
	Reasons []string
}

// GridUpdated publishes events to the configured notifications client.
func (h *NotificationsHook) GridUpdated(ctx context.Context, event GridEvent) error {
	if h == nil || h.Client == nil {
		return nil
	}
	if len(h.Reasons) > 0 && !slices.Contains(h.Reasons, event.Reason) {
		return nil
	}
	return h.Client.PublishGridEvent(ctx, h.Channel, event)
}

// MultiHook fans an event out to several hooks, stopping at the first error.
type MultiHook []RefreshHook

// GridUpdated calls each hook in order.
func (m MultiHook) GridUpdated(ctx context.Context, event GridEvent) error {
	for _, h := range m {
		if h == nil {
			continue
		}
		if err := h.GridUpdated(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

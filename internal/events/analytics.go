package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/posthog/posthog-go"
)

// AnalyticsHandler forwards events to PostHog.
type AnalyticsHandler struct {
	posthogClient posthog.Client
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(posthogClient posthog.Client) *AnalyticsHandler {
	return &AnalyticsHandler{posthogClient: posthogClient}
}

// HandleEvent handles the event creation.
func (h *AnalyticsHandler) HandleEvent(_ context.Context, event Event) error {
	properties := posthog.NewProperties()
	for key, value := range event.Payload {
		properties.Set(key, value)
	}

	slog.Debug("sending event to PostHog", "event_type", event.Type, "distinct_id", event.DistinctID)

	return h.posthogClient.Enqueue(posthog.Capture{
		DistinctId: event.DistinctID,
		Event:      string(event.Type),
		Timestamp:  time.Now(),
		Properties: properties,
	})
}

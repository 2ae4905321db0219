package events

import (
	"context"
	"log/slog"

	"github.com/posthog/posthog-go"
	"github.com/sql-trainer/backend/internal/workers"
)

// EventService fans product events out to its handlers off the request
// path. Grading itself never waits on analytics.
type EventService struct {
	handlers []EventHandler
}

// NewEventService creates a new EventService. A nil PostHog client leaves
// analytics disabled.
func NewEventService(posthogClient posthog.Client) *EventService {
	var handlers []EventHandler
	if posthogClient != nil {
		handlers = append(handlers, NewAnalyticsHandler(posthogClient))
	}

	return &EventService{handlers: handlers}
}

// Event is the event to be triggered.
type Event struct {
	Type EventType

	// DistinctID identifies the client, usually its User-Agent.
	DistinctID string

	Payload map[string]any
}

// EventHandler is the handler for the event.
//
// You can think it as the callback of the event.
type EventHandler interface {
	HandleEvent(ctx context.Context, event Event) error
}

// TriggerEvent triggers an event.
func (s *EventService) TriggerEvent(ctx context.Context, event Event) {
	workers.Global.Go(func() {
		if err := s.triggerEvent(ctx, event); err != nil {
			slog.Error("failed to trigger event", "type", event.Type, "error", err)
		}
	})
}

// triggerEvent triggers an event synchronously.
func (s *EventService) triggerEvent(ctx context.Context, event Event) error {
	for _, handler := range s.handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			return err
		}
	}

	return nil
}

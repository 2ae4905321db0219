package events

import (
	"context"
	"sync"
	"testing"

	"github.com/sql-trainer/backend/internal/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []Event
}

func (h *recordingHandler) HandleEvent(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func TestEventService_TriggerEvent(t *testing.T) {
	handler := &recordingHandler{}
	service := &EventService{handlers: []EventHandler{handler}}

	service.TriggerEvent(t.Context(), Event{
		Type:       EventTypeGradeAnswer,
		DistinctID: "test-agent",
		Payload:    map[string]any{"slug": "hr", "question_id": 1, "verdict": "equivalent"},
	})
	workers.Global.Wait()

	handler.mu.Lock()
	defer handler.mu.Unlock()
	require.Len(t, handler.events, 1)
	assert.Equal(t, EventTypeGradeAnswer, handler.events[0].Type)
	assert.Equal(t, "test-agent", handler.events[0].DistinctID)
	assert.Equal(t, "hr", handler.events[0].Payload["slug"])
}

func TestNewEventService_NoAnalytics(t *testing.T) {
	service := NewEventService(nil)
	assert.Empty(t, service.handlers)

	// triggering without handlers is a no-op, not a panic
	service.TriggerEvent(t.Context(), Event{Type: EventTypeQuestionViewed})
	workers.Global.Wait()
}

package app

import (
	"context"
	"fmt"

	"github.com/example/warden/internal/ports/primary"
	"github.com/example/warden/internal/ports/secondary"
)

// EventServiceImpl implements the EventService interface.
type EventServiceImpl struct {
	eventRepo secondary.WorkflowEventRepository
}

// NewEventService creates a new EventService with injected dependencies.
func NewEventService(eventRepo secondary.WorkflowEventRepository) *EventServiceImpl {
	return &EventServiceImpl{eventRepo: eventRepo}
}

// ListEvents lists transition events matching the filters, newest first.
func (s *EventServiceImpl) ListEvents(ctx context.Context, filters primary.EventFilters) ([]*primary.WorkflowEvent, error) {
	records, err := s.eventRepo.List(ctx, secondary.WorkflowEventFilters{
		WorkflowID: filters.WorkflowID,
		Limit:      filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow events: %w", err)
	}

	events := make([]*primary.WorkflowEvent, len(records))
	for i, r := range records {
		events[i] = &primary.WorkflowEvent{
			ID:         r.ID,
			WorkflowID: r.WorkflowID,
			FromState:  r.FromState,
			ToState:    r.ToState,
			Detail:     r.Detail,
			CreatedAt:  r.CreatedAt,
		}
	}
	return events, nil
}

// Ensure EventServiceImpl implements the interface
var _ primary.EventService = (*EventServiceImpl)(nil)

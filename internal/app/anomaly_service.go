package app

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/example/warden/internal/core/status"
	"github.com/example/warden/internal/ports/primary"
	"github.com/example/warden/internal/ports/secondary"
)

// AnomalyServiceImpl implements the AnomalyService interface.
type AnomalyServiceImpl struct {
	anomalyRepo secondary.AnomalyRepository
}

// NewAnomalyService creates a new AnomalyService with injected dependencies.
func NewAnomalyService(anomalyRepo secondary.AnomalyRepository) *AnomalyServiceImpl {
	return &AnomalyServiceImpl{anomalyRepo: anomalyRepo}
}

// ListAnomalies lists anomaly events matching the filters, newest first.
func (s *AnomalyServiceImpl) ListAnomalies(ctx context.Context, filters primary.AnomalyFilters) ([]*primary.AnomalyEvent, error) {
	records, err := s.anomalyRepo.List(ctx, secondary.AnomalyEventFilters{
		WorkflowID: filters.WorkflowID,
		Since:      filters.Since,
		Until:      filters.Until,
		Limit:      filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list anomaly events: %w", err)
	}

	events := make([]*primary.AnomalyEvent, len(records))
	for i, r := range records {
		event, err := s.recordToEvent(r)
		if err != nil {
			return nil, err
		}
		events[i] = event
	}
	return events, nil
}

// GetAnomaly retrieves one anomaly event by ID.
func (s *AnomalyServiceImpl) GetAnomaly(ctx context.Context, id string) (*primary.AnomalyEvent, error) {
	record, err := s.anomalyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.recordToEvent(record)
}

func (s *AnomalyServiceImpl) recordToEvent(r *secondary.AnomalyEventRecord) (*primary.AnomalyEvent, error) {
	var anomalies []status.TaskAnomaly
	if r.AnomaliesJSON != "" {
		if err := json.Unmarshal([]byte(r.AnomaliesJSON), &anomalies); err != nil {
			return nil, fmt.Errorf("failed to decode anomalies for %s: %w", r.ID, err)
		}
	}
	return &primary.AnomalyEvent{
		ID:               r.ID,
		WorkflowID:       r.WorkflowID,
		Directory:        r.Directory,
		ConsecutivePolls: r.ConsecutivePolls,
		Anomalies:        anomalies,
		CapturedAt:       r.CapturedAt,
	}, nil
}

// Ensure AnomalyServiceImpl implements the interface
var _ primary.AnomalyService = (*AnomalyServiceImpl)(nil)

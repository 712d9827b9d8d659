package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fittrack/apiserver/internal/mq"
	"github.com/fittrack/apiserver/types"
	"github.com/google/uuid"
)

// FitnessRepository defines persistence operations for fitness records.
type FitnessRepository interface {
	Create(ctx context.Context, data types.FitnessData) (types.FitnessData, error)
	Get(ctx context.Context, id uuid.UUID) (types.FitnessData, error)
}

// FitnessService records activity for authenticated users.
type FitnessService struct {
	repo   FitnessRepository
	events EventPublisher
	logger *slog.Logger
}

// NewFitnessService constructs a FitnessService. events may be nil.
func NewFitnessService(repo FitnessRepository, events EventPublisher, logger *slog.Logger) *FitnessService {
	return &FitnessService{repo: repo, events: events, logger: logger}
}

// Record stores a fitness row. Date is truncated to the microsecond precision
// of the database column so the returned row matches what is read back. The
// store rejects rows whose user does not exist with store.ErrInvalidReference.
func (s *FitnessService) Record(ctx context.Context, data types.FitnessData) (types.FitnessData, error) {
	data.Date = data.Date.Truncate(time.Microsecond)

	created, err := s.repo.Create(ctx, data)
	if err != nil {
		return types.FitnessData{}, fmt.Errorf("record fitness data: %w", err)
	}

	publishEvent(ctx, s.events, s.logger, mq.ChannelFitnessRecorded, created)
	return created, nil
}

func (s *FitnessService) Get(ctx context.Context, id uuid.UUID) (types.FitnessData, error) {
	return s.repo.Get(ctx, id)
}

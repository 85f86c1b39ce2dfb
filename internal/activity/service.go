package activity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/stagiaire-management/internal/core/events"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// RepositoryAPI is implemented by the SQL and the MongoDB stores.
type RepositoryAPI interface {
	// Record stores a; recording the same event id twice is a no-op.
	Record(ctx context.Context, a *Activity) error
	Recent(ctx context.Context, limit int) ([]*Activity, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Subscribe makes the service record every domain event published on bus.
func (s *Service) Subscribe(bus *events.EventBus) {
	bus.SubscribeAll(s.HandleEvent)
}

func (s *Service) HandleEvent(ctx context.Context, e events.Event) error {
	a := FromEvent(e)
	if err := s.repo.Record(ctx, a); err != nil {
		return fmt.Errorf("failed to record activity %s: %w", a.ID, err)
	}
	s.logger.Debug("activity recorded", "event_type", a.Type, "event_id", a.ID)
	return nil
}

// Recent returns the newest activities first.
func (s *Service) Recent(ctx context.Context, limit int) ([]*Activity, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	activities, err := s.repo.Recent(ctx, limit)
	if err != nil {
		s.logger.Error("failed to load activities", "error", err)
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	if activities == nil {
		activities = []*Activity{}
	}
	return activities, nil
}

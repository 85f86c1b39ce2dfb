package mission

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/stagiaire-management/internal"
	missionDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/mission"
	"github.com/frahmantamala/stagiaire-management/internal/core/events"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*missionDatamodel.Mission, int64, error)
	GetByID(ctx context.Context, id int64) (*missionDatamodel.Mission, error)
	// StagiaireIDs returns the assigned stagiaire ids per mission id.
	StagiaireIDs(ctx context.Context, missionIDs []int64) (map[int64][]int64, error)
	Create(ctx context.Context, m *missionDatamodel.Mission, stagiaireIDs []int64) error
	// Update saves m; a nil stagiaireIDs keeps the current assignments.
	Update(ctx context.Context, m *missionDatamodel.Mission, stagiaireIDs []int64) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// StagiaireChecker reports which stagiaire ids do not exist.
type StagiaireChecker interface {
	MissingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type Service struct {
	repo       RepositoryAPI
	stagiaires StagiaireChecker
	publisher  events.Publisher
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, stagiaires StagiaireChecker, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:       repo,
		stagiaires: stagiaires,
		publisher:  publisher,
		logger:     logger,
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Mission, int64, error) {
	if filter.Status != "" && !IsValidStatus(filter.Status) {
		return nil, 0, internal.NewValidationFieldError("status", "status must be one of: not_started, in_progress, completed", internal.ErrCodeInvalidStatus)
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list missions", "error", err)
		return nil, 0, fmt.Errorf("failed to list missions: %w", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	assignments, err := s.repo.StagiaireIDs(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load mission assignments: %w", err)
	}

	result := make([]*Mission, 0, len(rows))
	for _, row := range rows {
		result = append(result, FromDataModel(row, assignments[row.ID]))
	}
	return result, total, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Mission, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get mission: %w", err)
	}
	if row == nil {
		return nil, internal.ErrMissionNotFound
	}

	assignments, err := s.repo.StagiaireIDs(ctx, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("failed to load mission assignments: %w", err)
	}
	return FromDataModel(row, assignments[id]), nil
}

func (s *Service) Create(ctx context.Context, dto CreateMissionDTO) (*Mission, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	stagiaireIDs := uniqueIDs(dto.Stagiaires)
	if err := s.ensureStagiaires(ctx, stagiaireIDs); err != nil {
		return nil, err
	}

	now := time.Now()
	m := &Mission{
		Title:       strings.TrimSpace(dto.Title),
		Description: strings.TrimSpace(dto.Description),
		Department:  strings.TrimSpace(dto.Department),
		Status:      StatusNotStarted,
		Stagiaires:  stagiaireIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	switch {
	case dto.Progress != nil:
		m.SetProgress(*dto.Progress)
	case dto.Status != "":
		m.Status = dto.Status
	}

	row := ToDataModel(m)
	if err := s.repo.Create(ctx, row, stagiaireIDs); err != nil {
		s.logger.Error("failed to create mission", "title", m.Title, "error", err)
		return nil, fmt.Errorf("failed to create mission: %w", err)
	}
	m = FromDataModel(row, stagiaireIDs)

	s.logger.Info("mission created", "mission_id", m.ID, "stagiaires", len(stagiaireIDs))
	s.publish(ctx, events.MissionEvent(events.EventTypeMissionCreated, m.ID, internal.UserIDFromContext(ctx), m.Title))
	return m, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateMissionDTO) (*Mission, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	m, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var stagiaireIDs []int64
	if dto.Stagiaires != nil {
		stagiaireIDs = uniqueIDs(*dto.Stagiaires)
		if err := s.ensureStagiaires(ctx, stagiaireIDs); err != nil {
			return nil, err
		}
		m.Stagiaires = stagiaireIDs
	}

	previous := m.Status
	dto.Apply(m)
	if err := s.save(ctx, m, stagiaireIDs); err != nil {
		return nil, err
	}

	s.logger.Info("mission updated", "mission_id", id)
	s.publishUpdate(ctx, m, previous)
	return m, nil
}

// UpdateProgress sets only the progress, deriving the status from it.
func (s *Service) UpdateProgress(ctx context.Context, id int64, dto UpdateProgressDTO) (*Mission, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	m, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := m.Status
	m.SetProgress(*dto.Progress)
	if err := s.save(ctx, m, nil); err != nil {
		return nil, err
	}

	s.logger.Info("mission progress updated", "mission_id", id, "progress", m.Progress, "status", m.Status)
	s.publishUpdate(ctx, m, previous)
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete mission", "mission_id", id, "error", err)
		return fmt.Errorf("failed to delete mission: %w", err)
	}
	if !found {
		return internal.ErrMissionNotFound
	}

	s.logger.Info("mission deleted", "mission_id", id)
	s.publish(ctx, events.MissionEvent(events.EventTypeMissionDeleted, id, internal.UserIDFromContext(ctx), m.Title))
	return nil
}

func (s *Service) ensureStagiaires(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	missing, err := s.stagiaires.MissingIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}

	parts := make([]string, len(missing))
	for i, id := range missing {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return internal.NewValidationFieldError("stagiaires", "unknown stagiaire ids: "+strings.Join(parts, ", "), internal.ErrCodeUnknownReference)
}

func (s *Service) save(ctx context.Context, m *Mission, stagiaireIDs []int64) error {
	m.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, ToDataModel(m), stagiaireIDs); err != nil {
		s.logger.Error("failed to update mission", "mission_id", m.ID, "error", err)
		return fmt.Errorf("failed to update mission: %w", err)
	}
	return nil
}

func (s *Service) publishUpdate(ctx context.Context, m *Mission, previousStatus string) {
	userID := internal.UserIDFromContext(ctx)
	s.publish(ctx, events.MissionEvent(events.EventTypeMissionUpdated, m.ID, userID, m.Title))
	if m.Status == StatusCompleted && previousStatus != StatusCompleted {
		s.publish(ctx, events.MissionEvent(events.EventTypeMissionCompleted, m.ID, userID, m.Title))
	}
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}

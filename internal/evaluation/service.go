package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/stagiaire-management/internal"
	evaluationDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/evaluation"
	"github.com/frahmantamala/stagiaire-management/internal/core/events"
	"github.com/frahmantamala/stagiaire-management/internal/stagiaire"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*evaluationDatamodel.Evaluation, int64, error)
	GetByID(ctx context.Context, id int64) (*evaluationDatamodel.Evaluation, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, e *evaluationDatamodel.Evaluation) error
	Update(ctx context.Context, e *evaluationDatamodel.Evaluation) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// StagiaireDirectory resolves the stagiaires evaluations point at.
type StagiaireDirectory interface {
	GetByID(ctx context.Context, id int64) (*stagiaire.Stagiaire, error)
	MissingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type Service struct {
	repo       RepositoryAPI
	stagiaires StagiaireDirectory
	publisher  events.Publisher
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, stagiaires StagiaireDirectory, publisher events.Publisher, logger *slog.Logger) *Service {
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

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Evaluation, int64, error) {
	if filter.Status != "" && !IsValidStatus(filter.Status) {
		return nil, 0, internal.NewValidationFieldError("status", "status must be one of: draft, reviewed", internal.ErrCodeInvalidStatus)
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list evaluations", "error", err)
		return nil, 0, fmt.Errorf("failed to list evaluations: %w", err)
	}

	result := make([]*Evaluation, 0, len(rows))
	for _, row := range rows {
		result = append(result, FromDataModel(row))
	}
	return result, total, nil
}

// ListByStagiaire returns the evaluations of one stagiaire, newest first.
func (s *Service) ListByStagiaire(ctx context.Context, stagiaireID int64, limit, offset int) ([]*Evaluation, int64, error) {
	if _, err := s.stagiaires.GetByID(ctx, stagiaireID); err != nil {
		return nil, 0, err
	}
	return s.List(ctx, ListFilter{StagiaireID: stagiaireID, Order: OrderDesc, Limit: limit, Offset: offset})
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Evaluation, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	if row == nil {
		return nil, internal.ErrEvaluationNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateEvaluationDTO) (*Evaluation, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureStagiaire(ctx, dto.StagiaireID); err != nil {
		return nil, err
	}

	evaluatorID := internal.UserIDFromContext(ctx)
	if dto.EvaluatorID != nil {
		evaluatorID = *dto.EvaluatorID
		if err := s.ensureEvaluator(ctx, evaluatorID); err != nil {
			return nil, err
		}
	}
	if evaluatorID == 0 {
		return nil, internal.NewValidationFieldError("evaluatorId", "evaluatorId is required", internal.ErrCodeValidationFailed)
	}

	now := time.Now()
	e := &Evaluation{
		StagiaireID:     dto.StagiaireID,
		EvaluatorID:     evaluatorID,
		TechnicalSkills: *dto.TechnicalSkills,
		Communication:   *dto.Communication,
		Teamwork:        *dto.Teamwork,
		Initiative:      *dto.Initiative,
		Comment:         strings.TrimSpace(dto.Comment),
		Status:          StatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	e.Recompute()

	row := ToDataModel(e)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create evaluation", "stagiaire_id", dto.StagiaireID, "error", err)
		return nil, fmt.Errorf("failed to create evaluation: %w", err)
	}
	e = FromDataModel(row)

	s.logger.Info("evaluation created", "evaluation_id", e.ID, "stagiaire_id", e.StagiaireID, "average_score", e.AverageScore)
	s.publish(ctx, events.EvaluationEvent(events.EventTypeEvaluationCreated, e.ID, internal.UserIDFromContext(ctx), e.StagiaireID))
	return e, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateEvaluationDTO) (*Evaluation, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dto.Apply(e)
	if err := s.save(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("evaluation updated", "evaluation_id", id, "scores_changed", dto.ChangesScores())
	s.publish(ctx, events.EvaluationEvent(events.EventTypeEvaluationUpdated, e.ID, internal.UserIDFromContext(ctx), e.StagiaireID))
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete evaluation", "evaluation_id", id, "error", err)
		return fmt.Errorf("failed to delete evaluation: %w", err)
	}
	if !found {
		return internal.ErrEvaluationNotFound
	}

	s.logger.Info("evaluation deleted", "evaluation_id", id)
	s.publish(ctx, events.EvaluationEvent(events.EventTypeEvaluationDeleted, id, internal.UserIDFromContext(ctx), e.StagiaireID))
	return nil
}

// Review moves a draft evaluation to reviewed. Only admins and encadrants may review.
func (s *Service) Review(ctx context.Context, id int64) (*Evaluation, error) {
	u, ok := internal.UserFromContext(ctx)
	if !ok || !u.HasRole(internal.RoleAdmin, internal.RoleEncadrant) {
		return nil, internal.ErrInsufficientRole
	}

	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.IsReviewed() {
		return nil, internal.ErrAlreadyReviewed
	}

	now := time.Now()
	e.Status = StatusReviewed
	e.ReviewedAt = &now
	if err := s.save(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("evaluation reviewed", "evaluation_id", id, "reviewer_id", u.ID)
	s.publish(ctx, events.EvaluationEvent(events.EventTypeEvaluationReviewed, e.ID, u.ID, e.StagiaireID))
	return e, nil
}

// Report loads an evaluation together with the stagiaire it belongs to.
func (s *Service) Report(ctx context.Context, id int64) (*Evaluation, *stagiaire.Stagiaire, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	st, err := s.stagiaires.GetByID(ctx, e.StagiaireID)
	if err != nil {
		return nil, nil, err
	}
	return e, st, nil
}

func (s *Service) ensureStagiaire(ctx context.Context, stagiaireID int64) error {
	missing, err := s.stagiaires.MissingIDs(ctx, []int64{stagiaireID})
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return internal.NewValidationFieldError("stagiaireId", fmt.Sprintf("stagiaire %d does not exist", stagiaireID), internal.ErrCodeUnknownReference)
	}
	return nil
}

func (s *Service) ensureEvaluator(ctx context.Context, evaluatorID int64) error {
	exists, err := s.repo.UserExists(ctx, evaluatorID)
	if err != nil {
		return fmt.Errorf("failed to check evaluator: %w", err)
	}
	if !exists {
		return internal.NewValidationFieldError("evaluatorId", fmt.Sprintf("user %d does not exist", evaluatorID), internal.ErrCodeUnknownReference)
	}
	return nil
}

func (s *Service) save(ctx context.Context, e *Evaluation) error {
	e.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, ToDataModel(e)); err != nil {
		s.logger.Error("failed to update evaluation", "evaluation_id", e.ID, "error", err)
		return fmt.Errorf("failed to update evaluation: %w", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}

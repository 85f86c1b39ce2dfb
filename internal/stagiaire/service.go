package stagiaire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/frahmantamala/stagiaire-management/internal"
	stagiaireDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/stagiaire"
	"github.com/frahmantamala/stagiaire-management/internal/core/events"
	"gorm.io/gorm"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*stagiaireDatamodel.Stagiaire, int64, error)
	GetByID(ctx context.Context, id int64) (*stagiaireDatamodel.Stagiaire, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
	Create(ctx context.Context, s *stagiaireDatamodel.Stagiaire) error
	Update(ctx context.Context, s *stagiaireDatamodel.Stagiaire) error
	// Delete removes the stagiaire with its mission assignments and evaluations.
	Delete(ctx context.Context, id int64) (bool, error)
}

// MediaStore uploads avatar images and returns their public URL.
type MediaStore interface {
	UploadAvatar(ctx context.Context, key string, file io.Reader) (string, error)
}

type Service struct {
	repo      RepositoryAPI
	media     MediaStore
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, media MediaStore, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		media:     media,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Stagiaire, int64, error) {
	if filter.Status != "" && !IsValidStatus(filter.Status) {
		return nil, 0, internal.NewValidationFieldError("status", "status must be one of: active, completed, upcoming", internal.ErrCodeInvalidStatus)
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list stagiaires", "error", err)
		return nil, 0, fmt.Errorf("failed to list stagiaires: %w", err)
	}

	result := make([]*Stagiaire, 0, len(rows))
	for _, row := range rows {
		result = append(result, FromDataModel(row))
	}
	return result, total, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Stagiaire, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get stagiaire: %w", err)
	}
	if row == nil {
		return nil, internal.ErrStagiaireNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateStagiaireDTO) (*Stagiaire, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	email := normalizeEmail(dto.Email)
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	status := dto.Status
	if status == "" {
		status = StatusActive
	}

	now := time.Now()
	st := &Stagiaire{
		Nom:           strings.TrimSpace(dto.Nom),
		Prenom:        strings.TrimSpace(dto.Prenom),
		Email:         email,
		Telephone:     strings.TrimSpace(dto.Telephone),
		Etablissement: strings.TrimSpace(dto.Etablissement),
		Formation:     strings.TrimSpace(dto.Formation),
		Intitule:      strings.TrimSpace(dto.Intitule),
		Status:        status,
		DateDebut:     strings.TrimSpace(dto.DateDebut),
		DateFin:       strings.TrimSpace(dto.DateFin),
		Avatar:        dto.Avatar,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	row := ToDataModel(st)
	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, internal.ErrDuplicateEmail
		}
		s.logger.Error("failed to create stagiaire", "email", email, "error", err)
		return nil, fmt.Errorf("failed to create stagiaire: %w", err)
	}
	st = FromDataModel(row)

	s.logger.Info("stagiaire created", "stagiaire_id", st.ID)
	s.publish(ctx, events.StagiaireEvent(events.EventTypeStagiaireCreated, st.ID, internal.UserIDFromContext(ctx), st.FullName()))
	return st, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateStagiaireDTO) (*Stagiaire, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	st, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Email != nil {
		if email := normalizeEmail(*dto.Email); email != st.Email {
			if err := s.ensureEmailFree(ctx, email, id); err != nil {
				return nil, err
			}
		}
	}

	dto.Apply(st)
	if err := s.save(ctx, st); err != nil {
		return nil, err
	}

	s.logger.Info("stagiaire updated", "stagiaire_id", id)
	s.publish(ctx, events.StagiaireEvent(events.EventTypeStagiaireUpdated, st.ID, internal.UserIDFromContext(ctx), st.FullName()))
	return st, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	st, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete stagiaire", "stagiaire_id", id, "error", err)
		return fmt.Errorf("failed to delete stagiaire: %w", err)
	}
	if !found {
		return internal.ErrStagiaireNotFound
	}

	s.logger.Info("stagiaire deleted", "stagiaire_id", id)
	s.publish(ctx, events.StagiaireEvent(events.EventTypeStagiaireDeleted, id, internal.UserIDFromContext(ctx), st.FullName()))
	return nil
}

// UploadAvatar stores the image in the media store and records its URL on the stagiaire.
func (s *Service) UploadAvatar(ctx context.Context, id int64, filename string, file io.Reader) (*Stagiaire, error) {
	if s.media == nil {
		return nil, internal.ErrMediaStoreDisabled
	}

	st, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("stagiaire-%d-%d%s", id, time.Now().Unix(), strings.ToLower(path.Ext(filename)))
	url, err := s.media.UploadAvatar(ctx, key, file)
	if err != nil {
		s.logger.Error("avatar upload failed", "stagiaire_id", id, "error", err)
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	st.Avatar = &url
	if err := s.save(ctx, st); err != nil {
		return nil, err
	}

	s.logger.Info("stagiaire avatar updated", "stagiaire_id", id)
	s.publish(ctx, events.StagiaireEvent(events.EventTypeStagiaireUpdated, st.ID, internal.UserIDFromContext(ctx), st.FullName()))
	return st, nil
}

// MissingIDs returns the ids in ids that match no stagiaire, preserving order and
// dropping duplicates.
func (s *Service) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	existing, err := s.repo.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to check stagiaires: %w", err)
	}

	found := make(map[int64]bool, len(existing))
	for _, id := range existing {
		found[id] = true
	}

	var missing []int64
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !found[id] && !seen[id] {
			missing = append(missing, id)
		}
		seen[id] = true
	}
	return missing, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, excludeID int64) error {
	taken, err := s.repo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return internal.ErrDuplicateEmail
	}
	return nil
}

func (s *Service) save(ctx context.Context, st *Stagiaire) error {
	st.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, ToDataModel(st)); err != nil {
		// email is the only unique column
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.ErrDuplicateEmail
		}
		s.logger.Error("failed to update stagiaire", "stagiaire_id", st.ID, "error", err)
		return fmt.Errorf("failed to update stagiaire: %w", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/stagiaire-management/internal"
	"github.com/frahmantamala/stagiaire-management/internal/core/events"
	userDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByLogin(ctx context.Context, login string) (*userDatamodel.User, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Update(ctx context.Context, u *userDatamodel.User) error
	Delete(ctx context.Context, id int64) (bool, error)
	HasEvaluations(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo       RepositoryAPI
	publisher  events.Publisher
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, bcryptCost int, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:       repo,
		publisher:  publisher,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, dto UpdateProfileDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*dto.Email))
		if email != u.Email {
			taken, err := s.repo.ExistsByEmail(ctx, email, id)
			if err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if taken {
				return nil, internal.ErrDuplicateEmail
			}
			u.Email = email
		}
	}
	if dto.Nom != nil {
		u.Nom = strings.TrimSpace(*dto.Nom)
	}
	if dto.Prenom != nil {
		u.Prenom = strings.TrimSpace(*dto.Prenom)
	}
	if dto.Department != nil {
		u.Department = strings.TrimSpace(*dto.Department)
	}

	if err := s.save(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user profile updated", "user_id", id)
	s.publish(ctx, events.UserEvent(events.EventTypeUserUpdated, u.ID, id, u.Username))
	return u, nil
}

func (s *Service) UpdatePreferences(ctx context.Context, id int64, dto UpdatePreferencesDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Theme != nil {
		u.Preferences.Theme = *dto.Theme
	}
	if dto.Brightness != nil {
		u.Preferences.Brightness = *dto.Brightness
	}

	if err := s.save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, id int64, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := VerifyPassword(u.PasswordHash, dto.CurrentPassword); err != nil {
		s.logger.Warn("password change rejected: wrong current password", "user_id", id)
		return internal.NewValidationFieldError("currentPassword", "current password is incorrect", internal.ErrCodeInvalidCredentials)
	}

	hash, err := HashPassword(dto.NewPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = hash

	if err := s.save(ctx, u); err != nil {
		return err
	}

	s.logger.Info("user password changed", "user_id", id)
	return nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, error) {
	rows, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row))
	}
	return users, nil
}

// ChangeRole sets the role of user id. Admins cannot change their own role.
func (s *Service) ChangeRole(ctx context.Context, actorID, id int64, dto ChangeRoleDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if actorID == id {
		return nil, internal.NewValidationFieldError("role", "you cannot change your own role", internal.ErrCodeValidationFailed)
	}

	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := u.Role
	u.Role = dto.Role
	if err := s.save(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user role changed", "user_id", id, "actor_id", actorID, "from", previous, "to", dto.Role)
	s.publish(ctx, events.UserEvent(events.EventTypeUserUpdated, u.ID, actorID, u.Username))
	return u, nil
}

func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return internal.NewValidationError("you cannot delete your own account", internal.ErrCodeValidationFailed)
	}

	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// evaluations keep their evaluator; the account must stay until they are removed
	referenced, err := s.repo.HasEvaluations(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check user evaluations: %w", err)
	}
	if referenced {
		s.logger.Warn("user delete rejected: evaluator of existing evaluations", "user_id", id, "actor_id", actorID)
		return internal.ErrUserHasEvaluations
	}

	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return internal.ErrUserHasEvaluations
		}
		s.logger.Error("failed to delete user", "user_id", id, "error", err)
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if !found {
		return internal.ErrUserNotFound
	}

	s.logger.Info("user deleted", "user_id", id, "actor_id", actorID)
	s.publish(ctx, events.UserEvent(events.EventTypeUserDeleted, id, actorID, u.Username))
	return nil
}

func (s *Service) save(ctx context.Context, u *User) error {
	u.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, ToDataModel(u)); err != nil {
		// email is the only unique column a save can change
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.ErrDuplicateEmail
		}
		s.logger.Error("failed to update user", "user_id", u.ID, "error", err)
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}

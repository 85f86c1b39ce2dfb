package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/stagiaire-management/internal"
	userDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/user"
	"github.com/frahmantamala/stagiaire-management/internal/core/events"
	"github.com/frahmantamala/stagiaire-management/internal/user"
	"gorm.io/gorm"
)

// RepositoryAPI is the slice of the user store that authentication needs.
type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByLogin(ctx context.Context, login string) (*userDatamodel.User, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, u *userDatamodel.User) error
}

// Service is the main auth service with dependencies
type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGeneratorAPI
	publisher      events.Publisher
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(repo RepositoryAPI, tokenGen TokenGeneratorAPI, publisher events.Publisher, bcryptCost int, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		publisher:      publisher,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Register creates a plain user account and signs it in. The role is always "user".
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(dto.Username)
	email := strings.ToLower(strings.TrimSpace(dto.Email))

	taken, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, internal.ErrDuplicateUsername
	}

	taken, err = s.repo.ExistsByEmail(ctx, email, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, internal.ErrDuplicateEmail
	}

	hash, err := user.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := user.NewUser(username, email, hash)
	u.Nom = strings.TrimSpace(dto.Nom)
	u.Prenom = strings.TrimSpace(dto.Prenom)
	u.Department = strings.TrimSpace(dto.Department)

	row := user.ToDataModel(u)
	if err := s.repo.Create(ctx, row); err != nil {
		// another registration claimed the username or email after the checks above
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Warn("registration lost a uniqueness race", "username", username)
			if taken, _ := s.repo.ExistsByUsername(ctx, username); taken {
				return nil, internal.ErrDuplicateUsername
			}
			return nil, internal.ErrDuplicateEmail
		}
		s.logger.Error("failed to create user", "username", username, "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	u = user.FromDataModel(row)

	s.logger.Info("user registered", "user_id", u.ID, "username", u.Username)
	if err := s.publisher.Publish(ctx, events.UserEvent(events.EventTypeUserCreated, u.ID, u.ID, u.Username)); err != nil {
		s.logger.Warn("failed to publish event", "error", err)
	}

	return s.issue(u)
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByLogin(ctx, dto.Login())
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if row == nil {
		s.logger.Warn("login failed: unknown user", "login", dto.Login())
		return nil, internal.ErrInvalidCredentials
	}

	u := user.FromDataModel(row)
	if err := user.VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login failed: wrong password", "user_id", u.ID)
		return nil, internal.ErrInvalidCredentials
	}
	if !u.IsActiveUser() {
		return nil, internal.ErrUserInactive
	}

	s.logger.Info("user logged in", "user_id", u.ID)
	return s.issue(u)
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	u, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	resp, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	return &resp.AuthTokens, nil
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

// Authorize resolves an access token to the active user it was issued for.
func (s *Service) Authorize(ctx context.Context, tokenString string) (*internal.User, error) {
	claims, err := s.tokenGenerator.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}

	u, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return u.Principal(), nil
}

func (s *Service) activeUser(ctx context.Context, id int64) (*user.User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if row == nil {
		return nil, internal.ErrInvalidToken
	}
	u := user.FromDataModel(row)
	if !u.IsActiveUser() {
		return nil, internal.ErrUserInactive
	}
	return u, nil
}

func (s *Service) issue(u *user.User) (*LoginResponse, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(u)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(u)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AuthTokens: AuthTokens{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    s.tokenGenerator.AccessTTLSeconds(),
		},
		User: u,
	}, nil
}

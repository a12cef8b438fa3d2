package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-learn-api/internal/dto"
	"github.com/noah-isme/gema-learn-api/internal/models"
	"github.com/noah-isme/gema-learn-api/internal/repository"
)

var (
	// ErrUserNotFound indicates the account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrCannotDeleteSelf prevents an admin from removing their own account.
	ErrCannotDeleteSelf = errors.New("cannot delete your own account")
)

// UserService manages platform accounts for administrators.
type UserService interface {
	List(ctx context.Context, filter dto.UserFilter) ([]dto.UserResponse, error)
	Delete(ctx context.Context, id uint, payload dto.ConfirmationRequest, actor ActivityActor) error
}

type userService struct {
	users      repository.UserRepository
	dashboards DashboardInvalidator
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users repository.UserRepository, dashboards DashboardInvalidator, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		users:      users,
		dashboards: dashboards,
		validator:  validate,
		logger:     logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) List(ctx context.Context, filter dto.UserFilter) ([]dto.UserResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	repoFilter := repository.UserFilter{Search: strings.TrimSpace(filter.Search)}
	if filter.Role != nil {
		role := models.Role(*filter.Role)
		repoFilter.Role = &role
	}

	users, err := s.users.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponseSlice(users), nil
}

func (s *userService) Delete(ctx context.Context, id uint, payload dto.ConfirmationRequest, actor ActivityActor) error {
	if !payload.Confirm {
		return ErrConfirmationRequired
	}
	if !actor.Is(models.RoleAdmin) {
		return ErrForbidden
	}
	if id == actor.ID {
		return ErrCannotDeleteSelf
	}

	students, err := s.users.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	invalidateDashboards(ctx, s.dashboards, students)

	s.logger.Info().
		Uint("user_id", id).
		Uint("actor_id", actor.ID).
		Int("students_affected", len(students)).
		Msg("user deleted")
	return nil
}

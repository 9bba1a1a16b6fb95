// internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/sneakers-backend/internal/models"
	"github.com/javajoker/sneakers-backend/internal/repository"
	"github.com/javajoker/sneakers-backend/internal/utils"
)

type UserService struct {
	users repository.UserRepository
	items repository.ItemRepository
	log   *logrus.Entry
}

// UpdateProfileRequest edits the caller's own profile. Role and password are
// not part of it.
type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	LastName *string `json:"lastName" validate:"omitempty,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Location *string `json:"location" validate:"omitempty,max=255"`
}

type AppStats struct {
	Users int64 `json:"users"`
	Items int64 `json:"items"`
}

func NewUserService(repos *repository.Repositories) *UserService {
	return &UserService{
		users: repos.Users,
		items: repos.Items,
		log:   logrus.WithField("component", "users"),
	}
}

func (s *UserService) List(ctx context.Context, actor Principal, params utils.PaginationParams) ([]models.User, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, AuthorizationError("only admins can list users")
	}
	users, total, err := s.users.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, total, nil
}

// Stats counts registered users and shop listings.
func (s *UserService) Stats(ctx context.Context, actor Principal) (*AppStats, error) {
	if !actor.IsAdmin() {
		return nil, AuthorizationError("only admins can read application stats")
	}
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	items, err := s.items.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	return &AppStats{Users: users, Items: items}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, actor Principal, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, lookupError(err, "user")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ValidationError("name must not be empty")
		}
		user.Name = name
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Location != nil {
		user.Location = strings.TrimSpace(*req.Location)
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ConflictError("email %s is already registered", user.Email)
		}
		return nil, lookupError(err, "user")
	}
	s.log.WithField("user_id", user.ID).Info("Profile updated")
	return user, nil
}

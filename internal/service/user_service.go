package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"commercego/internal/auth"
	"commercego/internal/cache"
	apperrors "commercego/internal/errors"
	"commercego/internal/model"
	"commercego/internal/repository"
)

const profileCacheTTL = 5 * time.Minute

// UpdateUserParams carries the mutable profile fields.
type UpdateUserParams struct {
	Username string
	Email    string
	Password string
	Avatar   string
}

// UserService exposes user profile operations.
type UserService interface {
	List(ctx context.Context, role string) ([]model.User, error)
	Get(ctx context.Context, id uint) (*model.User, error)
	Update(ctx context.Context, id uint, params UpdateUserParams) error
	Delete(ctx context.Context, id uint) error
	Promote(ctx context.Context, id uint, newRole string) error
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// List returns all users, or only those holding the given role.
func (s *userService) List(ctx context.Context, role string) ([]model.User, error) {
	if role == "" || role == "all" {
		return s.repo.List(ctx)
	}
	return s.repo.ListByRole(ctx, role)
}

func (s *userService) Get(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPrincipalNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, profileCacheTTL)
	}
	return user, nil
}

// Update rewrites the profile. The role is preserved from the stored record
// regardless of input; promotions go through Promote.
func (s *userService) Update(ctx context.Context, id uint, params UpdateUserParams) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPrincipalNotFound
		}
		return err
	}

	conflicts, err := s.repo.CountConflicts(ctx, params.Username, params.Email, id)
	if err != nil {
		return fmt.Errorf("check conflicts: %w", err)
	}
	if conflicts > 0 {
		return apperrors.ErrPrincipalExists
	}

	hashed, err := auth.HashPassword(params.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.Username = params.Username
	user.Email = params.Email
	user.PasswordHash = hashed
	if params.Avatar != "" {
		user.Avatar = params.Avatar
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

func (s *userService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPrincipalNotFound
		}
		return err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

// Promote changes a user's role, owner-gated at the route level.
func (s *userService) Promote(ctx context.Context, id uint, newRole string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPrincipalNotFound
		}
		return err
	}
	if err := s.repo.UpdateFields(ctx, id, map[string]interface{}{"role": newRole}); err != nil {
		return fmt.Errorf("promote user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

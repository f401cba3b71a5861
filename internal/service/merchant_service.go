package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"commercego/internal/auth"
	"commercego/internal/cache"
	apperrors "commercego/internal/errors"
	"commercego/internal/model"
	"commercego/internal/repository"
)

// UpdateMerchantParams carries the mutable merchant profile fields.
type UpdateMerchantParams struct {
	Merchantname string
	Email        string
	Password     string
	CIF          string
	Address      string
}

// MerchantService exposes merchant profile operations.
type MerchantService interface {
	List(ctx context.Context) ([]model.Merchant, error)
	Get(ctx context.Context, id uint) (*model.Merchant, error)
	Update(ctx context.Context, id uint, params UpdateMerchantParams) error
	Delete(ctx context.Context, id uint) error
}

type merchantService struct {
	repo  repository.MerchantRepository
	cache *cache.Client
}

// NewMerchantService builds a MerchantService with repository and cache.
func NewMerchantService(repo repository.MerchantRepository, cache *cache.Client) MerchantService {
	return &merchantService{repo: repo, cache: cache}
}

func (s *merchantService) cacheKey(id uint) string {
	return fmt.Sprintf("merchant:%d", id)
}

func (s *merchantService) List(ctx context.Context) ([]model.Merchant, error) {
	return s.repo.List(ctx)
}

func (s *merchantService) Get(ctx context.Context, id uint) (*model.Merchant, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Merchant
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	merchant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPrincipalNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(merchant); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, profileCacheTTL)
	}
	return merchant, nil
}

func (s *merchantService) Update(ctx context.Context, id uint, params UpdateMerchantParams) error {
	merchant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPrincipalNotFound
		}
		return err
	}

	conflicts, err := s.repo.CountConflicts(ctx, params.Merchantname, params.Email, id)
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

	merchant.Merchantname = params.Merchantname
	merchant.Email = params.Email
	merchant.PasswordHash = hashed
	merchant.CIF = params.CIF
	merchant.Address = params.Address
	if err := s.repo.Update(ctx, merchant); err != nil {
		return fmt.Errorf("update merchant: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

func (s *merchantService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPrincipalNotFound
		}
		return err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

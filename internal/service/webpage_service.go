package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"commercego/internal/cache"
	apperrors "commercego/internal/errors"
	"commercego/internal/model"
	"commercego/internal/repository"
)

// WebpageParams carries the mutable storefront fields.
type WebpageParams struct {
	Name     string
	City     string
	Activity string
	Summary  string
}

// WebpageService exposes storefront page operations. Mutations are gated on
// ownership: the owning merchant may change its own pages, admins and owners
// may change any, everyone else is refused.
type WebpageService interface {
	Create(ctx context.Context, merchantID uint, params WebpageParams) (*model.Webpage, error)
	Get(ctx context.Context, id uint) (*model.Webpage, error)
	List(ctx context.Context) ([]model.Webpage, error)
	ListByMerchant(ctx context.Context, merchantID uint) ([]model.Webpage, error)
	Update(ctx context.Context, actor *model.Identity, id uint, params WebpageParams) error
	Delete(ctx context.Context, actor *model.Identity, id uint) error
}

type webpageService struct {
	repo  repository.WebpageRepository
	cache *cache.Client
}

// NewWebpageService builds a WebpageService with repository and cache.
func NewWebpageService(repo repository.WebpageRepository, cache *cache.Client) WebpageService {
	return &webpageService{repo: repo, cache: cache}
}

func (s *webpageService) cacheKey(id uint) string {
	return fmt.Sprintf("webpage:%d", id)
}

func (s *webpageService) Create(ctx context.Context, merchantID uint, params WebpageParams) (*model.Webpage, error) {
	page := &model.Webpage{
		MerchantID: merchantID,
		Name:       params.Name,
		City:       params.City,
		Activity:   params.Activity,
		Summary:    params.Summary,
	}
	if err := s.repo.Create(ctx, page); err != nil {
		return nil, fmt.Errorf("create webpage: %w", err)
	}
	return page, nil
}

func (s *webpageService) Get(ctx context.Context, id uint) (*model.Webpage, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Webpage
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	page, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWebpageNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(page); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, profileCacheTTL)
	}
	return page, nil
}

func (s *webpageService) List(ctx context.Context) ([]model.Webpage, error) {
	return s.repo.List(ctx)
}

func (s *webpageService) ListByMerchant(ctx context.Context, merchantID uint) ([]model.Webpage, error) {
	return s.repo.ListByMerchant(ctx, merchantID)
}

func (s *webpageService) Update(ctx context.Context, actor *model.Identity, id uint, params WebpageParams) error {
	page, err := s.loadForMutation(ctx, actor, id)
	if err != nil {
		return err
	}

	page.Name = params.Name
	page.City = params.City
	page.Activity = params.Activity
	page.Summary = params.Summary
	if err := s.repo.Update(ctx, page); err != nil {
		return fmt.Errorf("update webpage: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

func (s *webpageService) Delete(ctx context.Context, actor *model.Identity, id uint) error {
	if _, err := s.loadForMutation(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete webpage: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

func (s *webpageService) loadForMutation(ctx context.Context, actor *model.Identity, id uint) (*model.Webpage, error) {
	page, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWebpageNotFound
		}
		return nil, err
	}

	switch {
	case actor.Kind == model.KindMerchant && actor.ID == page.MerchantID:
	case actor.Kind == model.KindUser && (actor.Role == model.RoleAdmin || actor.Role == model.RoleOwner):
	default:
		return nil, apperrors.ErrForbidden
	}
	return page, nil
}

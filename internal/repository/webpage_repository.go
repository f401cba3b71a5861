package repository

import (
	"context"

	"gorm.io/gorm"

	"commercego/internal/model"
)

// WebpageRepository defines persistence operations for merchant storefront pages.
type WebpageRepository interface {
	Create(ctx context.Context, page *model.Webpage) error
	FindByID(ctx context.Context, id uint) (*model.Webpage, error)
	List(ctx context.Context) ([]model.Webpage, error)
	ListByMerchant(ctx context.Context, merchantID uint) ([]model.Webpage, error)
	Update(ctx context.Context, page *model.Webpage) error
	Delete(ctx context.Context, id uint) error
}

type webpageRepository struct {
	db *gorm.DB
}

// NewWebpageRepository builds a GORM-backed repository.
func NewWebpageRepository(db *gorm.DB) WebpageRepository {
	return &webpageRepository{db: db}
}

func (r *webpageRepository) Create(ctx context.Context, page *model.Webpage) error {
	return r.db.WithContext(ctx).Create(page).Error
}

func (r *webpageRepository) FindByID(ctx context.Context, id uint) (*model.Webpage, error) {
	var page model.Webpage
	if err := r.db.WithContext(ctx).First(&page, id).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *webpageRepository) List(ctx context.Context) ([]model.Webpage, error) {
	var pages []model.Webpage
	if err := r.db.WithContext(ctx).Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *webpageRepository) ListByMerchant(ctx context.Context, merchantID uint) ([]model.Webpage, error) {
	var pages []model.Webpage
	if err := r.db.WithContext(ctx).Where("merchant_id = ?", merchantID).Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *webpageRepository) Update(ctx context.Context, page *model.Webpage) error {
	return r.db.WithContext(ctx).Save(page).Error
}

func (r *webpageRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Webpage{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"commercego/internal/model"
)

// RestorationRepository persists password-restoration attempt records.
type RestorationRepository interface {
	Create(ctx context.Context, req *model.RestorationRequest) error
	FindByID(ctx context.Context, id uint) (*model.RestorationRequest, error)
	UpdateAttempts(ctx context.Context, id uint, attempts int) error
	Delete(ctx context.Context, id uint) error
}

type restorationRepository struct {
	db *gorm.DB
}

// NewRestorationRepository builds a GORM-backed repository.
func NewRestorationRepository(db *gorm.DB) RestorationRepository {
	return &restorationRepository{db: db}
}

func (r *restorationRepository) Create(ctx context.Context, req *model.RestorationRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *restorationRepository) FindByID(ctx context.Context, id uint) (*model.RestorationRequest, error) {
	var req model.RestorationRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *restorationRepository) UpdateAttempts(ctx context.Context, id uint, attempts int) error {
	return r.db.WithContext(ctx).Model(&model.RestorationRequest{}).
		Where("id = ?", id).Update("attempts", attempts).Error
}

func (r *restorationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.RestorationRequest{}, id).Error
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"commercego/internal/model"
)

// MerchantRepository defines persistence operations for merchants.
type MerchantRepository interface {
	Create(ctx context.Context, merchant *model.Merchant) error
	FindByID(ctx context.Context, id uint) (*model.Merchant, error)
	FindByEmail(ctx context.Context, email string) (*model.Merchant, error)
	FindByMerchantname(ctx context.Context, name string) (*model.Merchant, error)
	List(ctx context.Context) ([]model.Merchant, error)
	CountConflicts(ctx context.Context, merchantname, email string, excludeID uint) (int64, error)
	Update(ctx context.Context, merchant *model.Merchant) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type merchantRepository struct {
	db *gorm.DB
}

// NewMerchantRepository builds a GORM-backed repository.
func NewMerchantRepository(db *gorm.DB) MerchantRepository {
	return &merchantRepository{db: db}
}

func (r *merchantRepository) Create(ctx context.Context, merchant *model.Merchant) error {
	return r.db.WithContext(ctx).Create(merchant).Error
}

func (r *merchantRepository) FindByID(ctx context.Context, id uint) (*model.Merchant, error) {
	var merchant model.Merchant
	if err := r.db.WithContext(ctx).First(&merchant, id).Error; err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (r *merchantRepository) FindByEmail(ctx context.Context, email string) (*model.Merchant, error) {
	var merchant model.Merchant
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&merchant).Error; err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (r *merchantRepository) FindByMerchantname(ctx context.Context, name string) (*model.Merchant, error) {
	var merchant model.Merchant
	if err := r.db.WithContext(ctx).Where("merchantname = ?", name).First(&merchant).Error; err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (r *merchantRepository) List(ctx context.Context) ([]model.Merchant, error) {
	var merchants []model.Merchant
	if err := r.db.WithContext(ctx).Find(&merchants).Error; err != nil {
		return nil, err
	}
	return merchants, nil
}

func (r *merchantRepository) CountConflicts(ctx context.Context, merchantname, email string, excludeID uint) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Merchant{}).
		Where("merchantname = ? OR email = ?", merchantname, email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *merchantRepository) Update(ctx context.Context, merchant *model.Merchant) error {
	return r.db.WithContext(ctx).Save(merchant).Error
}

func (r *merchantRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Merchant{}).Where("id = ?", id).Updates(fields).Error
}

func (r *merchantRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Merchant{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

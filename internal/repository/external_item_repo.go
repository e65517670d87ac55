package repository

import (
	"context"

	"fmcg-admin-api/internal/model"

	"gorm.io/gorm"
)

type ExternalItemRepository interface {
	Create(ctx context.Context, item *model.ExternalItem) error
	FindAll(ctx context.Context) ([]model.ExternalItem, error)
	FindByID(ctx context.Context, id uint) (*model.ExternalItem, error)
	Delete(ctx context.Context, id uint) error
}

type externalItemRepo struct {
	db *gorm.DB
}

func NewExternalItemRepo(db *gorm.DB) ExternalItemRepository {
	return &externalItemRepo{db}
}

func (r *externalItemRepo) Create(ctx context.Context, item *model.ExternalItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *externalItemRepo) FindAll(ctx context.Context) ([]model.ExternalItem, error) {
	var items []model.ExternalItem
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *externalItemRepo) FindByID(ctx context.Context, id uint) (*model.ExternalItem, error) {
	var item model.ExternalItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	return &item, err
}

func (r *externalItemRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.ExternalItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

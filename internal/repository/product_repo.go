package repository

import (
	"context"

	"fmcg-admin-api/internal/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, tx *gorm.DB, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	IDsByCompany(ctx context.Context, tx *gorm.DB, companyID uint) ([]uint, error)
	SetHasOffer(ctx context.Context, id uint, hasOffer bool) error
	// SyncHasOffer recomputes has_offer from the active offers on the product.
	SyncHasOffer(ctx context.Context, tx *gorm.DB, id uint) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, tx *gorm.DB, product *model.Product) error {
	return conn(ctx, r.db, tx).Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Preload("Company").Order("created_at DESC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Preload("Company").First(&product, id).Error
	return &product, err
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit("Company").Save(product).Error
}

// Delete removes the product; its ledgers, history and every offer naming it
// follow by cascade.
func (r *productRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := conn(ctx, r.db, tx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) IDsByCompany(ctx context.Context, tx *gorm.DB, companyID uint) ([]uint, error) {
	var ids []uint
	err := conn(ctx, r.db, tx).Model(&model.Product{}).Where("company_id = ?", companyID).Pluck("id", &ids).Error
	return ids, err
}

func (r *productRepo) SetHasOffer(ctx context.Context, id uint, hasOffer bool) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("has_offer", hasOffer)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) SyncHasOffer(ctx context.Context, tx *gorm.DB, id uint) error {
	return conn(ctx, r.db, tx).Exec(
		`UPDATE products SET has_offer = EXISTS (SELECT 1 FROM offers WHERE offers.product_id = products.id AND offers.is_active) WHERE id = ?`,
		id,
	).Error
}

package repository

import (
	"context"

	"fmcg-admin-api/internal/model"

	"gorm.io/gorm"
)

type OfferRepository interface {
	Create(ctx context.Context, tx *gorm.DB, offer *model.Offer) error
	FindAll(ctx context.Context) ([]model.Offer, error)
	FindByID(ctx context.Context, id uint) (*model.Offer, error)
	UpdateActive(ctx context.Context, tx *gorm.DB, id uint, active bool) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	// FindActiveTouching returns active offers naming the product as primary
	// or free item product, optionally excluding one offer.
	FindActiveTouching(ctx context.Context, productID uint, excludeID *uint) ([]model.Offer, error)
	// FindInactiveFreeItem returns inactive free item offers naming the product either way.
	FindInactiveFreeItem(ctx context.Context, productID uint) ([]model.Offer, error)
	CountByExternalItem(ctx context.Context, itemID uint) (int64, error)
	// ProductsLosingOffers lists the surviving products that carry an offer the
	// cascade from deleting removed (and companyID, when set) will take away.
	ProductsLosingOffers(ctx context.Context, tx *gorm.DB, removed []uint, companyID *uint) ([]uint, error)
}

type offerRepo struct {
	db *gorm.DB
}

func NewOfferRepo(db *gorm.DB) OfferRepository {
	return &offerRepo{db}
}

func (r *offerRepo) Create(ctx context.Context, tx *gorm.DB, offer *model.Offer) error {
	return conn(ctx, r.db, tx).Omit("Product", "Company", "FreeItemProduct", "ExternalItem").Create(offer).Error
}

func (r *offerRepo) FindAll(ctx context.Context) ([]model.Offer, error) {
	var offers []model.Offer
	err := r.db.WithContext(ctx).
		Preload("Product").Preload("Company").Preload("FreeItemProduct").Preload("ExternalItem").
		Order("created_at DESC").
		Find(&offers).Error
	return offers, err
}

func (r *offerRepo) FindByID(ctx context.Context, id uint) (*model.Offer, error) {
	var offer model.Offer
	err := r.db.WithContext(ctx).
		Preload("Product").Preload("Company").Preload("FreeItemProduct").Preload("ExternalItem").
		First(&offer, id).Error
	return &offer, err
}

func (r *offerRepo) UpdateActive(ctx context.Context, tx *gorm.DB, id uint, active bool) error {
	res := conn(ctx, r.db, tx).Model(&model.Offer{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the offer; the pool and its history follow by cascade.
func (r *offerRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := conn(ctx, r.db, tx).Delete(&model.Offer{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *offerRepo) FindActiveTouching(ctx context.Context, productID uint, excludeID *uint) ([]model.Offer, error) {
	var offers []model.Offer
	q := r.db.WithContext(ctx).
		Preload("FreeItemProduct").Preload("ExternalItem").
		Where("is_active = ?", true).
		Where("product_id = ? OR free_item_product_id = ?", productID, productID)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	err := q.Order("created_at DESC").Find(&offers).Error
	return offers, err
}

func (r *offerRepo) FindInactiveFreeItem(ctx context.Context, productID uint) ([]model.Offer, error) {
	var offers []model.Offer
	err := r.db.WithContext(ctx).
		Preload("Product").Preload("FreeItemProduct").
		Where("is_active = ? AND offer_type = ?", false, model.OfferFreeItem).
		Where("product_id = ? OR free_item_product_id = ?", productID, productID).
		Order("created_at DESC").
		Find(&offers).Error
	return offers, err
}

func (r *offerRepo) CountByExternalItem(ctx context.Context, itemID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Offer{}).Where("external_item_id = ?", itemID).Count(&n).Error
	return n, err
}

func (r *offerRepo) ProductsLosingOffers(ctx context.Context, tx *gorm.DB, removed []uint, companyID *uint) ([]uint, error) {
	if len(removed) == 0 && companyID == nil {
		return nil, nil
	}
	q := conn(ctx, r.db, tx).Model(&model.Offer{}).Where("product_id IS NOT NULL")
	if len(removed) > 0 {
		q = q.Where("product_id NOT IN ?", removed)
	}
	switch {
	case len(removed) > 0 && companyID != nil:
		q = q.Where("(free_item_product_id IN ? OR company_id = ?)", removed, *companyID)
	case len(removed) > 0:
		q = q.Where("free_item_product_id IN ?", removed)
	default:
		q = q.Where("company_id = ?", *companyID)
	}

	var ids []uint
	err := q.Distinct("product_id").Order("product_id").Pluck("product_id", &ids).Error
	return ids, err
}

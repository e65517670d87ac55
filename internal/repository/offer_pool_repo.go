package repository

import (
	"context"
	"time"

	"fmcg-admin-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OfferPoolRepository interface {
	Create(ctx context.Context, tx *gorm.DB, pool *model.OfferPool) error
	FindAll(ctx context.Context) ([]model.OfferPool, error)
	// Lock reads the pool row with SELECT ... FOR UPDATE.
	Lock(ctx context.Context, tx *gorm.DB, id uint) (*model.OfferPool, error)
	// Save writes the counters only if the stored version still matches pool.Version.
	Save(ctx context.Context, tx *gorm.DB, pool *model.OfferPool) error
	AppendHistory(ctx context.Context, tx *gorm.DB, entry *model.OfferPoolHistory) error
}

type offerPoolRepo struct {
	db *gorm.DB
}

func NewOfferPoolRepo(db *gorm.DB) OfferPoolRepository {
	return &offerPoolRepo{db}
}

func (r *offerPoolRepo) Create(ctx context.Context, tx *gorm.DB, pool *model.OfferPool) error {
	return conn(ctx, r.db, tx).Create(pool).Error
}

func (r *offerPoolRepo) FindAll(ctx context.Context) ([]model.OfferPool, error) {
	var pools []model.OfferPool
	err := r.db.WithContext(ctx).
		Preload("Offer").Preload("Product.Company").Preload("ExternalItem").
		Order("last_updated DESC").
		Find(&pools).Error
	return pools, err
}

func (r *offerPoolRepo) Lock(ctx context.Context, tx *gorm.DB, id uint) (*model.OfferPool, error) {
	var pool model.OfferPool
	err := conn(ctx, r.db, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&pool, id).Error
	return &pool, err
}

func (r *offerPoolRepo) Save(ctx context.Context, tx *gorm.DB, pool *model.OfferPool) error {
	now := time.Now()
	res := conn(ctx, r.db, tx).Model(&model.OfferPool{}).
		Where("id = ? AND version = ?", pool.ID, pool.Version).
		Updates(map[string]interface{}{
			"accumulated_quantity":         pool.AccumulatedQuantity,
			"total_accumulated":            pool.TotalAccumulated,
			"total_transferred_to_regular": pool.TotalTransferredToRegular,
			"total_transferred_to_free":    pool.TotalTransferredToFree,
			"total_deducted":               pool.TotalDeducted,
			"version":                      pool.Version + 1,
			"last_updated":                 now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	pool.Version++
	pool.LastUpdated = now
	return nil
}

func (r *offerPoolRepo) AppendHistory(ctx context.Context, tx *gorm.DB, entry *model.OfferPoolHistory) error {
	return conn(ctx, r.db, tx).Create(entry).Error
}

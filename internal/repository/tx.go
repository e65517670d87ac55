package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxManager runs fn inside one database transaction. Repository methods that
// accept a tx use it when non-nil and fall back to their own handle otherwise.
type TxManager interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db}
}

func (m *gormTxManager) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return m.db.WithContext(ctx).Transaction(fn)
}

func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}

// Page is an optional limit/offset window for history listings.
type Page struct {
	Page  int
	Limit int
}

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 500
)

func (p Page) normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	p = p.normalize()
	return db.Limit(p.Limit).Offset((p.Page - 1) * p.Limit)
}

package repository

import (
	"context"

	"fmcg-admin-api/internal/model"

	"gorm.io/gorm"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	FindAll(ctx context.Context) ([]model.Company, error)
	FindByID(ctx context.Context, id uint) (*model.Company, error)
	Update(ctx context.Context, company *model.Company) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type companyRepo struct {
	db *gorm.DB
}

func NewCompanyRepo(db *gorm.DB) CompanyRepository {
	return &companyRepo{db}
}

func (r *companyRepo) Create(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *companyRepo) FindAll(ctx context.Context) ([]model.Company, error) {
	var companies []model.Company
	err := r.db.WithContext(ctx).Order("company_name ASC").Find(&companies).Error
	return companies, err
}

func (r *companyRepo) FindByID(ctx context.Context, id uint) (*model.Company, error) {
	var company model.Company
	err := r.db.WithContext(ctx).First(&company, id).Error
	return &company, err
}

func (r *companyRepo) Update(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}

// Delete relies on ON DELETE CASCADE for products, their ledgers and offers.
func (r *companyRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := conn(ctx, r.db, tx).Delete(&model.Company{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"fmcg-admin-api/internal/apperror"
	"fmcg-admin-api/internal/metrics"
	"fmcg-admin-api/internal/model"
	"fmcg-admin-api/internal/repository"
	"fmcg-admin-api/internal/storage"
	"fmcg-admin-api/pkg/pin"

	"gorm.io/gorm"
)

type CompanyRequest struct {
	CompanyName string `form:"company_name" json:"company_name" validate:"required,notblank,max=255"`
}

type CompanyService interface {
	Create(ctx context.Context, req CompanyRequest, logo *Image) (*model.Company, error)
	Update(ctx context.Context, id uint, req CompanyRequest, logo *Image) (*model.Company, error)
	List(ctx context.Context) ([]model.Company, error)
	Get(ctx context.Context, id uint) (*model.Company, error)
	// Delete removes the company and, by cascade, its products and offers.
	Delete(ctx context.Context, id uint, suppliedPIN string) (*model.Company, error)
}

type companyService struct {
	tx        repository.TxManager
	companies repository.CompanyRepository
	products  repository.ProductRepository
	offers    repository.OfferRepository
	images    ImageStore
	overlaps  OverlapInvalidator
	gate      *pin.Gate
}

func NewCompanyService(
	tx repository.TxManager,
	companies repository.CompanyRepository,
	products repository.ProductRepository,
	offers repository.OfferRepository,
	images ImageStore,
	overlaps OverlapInvalidator,
	gate *pin.Gate,
) CompanyService {
	return &companyService{
		tx:        tx,
		companies: companies,
		products:  products,
		offers:    offers,
		images:    images,
		overlaps:  overlaps,
		gate:      gate,
	}
}

func (s *companyService) Create(ctx context.Context, req CompanyRequest, logo *Image) (*model.Company, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	company := &model.Company{CompanyName: strings.TrimSpace(req.CompanyName)}
	if logo != nil {
		url, err := uploadImage(ctx, s.images, storage.BucketCompanyLogos, *logo)
		if err != nil {
			return nil, uploadFailed("logo", err)
		}
		company.CompanyLogo = &url
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, internalErr(err)
	}
	return company, nil
}

func (s *companyService) Update(ctx context.Context, id uint, req CompanyRequest, logo *Image) (*model.Company, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	company, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	company.CompanyName = strings.TrimSpace(req.CompanyName)
	if logo != nil {
		url, err := uploadImage(ctx, s.images, storage.BucketCompanyLogos, *logo)
		if err != nil {
			return nil, uploadFailed("logo", err)
		}
		company.CompanyLogo = &url
	}
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, internalErr(err)
	}
	return company, nil
}

func (s *companyService) List(ctx context.Context) ([]model.Company, error) {
	companies, err := s.companies.FindAll(ctx)
	return companies, internalErr(err)
}

func (s *companyService) Get(ctx context.Context, id uint) (*model.Company, error) {
	company, err := s.companies.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Company not found")
	}
	return company, nil
}

func (s *companyService) Delete(ctx context.Context, id uint, suppliedPIN string) (*model.Company, error) {
	if suppliedPIN == "" {
		return nil, apperror.InvalidArgument("PIN is required to delete company")
	}
	if err := s.gate.Check(suppliedPIN); err != nil {
		metrics.PINRejections.Inc()
		return nil, apperror.Forbidden("Incorrect PIN. Access denied.")
	}
	company, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		removed, err := s.products.IDsByCompany(ctx, tx, id)
		if err != nil {
			return err
		}
		return deleteWithOffers(ctx, tx, s.offers, s.products, removed, &id, func() error {
			return s.companies.Delete(ctx, tx, id)
		})
	})
	if err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("Company %d not found", id))
	}
	dropOverlaps(ctx, s.overlaps)
	return company, nil
}

package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"fmcg-admin-api/internal/apperror"
	"fmcg-admin-api/internal/model"
	"fmcg-admin-api/internal/repository"
	"fmcg-admin-api/internal/storage"
	"fmcg-admin-api/internal/ws"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxProductImages = 10

// ProductRequest mirrors the multipart form; numbers arrive as text.
type ProductRequest struct {
	ProductName        string `form:"product_name" json:"product_name" validate:"required,notblank,max=255"`
	CompanyID          uint   `form:"company_id" json:"company_id" validate:"required"`
	Weight             string `form:"weight" json:"weight"`
	MRP                string `form:"mrp" json:"mrp" validate:"required"`
	BuyingPrice        string `form:"buying_price" json:"buying_price" validate:"required"`
	SellingPrice       string `form:"selling_price" json:"selling_price" validate:"required"`
	GSTPercentage      string `form:"gst_percentage" json:"gst_percentage"`
	ProductDesc        string `form:"product_desc" json:"product_desc"`
	ItemsPerBox        string `form:"items_per_box" json:"items_per_box"`
	KeepExistingImages bool   `form:"keep_existing_images" json:"keep_existing_images"`
}

type ToggleHasOfferRequest struct {
	HasOffer *bool `json:"has_offer" validate:"required"`
}

type ProductService interface {
	Create(ctx context.Context, req ProductRequest, images []Image) (*model.Product, error)
	Update(ctx context.Context, id uint, req ProductRequest, images []Image) (*model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	Get(ctx context.Context, id uint) (*model.Product, error)
	SetHasOffer(ctx context.Context, id uint, req ToggleHasOfferRequest) (*model.Product, error)
	Delete(ctx context.Context, id uint) (*model.Product, error)
}

type productService struct {
	tx        repository.TxManager
	products  repository.ProductRepository
	companies repository.CompanyRepository
	stock     repository.StockRepository
	offers    repository.OfferRepository
	images    ImageStore
	overlaps  OverlapInvalidator
	events    Publisher
}

func NewProductService(
	tx repository.TxManager,
	products repository.ProductRepository,
	companies repository.CompanyRepository,
	stock repository.StockRepository,
	offers repository.OfferRepository,
	images ImageStore,
	overlaps OverlapInvalidator,
	events Publisher,
) ProductService {
	return &productService{
		tx:        tx,
		products:  products,
		companies: companies,
		stock:     stock,
		offers:    offers,
		images:    images,
		overlaps:  overlaps,
		events:    events,
	}
}

func (s *productService) Create(ctx context.Context, req ProductRequest, images []Image) (*model.Product, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, apperror.InvalidArgument("At least one product image is required")
	}
	if len(images) > maxProductImages {
		return nil, apperror.InvalidArgument("At most %d product images are allowed", maxProductImages)
	}
	product := &model.Product{}
	if err := applyProductRequest(product, req); err != nil {
		return nil, err
	}
	if err := s.ensureCompany(ctx, req.CompanyID); err != nil {
		return nil, err
	}

	urls, err := s.upload(ctx, images)
	if err != nil {
		return nil, err
	}
	product.ProductImages = urls

	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.products.Create(ctx, tx, product); err != nil {
			return err
		}
		return s.stock.CreateForProduct(ctx, tx, product.ID)
	})
	if err != nil {
		return nil, internalErr(err)
	}

	publish(s.events, ws.Event{Type: "catalog_update", Action: "product_created", Data: product})
	return product, nil
}

// Update replaces the product fields. New images replace the stored ones;
// without new images the existing list is kept.
func (s *productService) Update(ctx context.Context, id uint, req ProductRequest, images []Image) (*model.Product, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	if len(images) > maxProductImages {
		return nil, apperror.InvalidArgument("At most %d product images are allowed", maxProductImages)
	}
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyProductRequest(product, req); err != nil {
		return nil, err
	}
	if product.Company != nil && product.Company.ID != req.CompanyID {
		if err := s.ensureCompany(ctx, req.CompanyID); err != nil {
			return nil, err
		}
		product.Company = nil
	}

	if len(images) > 0 {
		urls, err := s.upload(ctx, images)
		if err != nil {
			return nil, err
		}
		if req.KeepExistingImages {
			urls = append(product.ProductImages, urls...)
		}
		product.ProductImages = urls
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, internalErr(err)
	}
	// cached overlap descriptions carry product names
	dropOverlaps(ctx, s.overlaps)
	publish(s.events, ws.Event{Type: "catalog_update", Action: "product_updated", Data: product})
	return product, nil
}

func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	products, err := s.products.FindAll(ctx)
	return products, internalErr(err)
}

func (s *productService) Get(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Product not found")
	}
	return product, nil
}

// SetHasOffer is a manual override; offer changes recompute the flag anyway.
func (s *productService) SetHasOffer(ctx context.Context, id uint, req ToggleHasOfferRequest) (*model.Product, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	if err := s.products.SetHasOffer(ctx, id, *req.HasOffer); err != nil {
		return nil, notFoundOr(err, "Product not found")
	}
	return s.Get(ctx, id)
}

func (s *productService) Delete(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		return deleteWithOffers(ctx, tx, s.offers, s.products, []uint{id}, nil, func() error {
			return s.products.Delete(ctx, tx, id)
		})
	})
	if err != nil {
		return nil, notFoundOr(err, "Product not found")
	}
	dropOverlaps(ctx, s.overlaps)
	publish(s.events, ws.Event{Type: "catalog_update", Action: "product_deleted", Data: map[string]uint{"id": id}})
	return product, nil
}

func (s *productService) ensureCompany(ctx context.Context, companyID uint) error {
	if _, err := s.companies.FindByID(ctx, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.InvalidArgument("Company %d does not exist", companyID)
		}
		return internalErr(err)
	}
	return nil
}

func (s *productService) upload(ctx context.Context, images []Image) ([]string, error) {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		url, err := uploadImage(ctx, s.images, storage.BucketProductImages, img)
		if err != nil {
			return nil, uploadFailed("images", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func applyProductRequest(p *model.Product, req ProductRequest) error {
	var err error
	p.ProductName = strings.TrimSpace(req.ProductName)
	p.CompanyID = req.CompanyID
	if p.MRP, err = parseAmount("mrp", req.MRP); err != nil {
		return err
	}
	if p.BuyingPrice, err = parseAmount("buying_price", req.BuyingPrice); err != nil {
		return err
	}
	if p.SellingPrice, err = parseAmount("selling_price", req.SellingPrice); err != nil {
		return err
	}
	if p.Weight, err = parseOptionalAmount("weight", req.Weight); err != nil {
		return err
	}
	if p.GSTPercentage, err = parseOptionalAmount("gst_percentage", req.GSTPercentage); err != nil {
		return err
	}
	if p.GSTPercentage.Valid && p.GSTPercentage.Decimal.GreaterThan(decimal.NewFromInt(100)) {
		return apperror.InvalidArgument("gst_percentage cannot exceed 100")
	}

	p.ProductDesc = nil
	if desc := strings.TrimSpace(req.ProductDesc); desc != "" {
		p.ProductDesc = &desc
	}
	p.ItemsPerBox = nil
	if v := strings.TrimSpace(req.ItemsPerBox); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return apperror.InvalidArgument("items_per_box must be a positive whole number")
		}
		p.ItemsPerBox = &n
	}
	return nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, apperror.InvalidArgument("%s must be a number", field)
	}
	if d.IsNegative() {
		return decimal.Zero, apperror.InvalidArgument("%s cannot be negative", field)
	}
	return d, nil
}

func parseOptionalAmount(field, raw string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := parseAmount(field, raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"fmcg-admin-api/internal/apperror"
	"fmcg-admin-api/internal/model"
	"fmcg-admin-api/internal/repository"
	"fmcg-admin-api/internal/ws"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateOfferRequest struct {
	OfferType                   string              `json:"offer_type" validate:"required,oneof=free_item discount"`
	ProductID                   *uint               `json:"product_id"`
	CompanyID                   *uint               `json:"company_id"`
	MinProductWeight            decimal.NullDecimal `json:"min_product_weight"`
	MinProductMRP               decimal.NullDecimal `json:"min_product_mrp"`
	IsActive                    *bool               `json:"is_active"`
	FreeItemType                *string             `json:"free_item_type" validate:"omitempty,oneof=same_product different_product external"`
	FreeItemProductID           *uint               `json:"free_item_product_id"`
	ExternalItemID              *uint               `json:"external_item_id"`
	FreeItemExternalName        *string             `json:"free_item_external_name"`
	FreeItemExternalDescription *string             `json:"free_item_external_description"`
	FreeItemQuantity            *int                `json:"free_item_quantity"`
	DiscountType                *string             `json:"discount_type" validate:"omitempty,oneof=fixed percentage"`
	DiscountValue               decimal.NullDecimal `json:"discount_value"`
}

type UpdateOfferRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// CreateOfferResult carries the stored offer plus non-blocking warnings.
type CreateOfferResult struct {
	Offer    *model.Offer
	Overlaps []model.OfferSummary
	// Message explains why a requested active offer was stored inactive.
	Message string
}

// OverlapCache memoises overlap lookups per product. Implementations must be
// safe to call when the backing store is down.
type OverlapCache interface {
	OverlapInvalidator
	Get(ctx context.Context, productID uint, excludeID *uint) ([]model.OfferSummary, bool)
	Set(ctx context.Context, productID uint, excludeID *uint, overlaps []model.OfferSummary)
}

// OverlapInvalidator drops every cached overlap lookup. Catalog changes that
// delete offers by cascade or rename products call it.
type OverlapInvalidator interface {
	Invalidate(ctx context.Context)
}

type OfferService interface {
	OfferActivator
	Create(ctx context.Context, req CreateOfferRequest) (*CreateOfferResult, error)
	List(ctx context.Context) ([]model.Offer, error)
	Get(ctx context.Context, id uint) (*model.Offer, error)
	SetActive(ctx context.Context, id uint, req UpdateOfferRequest) (*model.Offer, error)
	Delete(ctx context.Context, id uint) error
	CanActivate(ctx context.Context, offer *model.Offer) (bool, string, error)
	FindOverlaps(ctx context.Context, productID uint, excludeID *uint) ([]model.OfferSummary, error)
}

type offerService struct {
	tx       repository.TxManager
	offers   repository.OfferRepository
	pools    repository.OfferPoolRepository
	products repository.ProductRepository
	stock    repository.StockRepository
	items    repository.ExternalItemRepository
	cache    OverlapCache
	events   Publisher
}

func NewOfferService(
	tx repository.TxManager,
	offers repository.OfferRepository,
	pools repository.OfferPoolRepository,
	products repository.ProductRepository,
	stock repository.StockRepository,
	items repository.ExternalItemRepository,
	cache OverlapCache,
	events Publisher,
) OfferService {
	return &offerService{
		tx:       tx,
		offers:   offers,
		pools:    pools,
		products: products,
		stock:    stock,
		items:    items,
		cache:    cache,
		events:   events,
	}
}

func (s *offerService) Create(ctx context.Context, req CreateOfferRequest) (*CreateOfferResult, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	offer, err := s.buildOffer(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := offer.Validate(); err != nil {
		return nil, apperror.InvalidArgument("%s", err.Error())
	}

	result := &CreateOfferResult{Offer: offer}
	offer.IsActive = req.IsActive == nil || *req.IsActive
	if offer.IsActive {
		ok, why, err := s.CanActivate(ctx, offer)
		if err != nil {
			return nil, internalErr(err)
		}
		if !ok {
			offer.IsActive = false
			result.Message = why
		}
	}

	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.offers.Create(ctx, tx, offer); err != nil {
			return err
		}
		if offer.OfferType == model.OfferFreeItem {
			if err := s.pools.Create(ctx, tx, model.NewOfferPool(offer)); err != nil {
				return fmt.Errorf("create offer pool: %w", err)
			}
		}
		return s.syncHasOffer(ctx, tx, offer.ProductID)
	})
	if err != nil {
		return nil, internalErr(err)
	}
	s.invalidate(ctx)

	if offer.ProductID != nil {
		result.Overlaps, err = s.FindOverlaps(ctx, *offer.ProductID, &offer.ID)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Uint("offer_id", offer.ID).Msg("overlap check failed")
		}
	}

	publish(s.events, ws.Event{Type: "offer_update", Action: "offer_created", Data: offer})
	return result, nil
}

// buildOffer maps the request and fills what can be derived: the company of
// the product, the default free quantity and the external item name.
func (s *offerService) buildOffer(ctx context.Context, req CreateOfferRequest) (*model.Offer, error) {
	offer := &model.Offer{
		OfferType:                   model.OfferType(req.OfferType),
		ProductID:                   req.ProductID,
		CompanyID:                   req.CompanyID,
		MinProductWeight:            req.MinProductWeight,
		MinProductMRP:               req.MinProductMRP,
		FreeItemExternalName:        req.FreeItemExternalName,
		FreeItemExternalDescription: req.FreeItemExternalDescription,
		DiscountValue:               req.DiscountValue,
	}

	if req.ProductID != nil {
		product, err := s.products.FindByID(ctx, *req.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.InvalidArgument("Product %d does not exist", *req.ProductID)
			}
			return nil, internalErr(err)
		}
		if offer.CompanyID == nil {
			offer.CompanyID = &product.CompanyID
		}
		offer.Product = product
	}

	switch offer.OfferType {
	case model.OfferFreeItem:
		if req.FreeItemType != nil {
			t := model.FreeItemType(*req.FreeItemType)
			offer.FreeItemType = &t
		}
		offer.FreeItemQuantity = 1
		if req.FreeItemQuantity != nil {
			offer.FreeItemQuantity = *req.FreeItemQuantity
		}
		if offer.FreeItemType != nil && *offer.FreeItemType == model.FreeItemDifferentProduct {
			offer.FreeItemProductID = req.FreeItemProductID
		}
		if offer.FreeItemType != nil && *offer.FreeItemType == model.FreeItemExternal && req.ExternalItemID != nil {
			item, err := s.items.FindByID(ctx, *req.ExternalItemID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperror.InvalidArgument("External item %d does not exist", *req.ExternalItemID)
				}
				return nil, internalErr(err)
			}
			offer.ExternalItemID = &item.ID
			if offer.FreeItemExternalName == nil || *offer.FreeItemExternalName == "" {
				offer.FreeItemExternalName = &item.ItemName
			}
			if offer.FreeItemExternalDescription == nil {
				offer.FreeItemExternalDescription = item.ItemDescription
			}
		}
	case model.OfferDiscount:
		if req.DiscountType != nil {
			t := model.DiscountType(*req.DiscountType)
			offer.DiscountType = &t
		}
	}
	return offer, nil
}

// CanActivate reports whether a free item offer has free stock to give away.
// External rewards and discount offers are always eligible.
func (s *offerService) CanActivate(ctx context.Context, offer *model.Offer) (bool, string, error) {
	productID, ok := offer.FreeStockProductID()
	if !ok {
		return true, "", nil
	}
	available := 0
	fs, err := s.stock.FindFreeStock(ctx, productID)
	switch {
	case err == nil:
		available = fs.Available()
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return false, "", err
	}
	if available > 0 {
		return true, "", nil
	}
	return false, fmt.Sprintf("No free stock available for product %d. Offer saved as inactive; add free stock to activate it.", productID), nil
}

func (s *offerService) FindActivatable(ctx context.Context, productID uint) ([]model.Offer, error) {
	return s.offers.FindInactiveFreeItem(ctx, productID)
}

func (s *offerService) FindOverlaps(ctx context.Context, productID uint, excludeID *uint) ([]model.OfferSummary, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, productID, excludeID); ok {
			return cached, nil
		}
	}
	offers, err := s.offers.FindActiveTouching(ctx, productID, excludeID)
	if err != nil {
		return nil, internalErr(err)
	}
	summaries := make([]model.OfferSummary, 0, len(offers))
	for i := range offers {
		summaries = append(summaries, offers[i].Summary())
	}
	if s.cache != nil {
		s.cache.Set(ctx, productID, excludeID, summaries)
	}
	return summaries, nil
}

func (s *offerService) List(ctx context.Context) ([]model.Offer, error) {
	offers, err := s.offers.FindAll(ctx)
	return offers, internalErr(err)
}

func (s *offerService) Get(ctx context.Context, id uint) (*model.Offer, error) {
	offer, err := s.offers.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Offer not found")
	}
	return offer, nil
}

func (s *offerService) SetActive(ctx context.Context, id uint, req UpdateOfferRequest) (*model.Offer, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	offer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.offers.UpdateActive(ctx, tx, id, *req.IsActive); err != nil {
			return err
		}
		return s.syncHasOffer(ctx, tx, offer.ProductID)
	})
	if err != nil {
		return nil, notFoundOr(err, "Offer not found")
	}
	offer.IsActive = *req.IsActive
	s.invalidate(ctx)

	publish(s.events, ws.Event{Type: "offer_update", Action: "offer_toggled", Data: offer})
	return offer, nil
}

func (s *offerService) Delete(ctx context.Context, id uint) error {
	offer, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.offers.Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.syncHasOffer(ctx, tx, offer.ProductID)
	})
	if err != nil {
		return notFoundOr(err, "Offer not found")
	}
	s.invalidate(ctx)

	publish(s.events, ws.Event{Type: "offer_update", Action: "offer_deleted", Data: map[string]uint{"id": id}})
	return nil
}

func (s *offerService) syncHasOffer(ctx context.Context, tx *gorm.DB, productID *uint) error {
	if productID == nil {
		return nil
	}
	return s.products.SyncHasOffer(ctx, tx, *productID)
}

func (s *offerService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func dropOverlaps(ctx context.Context, inv OverlapInvalidator) {
	if inv != nil {
		inv.Invalidate(ctx)
	}
}

// deleteWithOffers runs del, which removes products (and by cascade every
// offer naming them) inside tx. Offers on other products that gave a removed
// product away go too, so has_offer is recomputed for those products.
func deleteWithOffers(
	ctx context.Context,
	tx *gorm.DB,
	offers repository.OfferRepository,
	products repository.ProductRepository,
	removed []uint,
	companyID *uint,
	del func() error,
) error {
	affected, err := offers.ProductsLosingOffers(ctx, tx, removed, companyID)
	if err != nil {
		return err
	}
	if err := del(); err != nil {
		return err
	}
	for _, id := range affected {
		if err := products.SyncHasOffer(ctx, tx, id); err != nil {
			return err
		}
	}
	return nil
}

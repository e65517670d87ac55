package service

import (
	"context"
	"strings"
	"time"

	"fmcg-admin-api/internal/apperror"
	"fmcg-admin-api/internal/model"
	"fmcg-admin-api/internal/repository"
	"fmcg-admin-api/internal/storage"
	"fmcg-admin-api/pkg/pin"

	"github.com/rs/zerolog/log"
)

type ExternalItemRequest struct {
	ItemName          string `form:"item_name" json:"item_name" validate:"required,notblank,max=255"`
	ItemDescription   string `form:"item_description" json:"item_description"`
	StockQuantity     int    `form:"stock_quantity" json:"stock_quantity" validate:"gte=0"`
	LowStockThreshold *int   `form:"low_stock_threshold" json:"low_stock_threshold" validate:"omitempty,gte=0"`
}

type ExternalItemService interface {
	Create(ctx context.Context, req ExternalItemRequest, image *Image) (*model.ExternalItem, error)
	List(ctx context.Context) ([]model.ExternalItem, error)
	Get(ctx context.Context, id uint) (*model.ExternalItem, error)
	// Delete refuses items still referenced by any offer.
	Delete(ctx context.Context, id uint, suppliedPIN string) error
}

type externalItemService struct {
	items  repository.ExternalItemRepository
	offers repository.OfferRepository
	images ImageStore
	gate   *pin.Gate
}

func NewExternalItemService(items repository.ExternalItemRepository, offers repository.OfferRepository, images ImageStore, gate *pin.Gate) ExternalItemService {
	return &externalItemService{items: items, offers: offers, images: images, gate: gate}
}

// Create stores the item even when the optional image fails to upload.
func (s *externalItemService) Create(ctx context.Context, req ExternalItemRequest, image *Image) (*model.ExternalItem, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	item := &model.ExternalItem{
		ItemName:          strings.TrimSpace(req.ItemName),
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: model.DefaultLowStockThreshold,
		LastUpdated:       time.Now(),
	}
	if desc := strings.TrimSpace(req.ItemDescription); desc != "" {
		item.ItemDescription = &desc
	}
	if req.LowStockThreshold != nil {
		item.LowStockThreshold = *req.LowStockThreshold
	}
	if image != nil {
		url, err := uploadImage(ctx, s.images, storage.BucketExternalItemImages, *image)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("item", item.ItemName).Msg("external item image upload failed, continuing without image")
		} else {
			item.ItemImage = &url
		}
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, internalErr(err)
	}
	return item, nil
}

func (s *externalItemService) List(ctx context.Context) ([]model.ExternalItem, error) {
	items, err := s.items.FindAll(ctx)
	return items, internalErr(err)
}

func (s *externalItemService) Get(ctx context.Context, id uint) (*model.ExternalItem, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "External item not found")
	}
	return item, nil
}

func (s *externalItemService) Delete(ctx context.Context, id uint, suppliedPIN string) error {
	if err := checkPIN(s.gate, suppliedPIN); err != nil {
		return err
	}
	n, err := s.offers.CountByExternalItem(ctx, id)
	if err != nil {
		return internalErr(err)
	}
	if n > 0 {
		return apperror.InvalidArgument("Cannot delete item. It is currently used in offers. Please remove it from offers first.")
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return notFoundOr(err, "External item not found")
	}
	return nil
}

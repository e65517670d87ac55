package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"fmcg-admin-api/internal/apperror"
	"fmcg-admin-api/internal/model"
	"fmcg-admin-api/internal/repository"
)

var (
	gstPattern   = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)
	phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	nonDigits    = regexp.MustCompile(`[^0-9]`)
)

const defaultNearbyRadius = 5000

type RegisterCustomerRequest struct {
	CustomerName      string   `json:"customer_name" validate:"required,notblank"`
	BusinessName      string   `json:"business_name" validate:"required,notblank"`
	ContactNumber     string   `json:"contact_number" validate:"required"`
	StreetAddress     string   `json:"street_address" validate:"required,notblank"`
	Latitude          *float64 `json:"latitude" validate:"required,latitude"`
	Longitude         *float64 `json:"longitude" validate:"required,longitude"`
	GSTNumber         string   `json:"gst_number" validate:"required"`
	FoodLicenceNumber string   `json:"food_licence_number" validate:"required,notblank"`
	Email             string   `json:"email" validate:"omitempty,email"`
}

type NearbyQuery struct {
	Latitude  *float64 `query:"latitude" validate:"required,latitude"`
	Longitude *float64 `query:"longitude" validate:"required,longitude"`
	Radius    float64  `query:"radius" validate:"gte=0"`
}

type CustomerService interface {
	Register(ctx context.Context, req RegisterCustomerRequest) (*model.Customer, error)
	List(ctx context.Context) ([]model.Customer, error)
	Nearby(ctx context.Context, q NearbyQuery) ([]model.NearbyCustomer, error)
}

type customerService struct {
	customers repository.CustomerRepository
}

func NewCustomerService(customers repository.CustomerRepository) CustomerService {
	return &customerService{customers: customers}
}

func (s *customerService) Register(ctx context.Context, req RegisterCustomerRequest) (*model.Customer, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	gst := strings.ToUpper(strings.TrimSpace(req.GSTNumber))
	if !gstPattern.MatchString(gst) {
		return nil, apperror.InvalidArgument("Invalid GST number format")
	}
	phone := nonDigits.ReplaceAllString(req.ContactNumber, "")
	if !phonePattern.MatchString(phone) {
		return nil, apperror.InvalidArgument("Invalid contact number (10 digits required)")
	}

	customer := &model.Customer{
		CustomerName:      strings.TrimSpace(req.CustomerName),
		BusinessName:      strings.TrimSpace(req.BusinessName),
		ContactNumber:     phone,
		StreetAddress:     strings.TrimSpace(req.StreetAddress),
		Latitude:          *req.Latitude,
		Longitude:         *req.Longitude,
		GSTNumber:         gst,
		FoodLicenceNumber: strings.ToUpper(strings.TrimSpace(req.FoodLicenceNumber)),
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
		customer.Email = &email
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		var dup *repository.ErrDuplicate
		if errors.As(err, &dup) {
			return nil, apperror.InvalidArgument("%s already registered", duplicateLabel(dup.Field))
		}
		return nil, internalErr(err)
	}
	return customer, nil
}

func duplicateLabel(field string) string {
	switch field {
	case "gst_number":
		return "GST number"
	case "food_licence_number":
		return "Food licence number"
	case "email":
		return "Email"
	default:
		return "Customer"
	}
}

func (s *customerService) List(ctx context.Context) ([]model.Customer, error) {
	customers, err := s.customers.FindAll(ctx)
	return customers, internalErr(err)
}

func (s *customerService) Nearby(ctx context.Context, q NearbyQuery) ([]model.NearbyCustomer, error) {
	if q.Latitude == nil || q.Longitude == nil {
		return nil, apperror.InvalidArgument("Latitude and longitude required")
	}
	if err := validate(&q); err != nil {
		return nil, err
	}
	if q.Radius == 0 {
		q.Radius = defaultNearbyRadius
	}
	rows, err := s.customers.FindNearby(ctx, *q.Latitude, *q.Longitude, q.Radius)
	return rows, internalErr(err)
}

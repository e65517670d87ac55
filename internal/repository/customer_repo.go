package repository

import (
	"context"
	"errors"
	"strings"

	"fmcg-admin-api/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicate reports a unique constraint violation on Field.
type ErrDuplicate struct {
	Field string
}

func (e *ErrDuplicate) Error() string {
	return "duplicate " + e.Field
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	FindAll(ctx context.Context) ([]model.Customer, error)
	FindNearby(ctx context.Context, lat, lng, radiusMeters float64) ([]model.NearbyCustomer, error)
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db}
}

func (r *customerRepo) Create(ctx context.Context, customer *model.Customer) error {
	err := r.db.WithContext(ctx).Create(customer).Error
	if field, ok := uniqueViolation(err); ok {
		return &ErrDuplicate{Field: field}
	}
	return err
}

func (r *customerRepo) FindAll(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&customers).Error
	return customers, err
}

// earthRadiusMeters is the mean radius used by the haversine formula.
const earthRadiusMeters = 6371000

// FindNearby orders customers within radiusMeters of (lat, lng) by distance.
func (r *customerRepo) FindNearby(ctx context.Context, lat, lng, radiusMeters float64) ([]model.NearbyCustomer, error) {
	var rows []model.NearbyCustomer
	distance := `? * 2 * ASIN(SQRT(
		POWER(SIN(RADIANS(latitude - ?) / 2), 2) +
		COS(RADIANS(?)) * COS(RADIANS(latitude)) * POWER(SIN(RADIANS(longitude - ?) / 2), 2)
	))`
	err := r.db.WithContext(ctx).
		Table("(?) AS c", r.db.Model(&model.Customer{}).
			Select("customers.*, "+distance+" AS distance_meters", earthRadiusMeters, lat, lat, lng)).
		Where("c.distance_meters <= ?", radiusMeters).
		Order("c.distance_meters ASC").
		Find(&rows).Error
	return rows, err
}

// uniqueViolation maps a postgres 23505 error to the offending column.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return "", false
	}
	for _, field := range []string{"gst_number", "food_licence_number", "email"} {
		if strings.Contains(pgErr.ConstraintName, field) || strings.Contains(pgErr.Detail, field) {
			return field, true
		}
	}
	return pgErr.ConstraintName, true
}

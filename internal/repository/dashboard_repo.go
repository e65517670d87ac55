package repository

import (
	"context"
	"time"

	"fmcg-admin-api/internal/model"

	"gorm.io/gorm"
)

type DashboardRepository interface {
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

// StockMovementData is one day of the stock history chart
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DashboardStats is the overview card row
type DashboardStats struct {
	TotalProducts    int64 `json:"total_products"`
	TotalCompanies   int64 `json:"total_companies"`
	LowStockCount    int64 `json:"low_stock_count"`
	OutOfFreeStock   int64 `json:"out_of_free_stock_count"`
	LowExternalItems int64 `json:"low_external_item_count"`
	ActiveOffers     int64 `json:"active_offers"`
	PoolUnitsPending int64 `json:"pool_units_pending"`
	TotalCustomers   int64 `json:"total_customers"`
}

type dashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db}
}

// GetStockMovement sums stock history per day: positive changes are inbound,
// negative changes outbound.
func (r *dashboardRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	rows, err := r.db.WithContext(ctx).Model(&model.StockHistory{}).
		Select(`
			TO_CHAR(DATE(created_at), 'YYYY-MM-DD') as date,
			COALESCE(SUM(CASE WHEN change_amount > 0 THEN change_amount ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN change_amount < 0 THEN -change_amount ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, rows.Err()
}

func (r *dashboardRepo) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	steps := []*gorm.DB{
		db.Model(&model.Product{}).Count(&stats.TotalProducts),
		db.Model(&model.Company{}).Count(&stats.TotalCompanies),
		db.Model(&model.StockRecord{}).Where("quantity < low_stock_threshold").Count(&stats.LowStockCount),
		db.Model(&model.FreeStockRecord{}).Where("free_stock_quantity - allocated_to_offers <= 0").Count(&stats.OutOfFreeStock),
		db.Model(&model.ExternalItem{}).Where("stock_quantity < low_stock_threshold").Count(&stats.LowExternalItems),
		db.Model(&model.Offer{}).Where("is_active = ?", true).Count(&stats.ActiveOffers),
		db.Model(&model.OfferPool{}).Select("COALESCE(SUM(accumulated_quantity), 0)").Scan(&stats.PoolUnitsPending),
		db.Model(&model.Customer{}).Count(&stats.TotalCustomers),
	}
	for _, step := range steps {
		if step.Error != nil {
			return nil, step.Error
		}
	}

	return &stats, nil
}

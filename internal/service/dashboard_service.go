package service

import (
	"context"
	"time"

	"fmcg-admin-api/internal/repository"
)

const maxMovementDays = 90

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
}

type dashboardService struct {
	repo repository.DashboardRepository
}

func NewDashboardService(repo repository.DashboardRepository) DashboardService {
	return &dashboardService{repo: repo}
}

// GetStockMovement clamps days to 1..90.
func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	if days < 1 {
		days = 7
	}
	if days > maxMovementDays {
		days = maxMovementDays
	}
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	data, err := s.repo.GetStockMovement(ctx, startDate, endDate)
	return data, internalErr(err)
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	stats, err := s.repo.GetDashboardStats(ctx)
	return stats, internalErr(err)
}

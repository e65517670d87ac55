package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"fmcg-admin-api/internal/apperror"
	"fmcg-admin-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDashboard struct {
	start, end time.Time
	err        error
}

var _ repository.DashboardRepository = (*stubDashboard)(nil)

func (s *stubDashboard) GetStockMovement(_ context.Context, start, end time.Time) ([]repository.StockMovementData, error) {
	s.start, s.end = start, end
	if s.err != nil {
		return nil, s.err
	}
	return []repository.StockMovementData{{Date: "2026-10-01", Inbound: 50, Outbound: 5}}, nil
}

func (s *stubDashboard) GetDashboardStats(context.Context) (*repository.DashboardStats, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &repository.DashboardStats{}, nil
}

func windowDays(s *stubDashboard) int {
	return int(math.Round(s.end.Sub(s.start).Hours() / 24))
}

func TestStockMovement_ClampsWindow(t *testing.T) {
	cases := map[int]int{0: 7, -3: 7, 30: 30, 365: maxMovementDays}
	for in, want := range cases {
		repo := &stubDashboard{}
		svc := NewDashboardService(repo)

		data, err := svc.GetStockMovement(context.Background(), in)
		require.NoError(t, err)
		assert.Len(t, data, 1)
		assert.Equal(t, want, windowDays(repo), "days=%d", in)
	}
}

func TestDashboard_StorageFailureIsInternal(t *testing.T) {
	svc := NewDashboardService(&stubDashboard{err: errors.New("db down")})

	_, err := svc.GetDashboardStats(context.Background())
	assert.True(t, apperror.Is(err, apperror.KindInternal))

	_, err = svc.GetStockMovement(context.Background(), 7)
	assert.True(t, apperror.Is(err, apperror.KindInternal))
}

package dashboard

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/Ramchandran06/E-commerce-backend/pkg/errors"
)

// DailySales is the revenue booked on one calendar day, cancelled orders excluded.
type DailySales struct {
	Date       string          `gorm:"column:day" json:"date"`
	TotalSales decimal.Decimal `gorm:"column:total_sales" json:"totalSales"`
}

type Stats struct {
	TotalSales    decimal.Decimal `json:"totalSales"`
	TotalOrders   int64           `json:"totalOrders"`
	TotalProducts int64           `json:"totalProducts"`
}

type Service interface {
	SalesSummary(ctx context.Context) ([]DailySales, error)
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) SalesSummary(ctx context.Context) ([]DailySales, error) {
	rows, err := s.repo.DailySales(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales summary")
	}
	if rows == nil {
		rows = []DailySales{}
	}
	return rows, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dashboard stats")
	}
	return stats, nil
}

package dashboard

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Ramchandran06/E-commerce-backend/internal/repo"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
)

// dailySalesSQL is portable across postgres and sqlite.
const dailySalesSQL = `
SELECT CAST(DATE(created_at) AS TEXT) AS day, SUM(total_price) AS total_sales
FROM orders
WHERE order_status <> ?
GROUP BY CAST(DATE(created_at) AS TEXT)
ORDER BY day ASC`

type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

func (r *Repository) DailySales(ctx context.Context) ([]DailySales, error) {
	var rows []DailySales
	if err := r.base.DB(ctx).Raw(dailySalesSQL, enums.OrderStatusCancelled).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Stats(ctx context.Context) (*Stats, error) {
	var sales struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	db := r.base.DB(ctx)
	if err := db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_price), 0) AS total").
		Where("order_status <> ?", enums.OrderStatusCancelled).
		Scan(&sales).Error; err != nil {
		return nil, err
	}
	stats := Stats{TotalSales: sales.Total}
	if err := db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

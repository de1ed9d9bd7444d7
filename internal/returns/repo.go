package returns

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ramchandran06/E-commerce-backend/internal/repo"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
	"github.com/Ramchandran06/E-commerce-backend/pkg/pagination"
)

// Repository persists product returns.
type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{base: r.base.WithTx(tx)}
}

func (r *Repository) FindOrderItem(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.base.DB(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) ExistsForOrderProduct(ctx context.Context, orderID, productID uuid.UUID) (bool, error) {
	var n int64
	err := r.base.DB(ctx).
		Model(&models.ProductReturn{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Count(&n).Error
	return n > 0, err
}

func (r *Repository) Create(ctx context.Context, ret *models.ProductReturn) error {
	return r.base.DB(ctx).Create(ret).Error
}

func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.ProductReturn, error) {
	var ret models.ProductReturn
	if err := r.base.ForUpdate(ctx).Where("id = ?", id).First(&ret).Error; err != nil {
		return nil, err
	}
	return &ret, nil
}

// loadResolution joins the return with its order line, order, product and customer.
func (r *Repository) loadResolution(ctx context.Context, ret *models.ProductReturn) (*resolution, error) {
	var res resolution
	err := r.base.DB(ctx).
		Table("product_returns AS r").
		Select(`p.name AS product_name, u.full_name AS customer_name, u.email AS customer_email,
			oi.price_at_order, o.payment_method, o.payment_reference`).
		Joins("JOIN orders o ON o.id = r.order_id").
		Joins("JOIN order_items oi ON oi.id = r.order_item_id").
		Joins("JOIN products p ON p.id = r.product_id").
		Joins("JOIN users u ON u.id = r.user_id").
		Where("r.id = ?", ret.ID).
		Scan(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Resolve moves a pending return to status. Zero rows means another
// resolution won.
func (r *Repository) Resolve(ctx context.Context, id uuid.UUID, status enums.ReturnStatus, comment *string) (int64, error) {
	res := r.base.DB(ctx).
		Model(&models.ProductReturn{}).
		Where("id = ? AND status = ?", id, enums.ReturnStatusRequested).
		Updates(map[string]any{"status": status, "admin_comment": comment})
	return res.RowsAffected, res.Error
}

// MarkRefunded records the gateway refund on an approved return.
func (r *Repository) MarkRefunded(ctx context.Context, id uuid.UUID, refundRef string) (int64, error) {
	res := r.base.DB(ctx).
		Model(&models.ProductReturn{}).
		Where("id = ? AND status = ?", id, enums.ReturnStatusApproved).
		Updates(map[string]any{"status": enums.ReturnStatusRefunded, "refund_reference": refundRef})
	return res.RowsAffected, res.Error
}

func (r *Repository) ListPage(ctx context.Context, params pagination.Params) ([]AdminReturnRow, int64, error) {
	total, err := r.base.Count(ctx, &models.ProductReturn{})
	if err != nil {
		return nil, 0, err
	}
	var rows []AdminReturnRow
	err = r.base.DB(ctx).
		Table("product_returns AS r").
		Select(`r.id, r.order_id, p.name AS product_name, u.full_name AS customer_name,
			r.quantity, r.reason, r.status, r.admin_comment, r.requested_at`).
		Joins("JOIN users u ON u.id = r.user_id").
		Joins("JOIN products p ON p.id = r.product_id").
		Order("r.requested_at DESC").
		Scopes(repo.Paged(params)).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

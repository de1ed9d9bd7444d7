package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ramchandran06/E-commerce-backend/internal/repo"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
)

// Repository persists payment intents.
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

func (r *Repository) Create(ctx context.Context, intent *models.PaymentIntent) error {
	return r.base.DB(ctx).Create(intent).Error
}

func (r *Repository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	if err := r.base.DB(ctx).Where("gateway_order_id = ?", gatewayOrderID).First(&intent).Error; err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *Repository) FindByGatewayOrderIDForUpdate(ctx context.Context, gatewayOrderID string) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	if err := r.base.ForUpdate(ctx).Where("gateway_order_id = ?", gatewayOrderID).First(&intent).Error; err != nil {
		return nil, err
	}
	return &intent, nil
}

// MarkConsumed flips a created intent to consumed. It affects zero rows when
// the intent already left the created state.
func (r *Repository) MarkConsumed(ctx context.Context, intentID, orderID uuid.UUID, at time.Time) (int64, error) {
	res := r.base.DB(ctx).
		Model(&models.PaymentIntent{}).
		Where("id = ? AND status = ?", intentID, enums.PaymentIntentStatusCreated).
		Updates(map[string]any{
			"status":      enums.PaymentIntentStatusConsumed,
			"order_id":    orderID,
			"consumed_at": at,
		})
	return res.RowsAffected, res.Error
}

// MarkFailed records that a paid intent could not become an order. Only
// created or expired intents move, so an intent a concurrent verify already
// consumed affects zero rows.
func (r *Repository) MarkFailed(ctx context.Context, intentID uuid.UUID, code string, at time.Time) (int64, error) {
	res := r.base.DB(ctx).
		Model(&models.PaymentIntent{}).
		Where("id = ? AND status IN ?", intentID, []enums.PaymentIntentStatus{
			enums.PaymentIntentStatusCreated,
			enums.PaymentIntentStatusExpired,
		}).
		Updates(map[string]any{
			"status":       enums.PaymentIntentStatusFailed,
			"failure_code": code,
			"failed_at":    at,
		})
	return res.RowsAffected, res.Error
}

func (r *Repository) SetRefundID(ctx context.Context, intentID uuid.UUID, refundID string) error {
	return r.base.DB(ctx).
		Model(&models.PaymentIntent{}).
		Where("id = ?", intentID).
		Update("refund_id", refundID).Error
}

// ExpireCreatedBefore marks every intent still created before cutoff as expired.
func (r *Repository) ExpireCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.base.DB(ctx).
		Model(&models.PaymentIntent{}).
		Where("status = ? AND created_at < ?", enums.PaymentIntentStatusCreated, cutoff).
		Update("status", enums.PaymentIntentStatusExpired)
	return res.RowsAffected, res.Error
}

package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ramchandran06/E-commerce-backend/internal/repo"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
	"github.com/Ramchandran06/E-commerce-backend/pkg/pagination"
)

type repository struct {
	base repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.base.DB(ctx).Omit("Items").Create(order).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.base.DB(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.base.DB(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate loads the order holding its row lock until the
// surrounding transaction ends.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.base.ForUpdate(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.base.DB(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	res := r.base.DB(ctx).Model(&models.Order{}).Where("id = ?", id).Update("order_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error {
	res := r.base.DB(ctx).Model(&models.Order{}).Where("id = ?", id).Update("payment_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.base.DB(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) AddressBelongsTo(ctx context.Context, addressID, userID uuid.UUID) (bool, error) {
	var n int64
	err := r.base.DB(ctx).
		Model(&models.Address{}).
		Where("id = ? AND user_id = ?", addressID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.base.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) ListPage(ctx context.Context, params pagination.Params) ([]AdminOrderRow, int64, error) {
	total, err := r.base.Count(ctx, &models.Order{})
	if err != nil {
		return nil, 0, err
	}
	var rows []AdminOrderRow
	err = r.base.DB(ctx).
		Table("orders AS o").
		Select(`o.id, o.user_id, u.full_name AS customer_name, u.email AS customer_email,
			o.total_price, o.payment_method, o.payment_status, o.order_status, o.created_at`).
		Joins("JOIN users u ON u.id = o.user_id").
		Order("o.created_at DESC").
		Scopes(repo.Paged(params)).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ItemsWithProducts loads every item of the given orders in one query.
func (r *repository) ItemsWithProducts(ctx context.Context, orderIDs []uuid.UUID) ([]ItemRow, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var rows []ItemRow
	err := r.base.DB(ctx).
		Table("order_items AS oi").
		Select("oi.id, oi.order_id, oi.product_id, p.name AS product_name, p.thumbnail, oi.quantity, oi.price_at_order").
		Joins("JOIN products p ON p.id = oi.product_id").
		Where("oi.order_id IN ?", orderIDs).
		Order("oi.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) AddressesByID(ctx context.Context, ids []uuid.UUID) ([]models.Address, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var addrs []models.Address
	if err := r.base.DB(ctx).Where("id IN ?", ids).Find(&addrs).Error; err != nil {
		return nil, err
	}
	return addrs, nil
}

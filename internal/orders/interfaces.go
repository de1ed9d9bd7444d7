package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
	"github.com/Ramchandran06/E-commerce-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	AddressBelongsTo(ctx context.Context, addressID, userID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListPage(ctx context.Context, params pagination.Params) ([]AdminOrderRow, int64, error)
	ItemsWithProducts(ctx context.Context, orderIDs []uuid.UUID) ([]ItemRow, error)
	AddressesByID(ctx context.Context, ids []uuid.UUID) ([]models.Address, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service covers order reads and the post-checkout status machine.
type Service interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderView, error)
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderView, error)
	ListAll(ctx context.Context, params pagination.Params) (*AdminOrderList, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error)
}

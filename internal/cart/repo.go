package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ramchandran06/E-commerce-backend/internal/repo"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
)

// Repository exposes persistence operations for carts and their lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByUser returns the user's cart or gorm.ErrRecordNotFound.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var c models.Cart
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByUserForUpdate loads the user's cart holding its row lock until the
// surrounding transaction ends. Concurrent checkouts of one cart queue here.
func (r *Repository) FindByUserForUpdate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var c models.Cart
	if err := repo.NewBase(r.db).ForUpdate(ctx).Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// FindOrCreate returns the user's cart, creating it on first use.
func (r *Repository) FindOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	c, err := r.FindByUser(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	c = &models.Cart{UserID: userID}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// SnapshotLines resolves every cart line against its product in one query.
func (r *Repository) SnapshotLines(ctx context.Context, cartID uuid.UUID) ([]SnapshotLine, error) {
	var lines []SnapshotLine
	err := r.db.WithContext(ctx).
		Table("cart_items AS ci").
		Select("ci.product_id, ci.quantity, p.name, p.price, p.stock").
		Joins("JOIN products p ON p.id = ci.product_id").
		Where("ci.cart_id = ?", cartID).
		Order("ci.created_at ASC, ci.product_id ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// ItemsForUser returns the storefront view of the user's cart lines.
func (r *Repository) ItemsForUser(ctx context.Context, userID uuid.UUID) ([]ItemView, error) {
	var items []ItemView
	err := r.db.WithContext(ctx).
		Table("carts AS c").
		Select("ci.product_id, ci.quantity, p.name, p.price, p.discount_percentage, p.thumbnail, p.stock").
		Joins("JOIN cart_items ci ON ci.cart_id = c.id").
		Joins("JOIN products p ON p.id = ci.product_id").
		Where("c.user_id = ?", userID).
		Order("ci.created_at ASC, ci.product_id ASC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindItem loads a single line of the cart.
func (r *Repository) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a new cart line.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// IncrementItem adds qty to an existing line.
func (r *Repository) IncrementItem(ctx context.Context, itemID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", qty)).Error
}

// SetQuantity overwrites the quantity of the user's line for productID.
func (r *Repository) SetQuantity(ctx context.Context, cartID, productID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", qty)
	return res.RowsAffected, res.Error
}

// DeleteItem removes the line for productID.
func (r *Repository) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}).Error
}

// DeleteAllItems empties the cart. The cart row itself is kept.
func (r *Repository) DeleteAllItems(ctx context.Context, cartID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

// ProductExists reports whether the product is in the catalog.
func (r *Repository) ProductExists(ctx context.Context, productID uuid.UUID) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", productID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

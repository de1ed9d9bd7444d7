package inventory

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ramchandran06/E-commerce-backend/internal/repo"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
	pkgerrors "github.com/Ramchandran06/E-commerce-backend/pkg/errors"
)

// Ledger mutates products.stock. Every method runs on the caller's
// transaction; none of them commit on their own.
type Ledger interface {
	LockProducts(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) (map[uuid.UUID]models.Product, error)
	Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

type ledger struct{}

// NewLedger returns the gorm backed stock ledger.
func NewLedger() Ledger {
	return ledger{}
}

// LockProducts takes row locks on the given products in ascending id order so
// concurrent checkouts touching overlapping products cannot deadlock.
func (ledger) LockProducts(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for product lock")
	}
	ids := uniqueSorted(productIDs)
	if len(ids) == 0 {
		return map[uuid.UUID]models.Product{}, nil
	}

	var rows []models.Product
	if err := repo.NewBase(tx).ForUpdate(ctx).
		Where("id IN ?", ids).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock products")
	}

	locked := make(map[uuid.UUID]models.Product, len(rows))
	for _, row := range rows {
		locked[row.ID] = row
	}
	return locked, nil
}

// Reserve decrements stock by qty only when enough is on hand.
func (ledger) Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory reserve")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
	`, qty, productID, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve inventory")
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var product models.Product
	if err := tx.WithContext(ctx).Select("id", "name", "stock").First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product stock")
	}
	return pkgerrors.InsufficientStock(product.Name, qty, product.Stock)
}

// Release puts qty back on the shelf unconditionally.
func (ledger) Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory release")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, productID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release inventory")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func uniqueSorted(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

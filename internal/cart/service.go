package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
	pkgerrors "github.com/Ramchandran06/E-commerce-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SnapshotReader resolves a cart inside the checkout transaction.
type SnapshotReader interface {
	Snapshot(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (Snapshot, error)
	ClearLines(ctx context.Context, tx *gorm.DB, snapshot Snapshot) error
}

// Service exposes the shopper facing cart operations. Every mutation returns
// the refreshed cart.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	Add(ctx context.Context, userID, productID uuid.UUID, qty int) (*View, error)
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, qty int) (*View, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID) (*View, error)
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService builds the cart service.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// NewSnapshotReader returns the reader used by the order builder.
func NewSnapshotReader(repo *Repository) SnapshotReader {
	return snapshotReader{repo: repo}
}

type snapshotReader struct {
	repo *Repository
}

// Snapshot locks the cart row first when tx is set, so the lines read after
// it are the ones the transaction will clear.
func (s snapshotReader) Snapshot(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (Snapshot, error) {
	repo := s.repo.WithTx(tx)
	find := repo.FindByUser
	if tx != nil {
		find = repo.FindByUserForUpdate
	}
	c, err := find(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Snapshot{}, nil
		}
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	lines, err := repo.SnapshotLines(ctx, c.ID)
	if err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart lines")
	}
	return Snapshot{CartID: c.ID, Lines: lines}, nil
}

// ClearLines empties the snapshotted cart and fails with CONFLICT when the
// rows removed do not match the snapshot, which means another checkout or
// edit got to the cart first.
func (s snapshotReader) ClearLines(ctx context.Context, tx *gorm.DB, snapshot Snapshot) error {
	if snapshot.IsEmpty() {
		return pkgerrors.New(pkgerrors.CodeEmptyCart, "your cart is empty")
	}
	removed, err := s.repo.WithTx(tx).DeleteAllItems(ctx, snapshot.CartID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	if removed != int64(len(snapshot.Lines)) {
		return pkgerrors.New(pkgerrors.CodeConflict, "cart changed during checkout, please review it and try again").
			WithDetails(map[string]any{"expected_lines": len(snapshot.Lines), "removed_lines": removed})
	}
	return nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	items, err := s.repo.ItemsForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return newView(items), nil
}

func (s *service) Add(ctx context.Context, userID, productID uuid.UUID, qty int) (*View, error) {
	if productID == uuid.Nil || qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id and a valid quantity are required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		exists, err := repo.ProductExists(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}

		c, err := repo.FindOrCreate(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}

		item, err := repo.FindItem(ctx, c.ID, productID)
		switch {
		case err == nil:
			if err := repo.IncrementItem(ctx, item.ID, qty); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := repo.CreateItem(ctx, &models.CartItem{CartID: c.ID, ProductID: productID, Quantity: qty}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// UpdateQuantity sets the line quantity; anything below one removes the line.
func (s *service) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, qty int) (*View, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if qty < 1 {
		return s.Remove(ctx, userID, productID)
	}

	c, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found in cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	updated, err := s.repo.SetQuantity(ctx, c.ID, productID, qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	if updated == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found in cart")
	}
	return s.Get(ctx, userID)
}

func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) (*View, error) {
	c, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newView(nil), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := s.repo.DeleteItem(ctx, c.ID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return s.Get(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*View, error) {
	c, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newView(nil), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if _, err := s.repo.DeleteAllItems(ctx, c.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return newView(nil), nil
}

package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ramchandran06/E-commerce-backend/pkg/pagination"
)

// Base is embedded by the domain repositories. It carries either the pool
// or an open transaction; callers never need to know which.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// WithTx returns a copy bound to tx. A nil tx keeps the current handle.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx != nil {
		b.db = tx
	}
	return b
}

func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// ForUpdate adds SELECT ... FOR UPDATE. sqlite has no row locks and gorm
// drops the clause there.
func (b Base) ForUpdate(ctx context.Context) *gorm.DB {
	return b.DB(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

// Count returns the number of rows in model's table.
func (b Base) Count(ctx context.Context, model any) (int64, error) {
	var total int64
	err := b.DB(ctx).Model(model).Count(&total).Error
	return total, err
}

// Paged is a gorm scope applying the normalized limit and offset of p.
func Paged(p pagination.Params) func(*gorm.DB) *gorm.DB {
	p = p.Normalize()
	return func(q *gorm.DB) *gorm.DB {
		return q.Limit(p.Limit).Offset(p.Offset())
	}
}

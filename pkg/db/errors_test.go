package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "pgx any constraint", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "product_returns_order_product_key"}), want: true},
		{name: "pgx matching constraint", err: &pgconn.PgError{Code: "23505", ConstraintName: "product_returns_order_product_key"}, constraint: "product_returns_order_product_key", want: true},
		{name: "pgx other constraint", err: &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, constraint: "product_returns_order_product_key", want: false},
		{name: "pgx check violation", err: &pgconn.PgError{Code: "23514"}, want: false},
		{name: "pq violation", err: &pq.Error{Code: "23505", Constraint: "carts_user_id_key"}, constraint: "carts_user_id_key", want: true},
		{name: "sqlite text", err: errors.New("UNIQUE constraint failed: product_returns.order_id, product_returns.product_id"), want: true},
		{name: "sqlite text with constraint name", err: errors.New("UNIQUE constraint failed: product_returns.order_id"), constraint: "product_returns_order_product_key", want: true},
		{name: "gorm translated", err: gorm.ErrDuplicatedKey, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err, tt.constraint); got != tt.want {
				t.Fatalf("IsUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRecordNotFound(t *testing.T) {
	if !IsRecordNotFound(fmt.Errorf("load: %w", gorm.ErrRecordNotFound)) {
		t.Fatal("expected wrapped not found to match")
	}
	if IsRecordNotFound(errors.New("other")) {
		t.Fatal("unexpected match")
	}
}

package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Ramchandran06/E-commerce-backend/internal/cart"
	"github.com/Ramchandran06/E-commerce-backend/internal/inventory"
	"github.com/Ramchandran06/E-commerce-backend/internal/notifications"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
	pkgerrors "github.com/Ramchandran06/E-commerce-backend/pkg/errors"
	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
	"github.com/Ramchandran06/E-commerce-backend/pkg/metrics"
)

// Builder turns a user's cart into a committed order.
type Builder struct {
	repo     Repository
	tx       txRunner
	carts    cart.SnapshotReader
	ledger   inventory.Ledger
	notifier notifications.Notifier
	logg     *logger.Logger
	metrics  *metrics.OrderMetrics
}

// NewBuilder wires the checkout collaborators. metrics may be nil.
func NewBuilder(
	repo Repository,
	tx txRunner,
	carts cart.SnapshotReader,
	ledger inventory.Ledger,
	notifier notifications.Notifier,
	logg *logger.Logger,
	m *metrics.OrderMetrics,
) (*Builder, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart snapshot reader required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if notifier == nil {
		notifier = notifications.NopNotifier{}
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Builder{
		repo:     repo,
		tx:       tx,
		carts:    carts,
		ledger:   ledger,
		notifier: notifier,
		logg:     logg,
		metrics:  m,
	}, nil
}

// PlaceOrder locks the cart's products, freezes prices, reserves stock and
// clears the cart in one transaction. Either all of it commits or none.
func (b *Builder) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if err := validatePlaceOrder(input); err != nil {
		b.metrics.CheckoutFailed(string(pkgerrors.CodeValidation))
		return nil, err
	}

	var (
		order *models.Order
		user  *models.User
		lines []notifications.OrderLine
	)
	err := b.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := b.repo.WithTx(tx)

		owned, err := repo.AddressBelongsTo(ctx, input.AddressID, input.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check address")
		}
		if !owned {
			return pkgerrors.New(pkgerrors.CodeNotFound, "shipping address not found")
		}

		user, err = repo.FindUser(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}

		snapshot, err := b.carts.Snapshot(ctx, tx, input.UserID)
		if err != nil {
			return err
		}
		if snapshot.IsEmpty() {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "your cart is empty")
		}

		locked, err := b.ledger.LockProducts(ctx, tx, snapshot.ProductIDs())
		if err != nil {
			return err
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(snapshot.Lines))
		lines = make([]notifications.OrderLine, 0, len(snapshot.Lines))
		for _, line := range snapshot.Lines {
			product, ok := locked[line.ProductID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s no longer exists", line.ProductID))
			}
			if line.Quantity > product.Stock {
				return pkgerrors.InsufficientStock(product.Name, line.Quantity, product.Stock)
			}
			price := product.Price
			total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			items = append(items, models.OrderItem{
				ProductID:    product.ID,
				Quantity:     line.Quantity,
				PriceAtOrder: price,
			})
			lines = append(lines, notifications.OrderLine{Name: product.Name, Quantity: line.Quantity, UnitPrice: price})
		}

		addressID := input.AddressID
		order = &models.Order{
			UserID:           input.UserID,
			AddressID:        &addressID,
			TotalPrice:       total,
			PaymentMethod:    input.PaymentMethod,
			PaymentStatus:    input.PaymentMethod.InitialPaymentStatus(),
			OrderStatus:      enums.OrderStatusProcessing,
			PaymentReference: input.PaymentReference,
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}
		for _, item := range items {
			if err := b.ledger.Reserve(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if err := b.carts.ClearLines(ctx, tx, snapshot); err != nil {
			return err
		}
		if input.Finalize != nil {
			if err := input.Finalize(ctx, tx, order); err != nil {
				return err
			}
		}
		order.Items = items
		return nil
	})
	if err != nil {
		b.metrics.CheckoutFailed(string(codeOf(err)))
		return nil, err
	}

	b.metrics.OrderPlaced(string(order.PaymentMethod))
	logCtx := b.logg.WithOrderID(b.logg.WithUserID(ctx, input.UserID.String()), order.ID.String())
	b.logg.Info(logCtx, "order placed")
	b.notifyConfirmation(logCtx, user, order, lines)
	return order, nil
}

func (b *Builder) notifyConfirmation(ctx context.Context, user *models.User, order *models.Order, lines []notifications.OrderLine) {
	if user == nil || user.Email == "" {
		b.logg.Warn(ctx, "order confirmation skipped: customer email missing")
		return
	}
	msg, err := notifications.OrderConfirmationMessage(notifications.OrderConfirmation{
		To:            user.Email,
		CustomerName:  user.FullName,
		OrderID:       order.ID,
		PaymentMethod: order.PaymentMethod,
		Lines:         lines,
		Total:         order.TotalPrice,
	})
	if err != nil {
		b.logg.Error(ctx, "render order confirmation", err)
		return
	}
	b.notifier.Notify(ctx, msg)
}

func validatePlaceOrder(input PlaceOrderInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.AddressID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if input.PaymentMethod == enums.PaymentMethodOnline && (input.PaymentReference == nil || *input.PaymentReference == "") {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment reference required for online orders")
	}
	return nil
}

func codeOf(err error) pkgerrors.Code {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Code()
	}
	return pkgerrors.CodeInternal
}

package payments

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ramchandran06/E-commerce-backend/internal/cart"
	"github.com/Ramchandran06/E-commerce-backend/internal/orders"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
	pkgerrors "github.com/Ramchandran06/E-commerce-backend/pkg/errors"
	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
	"github.com/Ramchandran06/E-commerce-backend/pkg/razorpay"
)

// Gateway is the slice of the Razorpay client the payment flow needs.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency string) (*razorpay.Order, error)
	Refund(ctx context.Context, paymentID string, amountMinor int64) (*razorpay.Refund, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
	Currency() string
}

// OrderPlacer places an order from the user's cart.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, input orders.PlaceOrderInput) (*models.Order, error)
}

// refundOnFailure lists the checkout failures a retry with the same payment
// cannot fix. Anything else leaves the intent open for another attempt.
var refundOnFailure = []pkgerrors.Code{
	pkgerrors.CodeInsufficientStock,
	pkgerrors.CodeConflict,
	pkgerrors.CodeEmptyCart,
}

type Service interface {
	CreateIntent(ctx context.Context, userID uuid.UUID) (*IntentView, error)
	VerifyAndPlaceOrder(ctx context.Context, userID uuid.UUID, input VerifyInput) (*models.Order, error)
}

type ServiceParams struct {
	Repo    *Repository
	Carts   cart.SnapshotReader
	Gateway Gateway
	Orders  OrderPlacer
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	repo    *Repository
	carts   cart.SnapshotReader
	gateway Gateway
	orders  OrderPlacer
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payment intent repository required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart snapshot reader required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order placer required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:    params.Repo,
		carts:   params.Carts,
		gateway: params.Gateway,
		orders:  params.Orders,
		logg:    params.Logger,
		now:     now,
	}, nil
}

// CreateIntent prices the user's cart and opens a gateway order for it. The
// client never supplies the amount.
func (s *service) CreateIntent(ctx context.Context, userID uuid.UUID) (*IntentView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	snapshot, err := s.carts.Snapshot(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if snapshot.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "your cart is empty")
	}
	amount := razorpay.MinorUnits(snapshot.Total())
	currency := s.gateway.Currency()

	gwOrder, err := s.gateway.CreateOrder(ctx, amount, currency)
	if err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, userID.String()), "create razorpay order failed", err)
		return nil, err
	}

	intent := &models.PaymentIntent{
		UserID:         userID,
		GatewayOrderID: gwOrder.ID,
		AmountMinor:    gwOrder.Amount,
		Currency:       gwOrder.Currency,
		Receipt:        gwOrder.Receipt,
		Status:         enums.PaymentIntentStatusCreated,
	}
	if intent.Currency == "" {
		intent.Currency = currency
	}
	if err := s.repo.Create(ctx, intent); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist payment intent")
	}

	return &IntentView{
		ID:       intent.GatewayOrderID,
		Amount:   intent.AmountMinor,
		Currency: intent.Currency,
		Receipt:  intent.Receipt,
		KeyID:    s.gateway.KeyID(),
	}, nil
}

// VerifyAndPlaceOrder checks the callback signature before anything else,
// then places an Online order and consumes the intent in the same
// transaction.
func (s *service) VerifyAndPlaceOrder(ctx context.Context, userID uuid.UUID, input VerifyInput) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	input.GatewayOrderID = strings.TrimSpace(input.GatewayOrderID)
	input.PaymentID = strings.TrimSpace(input.PaymentID)

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"user_id":          userID.String(),
		"gateway_order_id": input.GatewayOrderID,
	})
	if !s.gateway.VerifySignature(input.GatewayOrderID, input.PaymentID, input.Signature) {
		s.logg.Warn(logCtx, "payment signature mismatch")
		return nil, pkgerrors.New(pkgerrors.CodePaymentVerification, "payment verification failed")
	}

	intent, err := s.repo.FindByGatewayOrderID(ctx, input.GatewayOrderID)
	if err != nil {
		return nil, intentNotFoundOr(err)
	}
	if err := checkIntent(intent, userID); err != nil {
		return nil, s.abandonPayment(logCtx, intent, input.PaymentID, err)
	}

	paymentRef := input.PaymentID
	order, err := s.orders.PlaceOrder(ctx, orders.PlaceOrderInput{
		UserID:           userID,
		AddressID:        input.AddressID,
		PaymentMethod:    enums.PaymentMethodOnline,
		PaymentReference: &paymentRef,
		Finalize:         s.consumeIntent(input.GatewayOrderID, userID),
	})
	if err != nil {
		return nil, s.abandonPayment(logCtx, intent, input.PaymentID, err)
	}
	s.logg.Info(s.logg.WithOrderID(logCtx, order.ID.String()), "online payment verified")
	return order, nil
}

// abandonPayment handles a verified payment that did not become an order. The
// payment id is always logged. For failures a retry cannot fix, the intent is
// marked failed and the payment refunded. cause is returned unchanged.
func (s *service) abandonPayment(ctx context.Context, intent *models.PaymentIntent, paymentID string, cause error) error {
	code := codeOf(cause)
	ctx = s.logg.WithFields(ctx, map[string]any{"payment_id": paymentID, "failure_code": string(code)})
	if code == pkgerrors.CodeAlreadyProcessed {
		s.logg.Warn(ctx, "payment already turned into an order")
		return cause
	}
	s.logg.Error(ctx, "verified payment did not produce an order", cause)
	if !slices.Contains(refundOnFailure, code) {
		return cause
	}

	n, err := s.repo.MarkFailed(ctx, intent.ID, string(code), s.now().UTC())
	if err != nil {
		s.logg.Error(ctx, "mark payment intent failed", err)
		return cause
	}
	if n == 0 {
		// Another verify consumed the intent; that order owns the payment.
		return cause
	}

	refund, err := s.gateway.Refund(ctx, paymentID, intent.AmountMinor)
	if err != nil {
		s.logg.Error(ctx, "refund of unplaced payment failed", err)
		return cause
	}
	if err := s.repo.SetRefundID(ctx, intent.ID, refund.ID); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "refund_id", refund.ID), "record refund id", err)
		return cause
	}
	s.logg.Info(s.logg.WithField(ctx, "refund_id", refund.ID), "unplaced payment refunded")
	return cause
}

// consumeIntent re-reads the intent under a row lock so two verify calls for
// the same gateway order cannot both produce an order.
func (s *service) consumeIntent(gatewayOrderID string, userID uuid.UUID) orders.FinalizeFunc {
	return func(ctx context.Context, tx *gorm.DB, order *models.Order) error {
		repo := s.repo.WithTx(tx)
		intent, err := repo.FindByGatewayOrderIDForUpdate(ctx, gatewayOrderID)
		if err != nil {
			return intentNotFoundOr(err)
		}
		if err := checkIntent(intent, userID); err != nil {
			return err
		}
		if got := razorpay.MinorUnits(order.TotalPrice); got != intent.AmountMinor {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart total changed since payment was initiated").
				WithDetails(map[string]any{"paid": intent.AmountMinor, "order_total": got})
		}
		n, err := repo.MarkConsumed(ctx, intent.ID, order.ID, s.now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume payment intent")
		}
		if n == 0 {
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "payment already used")
		}
		return nil
	}
}

func checkIntent(intent *models.PaymentIntent, userID uuid.UUID) error {
	if intent.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "payment does not belong to this user")
	}
	switch intent.Status {
	case enums.PaymentIntentStatusCreated:
		return nil
	case enums.PaymentIntentStatusConsumed:
		return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "payment already used").
			WithDetails(map[string]any{"status": string(intent.Status)})
	default:
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("payment intent is %s", intent.Status))
	}
}

func codeOf(err error) pkgerrors.Code {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Code()
	}
	return pkgerrors.CodeInternal
}

func intentNotFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment intent")
}

package returns

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Ramchandran06/E-commerce-backend/internal/inventory"
	"github.com/Ramchandran06/E-commerce-backend/internal/notifications"
	"github.com/Ramchandran06/E-commerce-backend/internal/orders"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
	pkgerrors "github.com/Ramchandran06/E-commerce-backend/pkg/errors"
	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
	"github.com/Ramchandran06/E-commerce-backend/pkg/metrics"
	"github.com/Ramchandran06/E-commerce-backend/pkg/pagination"
	"github.com/Ramchandran06/E-commerce-backend/pkg/razorpay"
)

const maxReasonLength = 1000

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Refunder issues gateway refunds.
type Refunder interface {
	Refund(ctx context.Context, paymentID string, amountMinor int64) (*razorpay.Refund, error)
}

type Service interface {
	RequestReturn(ctx context.Context, userID uuid.UUID, input RequestInput) (*models.ProductReturn, error)
	ResolveReturn(ctx context.Context, input ResolveInput) (*models.ProductReturn, error)
	ListAll(ctx context.Context, params pagination.Params) (*AdminReturnList, error)
}

type ServiceDeps struct {
	Repo     *Repository
	Orders   orders.Repository
	Tx       txRunner
	Ledger   inventory.Ledger
	Refunder Refunder
	Notifier notifications.Notifier
	Logger   *logger.Logger
	Metrics  *metrics.OrderMetrics
}

type service struct {
	repo     *Repository
	orders   orders.Repository
	tx       txRunner
	ledger   inventory.Ledger
	refunder Refunder
	notifier notifications.Notifier
	logg     *logger.Logger
	metrics  *metrics.OrderMetrics
}

func NewService(deps ServiceDeps) (Service, error) {
	switch {
	case deps.Repo == nil:
		return nil, fmt.Errorf("returns repository required")
	case deps.Orders == nil:
		return nil, fmt.Errorf("orders repository required")
	case deps.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case deps.Ledger == nil:
		return nil, fmt.Errorf("inventory ledger required")
	case deps.Refunder == nil:
		return nil, fmt.Errorf("refunder required")
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.NopNotifier{}
	}
	return &service{
		repo:     deps.Repo,
		orders:   deps.Orders,
		tx:       deps.Tx,
		ledger:   deps.Ledger,
		refunder: deps.Refunder,
		notifier: notifier,
		logg:     deps.Logger,
		metrics:  deps.Metrics,
	}, nil
}

func (s *service) RequestReturn(ctx context.Context, userID uuid.UUID, input RequestInput) (*models.ProductReturn, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	input.Reason = strings.TrimSpace(input.Reason)
	if err := validateRequest(input); err != nil {
		return nil, err
	}

	var ret *models.ProductReturn
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)

		item, err := repo.FindOrderItem(ctx, input.OrderItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
		}
		order, err := orderRepo.FindByIDForUpdate(ctx, item.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeNotEligible, "you can only request returns for your own delivered items")
		}
		if order.OrderStatus != enums.OrderStatusDelivered {
			return pkgerrors.New(pkgerrors.CodeNotEligible, "you can only request returns for delivered items").
				WithDetails(map[string]any{"current_status": order.OrderStatus.String()})
		}
		if input.Quantity > item.Quantity {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity cannot exceed the %d purchased", item.Quantity)).
				WithDetails(map[string]any{"field": "quantity", "max": item.Quantity})
		}

		exists, err := repo.ExistsForOrderProduct(ctx, order.ID, item.ProductID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing return")
		}
		if exists {
			return errDuplicateReturn()
		}

		ret = &models.ProductReturn{
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			OrderItemID: item.ID,
			UserID:      userID,
			Quantity:    input.Quantity,
			Reason:      input.Reason,
			Status:      enums.ReturnStatusRequested,
		}
		if err := repo.Create(ctx, ret); err != nil {
			if db.IsUniqueViolation(err, models.UniqueOrderProductConstraint) {
				return errDuplicateReturn()
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create return")
		}
		if err := orderRepo.UpdateStatus(ctx, order.ID, enums.OrderStatusReturnRequested); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.StatusChanged(enums.OrderStatusDelivered.String(), enums.OrderStatusReturnRequested.String())
	logCtx := s.logg.WithReturnID(s.logg.WithOrderID(ctx, ret.OrderID.String()), ret.ID.String())
	s.logg.Info(logCtx, "return requested")
	return ret, nil
}

// ResolveReturn applies the admin decision. Approval releases stock and marks
// the order Returned in one transaction; an online refund follows the commit
// and a refund failure leaves the return Approved.
func (s *service) ResolveReturn(ctx context.Context, input ResolveInput) (*models.ProductReturn, error) {
	if !input.Decision.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid return decision %q", input.Decision)).
			WithDetails(map[string]any{"field": "status", "allowed": []string{string(enums.ReturnDecisionApproved), string(enums.ReturnDecisionRejected)}})
	}
	var comment *string
	if c := strings.TrimSpace(input.AdminComment); c != "" {
		comment = &c
	}

	var (
		ret *models.ProductReturn
		res *resolution
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)

		var err error
		ret, err = repo.FindByIDForUpdate(ctx, input.ReturnID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "return request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load return")
		}
		if !ret.Status.IsPending() {
			return errAlreadyProcessed(ret.Status)
		}
		res, err = repo.loadResolution(ctx, ret)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load return details")
		}

		status := enums.ReturnStatusRejected
		if input.Decision == enums.ReturnDecisionApproved {
			status = enums.ReturnStatusApproved
			order, err := orderRepo.FindByIDForUpdate(ctx, ret.OrderID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
			}
			if !order.OrderStatus.CanTransitionTo(enums.OrderStatusReturned) {
				return pkgerrors.InvalidTransition("order", order.OrderStatus.String(), enums.OrderStatusReturned.String())
			}
			if err := s.ledger.Release(ctx, tx, ret.ProductID, ret.Quantity); err != nil {
				return err
			}
			if err := orderRepo.UpdateStatus(ctx, order.ID, enums.OrderStatusReturned); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
			}
		}

		n, err := repo.Resolve(ctx, ret.ID, status, comment)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update return")
		}
		if n == 0 {
			return errAlreadyProcessed(ret.Status)
		}
		ret.Status = status
		ret.AdminComment = comment
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithReturnID(s.logg.WithOrderID(ctx, ret.OrderID.String()), ret.ID.String())
	s.metrics.ReturnResolved(string(input.Decision))
	if input.Decision == enums.ReturnDecisionApproved {
		s.metrics.StatusChanged(enums.OrderStatusReturnRequested.String(), enums.OrderStatusReturned.String())
	}
	s.logg.Info(logCtx, "return "+strings.ToLower(ret.Status.String()))

	var refundErr error
	if ret.Status == enums.ReturnStatusApproved && res.refundable() {
		refundErr = s.refund(logCtx, ret, res)
	}
	s.notifyResolution(logCtx, ret, res)
	if refundErr != nil {
		return nil, refundErr
	}
	return ret, nil
}

func (s *service) refund(ctx context.Context, ret *models.ProductReturn, res *resolution) error {
	amount := razorpay.MinorUnits(res.PriceAtOrder.Mul(decimal.NewFromInt(int64(ret.Quantity))))
	refund, err := s.refunder.Refund(ctx, *res.PaymentReference, amount)
	if err != nil {
		s.metrics.Refund("failed")
		s.logg.Error(ctx, "refund failed; return left approved", err)
		if pkgerrors.As(err) == nil {
			return pkgerrors.Gateway(err, err.Error())
		}
		return err
	}
	s.metrics.Refund("succeeded")

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := s.repo.WithTx(tx).MarkRefunded(ctx, ret.ID, refund.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("return %s no longer approved", ret.ID)
		}
		return s.orders.WithTx(tx).UpdatePaymentStatus(ctx, ret.OrderID, enums.PaymentStatusRefunded)
	})
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "refund_id", refund.ID), "refund issued but not recorded", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record refund")
	}
	ret.Status = enums.ReturnStatusRefunded
	ret.RefundReference = &refund.ID
	return nil
}

func (s *service) notifyResolution(ctx context.Context, ret *models.ProductReturn, res *resolution) {
	comment := ""
	if ret.AdminComment != nil {
		comment = *ret.AdminComment
	}
	s.notifier.Notify(ctx, notifications.ReturnUpdateMessage(notifications.ReturnUpdate{
		To:           res.CustomerEmail,
		CustomerName: res.CustomerName,
		ReturnID:     ret.ID,
		ProductName:  res.ProductName,
		Status:       ret.Status,
		AdminComment: comment,
	}))
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) (*AdminReturnList, error) {
	params = params.Normalize()
	rows, total, err := s.repo.ListPage(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list returns")
	}
	return newAdminReturnList(rows, pagination.NewMeta(params, total)), nil
}

func validateRequest(input RequestInput) error {
	switch {
	case input.OrderItemID == uuid.Nil:
		return fieldError("orderItemId", "order item is required")
	case input.Reason == "":
		return fieldError("reason", "reason is required")
	case len(input.Reason) > maxReasonLength:
		return fieldError("reason", fmt.Sprintf("reason must be at most %d characters", maxReasonLength))
	case input.Quantity < 1:
		return fieldError("quantity", "quantity must be at least 1")
	}
	return nil
}

func fieldError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{"field": field})
}

func errDuplicateReturn() error {
	return pkgerrors.New(pkgerrors.CodeDuplicateReturn, "a return request for this item already exists")
}

func errAlreadyProcessed(status enums.ReturnStatus) error {
	return pkgerrors.New(pkgerrors.CodeAlreadyProcessed,
		fmt.Sprintf("this request has already been processed with status '%s'", status)).
		WithDetails(map[string]any{"current_status": status.String()})
}

package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ramchandran06/E-commerce-backend/internal/inventory"
	"github.com/Ramchandran06/E-commerce-backend/internal/notifications"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
	pkgerrors "github.com/Ramchandran06/E-commerce-backend/pkg/errors"
	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
	"github.com/Ramchandran06/E-commerce-backend/pkg/metrics"
	"github.com/Ramchandran06/E-commerce-backend/pkg/pagination"
)

type service struct {
	repo      Repository
	tx        txRunner
	ledger    inventory.Ledger
	notifier  notifications.Notifier
	logg      *logger.Logger
	metrics   *metrics.OrderMetrics
	ordersURL string
}

// ServiceDeps groups the order service collaborators.
type ServiceDeps struct {
	Repo     Repository
	Tx       txRunner
	Ledger   inventory.Ledger
	Notifier notifications.Notifier
	Logger   *logger.Logger
	Metrics  *metrics.OrderMetrics
	// OrdersURL is the storefront base used in status emails.
	OrdersURL string
}

func NewService(deps ServiceDeps) (Service, error) {
	if deps.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.NopNotifier{}
	}
	return &service{
		repo:      deps.Repo,
		tx:        deps.Tx,
		ledger:    deps.Ledger,
		notifier:  notifier,
		logg:      deps.Logger,
		metrics:   deps.Metrics,
		ordersURL: deps.OrdersURL,
	}, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return s.buildViews(ctx, orders)
}

func (s *service) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	views, err := s.buildViews(ctx, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// buildViews attaches items and addresses with one query each.
func (s *service) buildViews(ctx context.Context, orders []models.Order) ([]OrderView, error) {
	views := make([]OrderView, 0, len(orders))
	if len(orders) == 0 {
		return views, nil
	}
	orderIDs := make([]uuid.UUID, 0, len(orders))
	addressIDs := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
		if o.AddressID != nil {
			addressIDs = append(addressIDs, *o.AddressID)
		}
	}

	rows, err := s.repo.ItemsWithProducts(ctx, orderIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
	}
	itemsByOrder := groupItems(rows)

	addrs, err := s.repo.AddressesByID(ctx, addressIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load addresses")
	}
	addrByID := make(map[uuid.UUID]models.Address, len(addrs))
	for _, a := range addrs {
		addrByID[a.ID] = a
	}

	for _, o := range orders {
		view := OrderView{
			OrderID:          o.ID,
			OrderDate:        o.CreatedAt,
			TotalPrice:       o.TotalPrice,
			PaymentMethod:    o.PaymentMethod,
			PaymentStatus:    o.PaymentStatus,
			OrderStatus:      o.OrderStatus,
			PaymentReference: o.PaymentReference,
			Items:            itemsByOrder[o.ID],
		}
		if view.Items == nil {
			view.Items = []ItemView{}
		}
		if o.AddressID != nil {
			if a, ok := addrByID[*o.AddressID]; ok {
				view.ShippingAddress = addressView(a)
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) (*AdminOrderList, error) {
	params = params.Normalize()
	rows, total, err := s.repo.ListPage(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	items, err := s.repo.ItemsWithProducts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
	}
	itemsByOrder := groupItems(items)

	views := make([]AdminOrderView, 0, len(rows))
	for _, r := range rows {
		v := AdminOrderView{
			OrderID:       r.ID,
			OrderDate:     r.CreatedAt,
			TotalPrice:    r.TotalPrice,
			PaymentMethod: r.PaymentMethod,
			PaymentStatus: r.PaymentStatus,
			OrderStatus:   r.OrderStatus,
			CustomerName:  r.CustomerName,
			CustomerEmail: r.CustomerEmail,
			Items:         itemsByOrder[r.ID],
		}
		if v.Items == nil {
			v.Items = []ItemView{}
		}
		views = append(views, v)
	}
	return newAdminOrderList(views, pagination.NewMeta(params, total)), nil
}

// Cancel returns every item's quantity to stock and marks the order
// Cancelled. Only the owner may cancel and only while Processing.
func (s *service) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	var order *models.Order
	var from enums.OrderStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		order, err = repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return notFoundOr(err, "load order")
		}
		if order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "you do not have permission to cancel this order")
		}
		from = order.OrderStatus
		if !from.CanTransitionTo(enums.OrderStatusCancelled) {
			return pkgerrors.InvalidTransition("order", from.String(), enums.OrderStatusCancelled.String())
		}

		items, err := repo.FindItems(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}
		for _, item := range items {
			if err := s.ledger.Release(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		order.OrderStatus = enums.OrderStatusCancelled
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.StatusChanged(from.String(), enums.OrderStatusCancelled.String())
	s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "order cancelled")
	return order, nil
}

// UpdateStatus applies an admin shipping transition.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", status))
	}
	var order *models.Order
	var from enums.OrderStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		order, err = repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return notFoundOr(err, "load order")
		}
		from = order.OrderStatus
		if !status.IsAdminTarget() || !from.CanTransitionTo(status) {
			return pkgerrors.InvalidTransition("order", from.String(), status.String())
		}
		if err := repo.UpdateStatus(ctx, order.ID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		order.OrderStatus = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.StatusChanged(from.String(), status.String())
	logCtx := s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(logCtx, "order status updated to "+status.String())
	if status.NotifiesCustomer() {
		s.notifyStatus(logCtx, order)
	}
	return order, nil
}

func (s *service) notifyStatus(ctx context.Context, order *models.Order) {
	user, err := s.repo.FindUser(ctx, order.UserID)
	if err != nil {
		s.logg.Error(ctx, "status email skipped: load customer", err)
		return
	}
	s.notifier.Notify(ctx, notifications.StatusChangeMessage(notifications.StatusChange{
		To:           user.Email,
		CustomerName: user.FullName,
		OrderID:      order.ID,
		Status:       order.OrderStatus,
		OrdersURL:    s.ordersURL,
	}))
}

func groupItems(rows []ItemRow) map[uuid.UUID][]ItemView {
	out := make(map[uuid.UUID][]ItemView)
	for _, row := range rows {
		out[row.OrderID] = append(out[row.OrderID], itemView(row))
	}
	return out
}

func notFoundOr(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

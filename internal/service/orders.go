package service

import (
	"context"
	"strconv"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/errors"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/logging"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/store"
)

// loadOrders returns the list this call fetched, not the store snapshot, which
// a concurrent load may have replaced.
func (s *Backoffice) loadOrders(ctx context.Context, q store.Query) ([]models.Order, error) {
	data, err := s.load(ctx, store.SliceOrders, q)
	if err != nil {
		return nil, err
	}
	items, _ := data.([]models.Order)
	if items == nil {
		items = []models.Order{}
	}
	return items, nil
}

// ListOrders reloads every order.
func (s *Backoffice) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.loadOrders(ctx, store.Query{})
}

// OrdersByStatus reloads the orders in one status.
func (s *Backoffice) OrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	if status == "" {
		return s.ListOrders(ctx)
	}
	if !status.Valid() {
		err := errors.NewValidationError("status", "unknown status "+string(status))
		s.fail(err)
		return nil, err
	}
	return s.loadOrders(ctx, store.Query{Kind: QueryStatus, Arg: string(status)})
}

// OrdersByUser reloads the orders placed by one user.
func (s *Backoffice) OrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	return s.loadOrders(ctx, store.Query{Kind: QueryUser, Arg: strconv.FormatInt(userID, 10)})
}

// GetOrder fetches a single order. The store is left untouched.
func (s *Backoffice) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	return order, nil
}

// CreateOrder places an order and reloads the order list.
func (s *Backoffice) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		s.fail(err)
		return nil, err
	}

	s.logger.Info("Creating order", logging.Fields{
		"user_id":    req.UserID,
		"item_count": len(req.Items),
	})

	var created *models.Order
	err := s.mutate(ctx, write{
		entity:  "order",
		action:  "create",
		slice:   store.SliceOrders,
		success: "Order created",
	}, func(ctx context.Context) (interface{}, error) {
		o, err := s.orders.CreateOrder(ctx, req)
		created = o
		return o, err
	})
	return created, err
}

// AdvanceOrder moves an order to its next status. Terminal orders are
// rejected without calling the order service.
func (s *Backoffice) AdvanceOrder(ctx context.Context, id int64) (*models.Order, error) {
	current, err := s.currentStatus(ctx, id)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	next, ok := current.NextStatus()
	if !ok {
		err := ValidateStatusTransition(current, models.OrderStatusDelivered)
		s.fail(err)
		return nil, err
	}
	return s.changeStatus(ctx, id, current, next)
}

// SetOrderStatus moves an order to status if the lifecycle allows it.
func (s *Backoffice) SetOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	current, err := s.currentStatus(ctx, id)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	if err := ValidateStatusTransition(current, status); err != nil {
		s.fail(err)
		return nil, err
	}
	return s.changeStatus(ctx, id, current, status)
}

func (s *Backoffice) changeStatus(ctx context.Context, id int64, from, to models.OrderStatus) (*models.Order, error) {
	s.logger.Info("Updating order status", logging.Fields{
		"order_id":        id,
		"previous_status": from,
		"new_status":      to,
	})

	var updated *models.Order
	err := s.mutate(ctx, write{
		entity:   "order",
		action:   "status_" + string(to),
		entityID: idString(id),
		slice:    store.SliceOrders,
		success:  "Order status updated: " + string(to),
	}, func(ctx context.Context) (interface{}, error) {
		o, err := s.orders.UpdateOrderStatus(ctx, id, to)
		updated = o
		return o, err
	})
	return updated, err
}

// CancelOrder cancels a non-terminal order through DELETE on the order
// service and reloads the order list.
func (s *Backoffice) CancelOrder(ctx context.Context, id int64) error {
	current, err := s.currentStatus(ctx, id)
	if err != nil {
		s.fail(err)
		return err
	}
	if err := ValidateStatusTransition(current, models.OrderStatusCancelled); err != nil {
		s.fail(err)
		return err
	}

	return s.mutate(ctx, write{
		entity:   "order",
		action:   "cancel",
		entityID: idString(id),
		slice:    store.SliceOrders,
		success:  "Order cancelled",
	}, func(ctx context.Context) (interface{}, error) {
		return nil, s.orders.DeleteOrder(ctx, id)
	})
}

// currentStatus reads the status from the loaded orders, falling back to the
// order service for orders outside the current view.
func (s *Backoffice) currentStatus(ctx context.Context, id int64) (models.OrderStatus, error) {
	for _, o := range s.store.Snapshot().Orders {
		if o.ID == id {
			return o.Status, nil
		}
	}
	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return "", err
	}
	if order == nil {
		return "", errors.ErrNotFound
	}
	return order.Status, nil
}

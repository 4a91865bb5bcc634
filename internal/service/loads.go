package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/logging"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/store"
)

// Query kinds understood by the list loaders.
const (
	QuerySearch    = "search"
	QueryCategory  = "category"
	QueryAvailable = "available"
	QueryActive    = "active"
	QueryStatus    = "status"
	QueryUser      = "user"
)

// LoadAll loads the three slices concurrently. Each load only touches its
// own slice, and one failure does not stop the others.
func (s *Backoffice) LoadAll(ctx context.Context) error {
	var g errgroup.Group
	for _, slice := range store.Slices {
		slice := slice
		g.Go(func() error {
			_, err := s.load(ctx, slice, store.Query{})
			return err
		})
	}
	return g.Wait()
}

// Refresh reloads slice with the query that last filled it.
func (s *Backoffice) Refresh(ctx context.Context, slice store.Slice) error {
	return s.reload(ctx, slice)
}

func (s *Backoffice) reload(ctx context.Context, slice store.Slice) error {
	q := s.store.Snapshot().Queries[slice]
	_, err := s.load(ctx, slice, q)
	return err
}

// Warm fills empty slices from the snapshot cache. It returns the number of
// slices restored.
func (s *Backoffice) Warm(ctx context.Context) int {
	if !s.config.Features.EnableSnapshotCache {
		return 0
	}

	warmed := 0
	for _, slice := range store.Slices {
		ticket := s.store.Begin(slice)
		action, ok, err := s.loadSnapshot(ctx, slice)
		if err != nil {
			s.logger.Warn("Failed to read snapshot", logging.Fields{
				"slice": slice,
				"error": err.Error(),
			})
			continue
		}
		if ok && s.store.Commit(ticket, action) {
			warmed++
		}
	}

	s.logger.Info("Store warmed from snapshot cache", logging.Fields{"slices": warmed})
	return warmed
}

func (s *Backoffice) loadSnapshot(ctx context.Context, slice store.Slice) (store.Action, bool, error) {
	switch slice {
	case store.SliceProducts:
		var products []models.Product
		ok, err := s.cache.Load(ctx, slice, &products)
		return store.ProductsLoaded{Products: products}, ok, err
	case store.SliceUsers:
		var users []models.User
		ok, err := s.cache.Load(ctx, slice, &users)
		return store.UsersLoaded{Users: users}, ok, err
	case store.SliceOrders:
		var orders []models.Order
		ok, err := s.cache.Load(ctx, slice, &orders)
		return store.OrdersLoaded{Orders: orders}, ok, err
	}
	return nil, false, fmt.Errorf("unknown slice %q", slice)
}

// load fetches slice with q and commits it under a fresh ticket. The fetched
// list is always returned to the caller. A response overtaken by a later load
// of the same slice is not committed, and its error does not reach the error
// slot.
func (s *Backoffice) load(ctx context.Context, slice store.Slice, q store.Query) (interface{}, error) {
	ticket := s.store.Begin(slice)

	action, data, err := s.fetch(ctx, slice, q)
	if err != nil {
		s.logger.Error("Failed to load slice", logging.Fields{
			"slice": slice,
			"query": q.Kind,
			"error": err.Error(),
		})
		if s.store.IsCurrent(ticket) {
			s.fail(err)
		}
		return nil, err
	}

	if !s.store.Commit(ticket, action) {
		s.logger.Debug("Discarded overtaken load", logging.Fields{
			"slice": slice,
			"query": q.Kind,
		})
		return data, nil
	}

	if s.config.Features.EnableSnapshotCache && q == (store.Query{}) {
		if err := s.cache.Save(ctx, slice, data); err != nil {
			s.logger.Warn("Failed to save snapshot", logging.Fields{
				"slice": slice,
				"error": err.Error(),
			})
		}
	}
	return data, nil
}

func (s *Backoffice) fetch(ctx context.Context, slice store.Slice, q store.Query) (store.Action, interface{}, error) {
	switch slice {
	case store.SliceProducts:
		products, err := s.fetchProducts(ctx, q)
		return store.ProductsLoaded{Products: products, Query: q}, products, err
	case store.SliceUsers:
		users, err := s.fetchUsers(ctx, q)
		return store.UsersLoaded{Users: users, Query: q}, users, err
	case store.SliceOrders:
		orders, err := s.fetchOrders(ctx, q)
		return store.OrdersLoaded{Orders: orders, Query: q}, orders, err
	}
	return nil, nil, fmt.Errorf("unknown slice %q", slice)
}

func (s *Backoffice) fetchProducts(ctx context.Context, q store.Query) ([]models.Product, error) {
	switch q.Kind {
	case QuerySearch:
		return s.products.SearchProducts(ctx, q.Arg)
	case QueryCategory:
		return s.products.ProductsByCategory(ctx, models.Category(q.Arg))
	case QueryAvailable:
		return s.products.AvailableProducts(ctx)
	default:
		return s.products.ListProducts(ctx)
	}
}

func (s *Backoffice) fetchUsers(ctx context.Context, q store.Query) ([]models.User, error) {
	switch q.Kind {
	case QuerySearch:
		return s.users.SearchUsers(ctx, q.Arg)
	case QueryActive:
		return s.users.ActiveUsers(ctx)
	default:
		return s.users.ListUsers(ctx)
	}
}

func (s *Backoffice) fetchOrders(ctx context.Context, q store.Query) ([]models.Order, error) {
	switch q.Kind {
	case QueryStatus:
		return s.orders.OrdersByStatus(ctx, models.OrderStatus(q.Arg))
	case QueryUser:
		var userID int64
		if _, err := fmt.Sscan(q.Arg, &userID); err != nil {
			return nil, err
		}
		return s.orders.OrdersByUser(ctx, userID)
	default:
		return s.orders.ListOrders(ctx)
	}
}

package service

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/derived"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/logging"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/store"
)

// loadProducts returns the list this call fetched, not the store snapshot, which
// a concurrent load may have replaced.
func (s *Backoffice) loadProducts(ctx context.Context, q store.Query) ([]models.Product, error) {
	data, err := s.load(ctx, store.SliceProducts, q)
	if err != nil {
		return nil, err
	}
	items, _ := data.([]models.Product)
	if items == nil {
		items = []models.Product{}
	}
	return items, nil
}

// ListProducts reloads the full catalogue.
func (s *Backoffice) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.loadProducts(ctx, store.Query{})
}

// SearchProducts reloads the catalogue filtered by name on the product service.
func (s *Backoffice) SearchProducts(ctx context.Context, name string) ([]models.Product, error) {
	if name == "" {
		return s.ListProducts(ctx)
	}
	return s.loadProducts(ctx, store.Query{Kind: QuerySearch, Arg: name})
}

// ProductsByCategory reloads the products of one category.
func (s *Backoffice) ProductsByCategory(ctx context.Context, category models.Category) ([]models.Product, error) {
	if !category.Valid() {
		err := invalidCategory(category)
		s.fail(err)
		return nil, err
	}
	return s.loadProducts(ctx, store.Query{Kind: QueryCategory, Arg: string(category)})
}

// AvailableProducts reloads the products the service reports as available.
func (s *Backoffice) AvailableProducts(ctx context.Context) ([]models.Product, error) {
	return s.loadProducts(ctx, store.Query{Kind: QueryAvailable})
}

// FilterProducts applies f to the loaded catalogue without calling the backend.
func (s *Backoffice) FilterProducts(f derived.ProductFilter) []models.Product {
	return derived.FilterProducts(s.store.Snapshot().Products, f)
}

// GetProduct fetches a single product. The store is left untouched.
func (s *Backoffice) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.products.GetProduct(ctx, id)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	return product, nil
}

// CreateProduct creates a product and reloads the catalogue.
func (s *Backoffice) CreateProduct(ctx context.Context, req *models.ProductRequest) (*models.Product, error) {
	if err := req.Validate(); err != nil {
		s.fail(err)
		return nil, err
	}

	s.logger.Info("Creating product", logging.Fields{"name": req.Name})

	var created *models.Product
	err := s.mutate(ctx, write{
		entity:  "product",
		action:  "create",
		slice:   store.SliceProducts,
		success: "Product created",
	}, func(ctx context.Context) (interface{}, error) {
		p, err := s.products.CreateProduct(ctx, req)
		created = p
		return p, err
	})
	return created, err
}

// UpdateProduct replaces a product and reloads the catalogue.
func (s *Backoffice) UpdateProduct(ctx context.Context, id int64, req *models.ProductRequest) (*models.Product, error) {
	if err := req.Validate(); err != nil {
		s.fail(err)
		return nil, err
	}

	var updated *models.Product
	err := s.mutate(ctx, write{
		entity:   "product",
		action:   "update",
		entityID: idString(id),
		slice:    store.SliceProducts,
		success:  "Product updated",
	}, func(ctx context.Context) (interface{}, error) {
		p, err := s.products.UpdateProduct(ctx, id, req)
		updated = p
		return p, err
	})
	return updated, err
}

// DeleteProduct deletes a product and reloads the catalogue. A failed delete
// leaves the loaded catalogue as it was.
func (s *Backoffice) DeleteProduct(ctx context.Context, id int64) error {
	return s.mutate(ctx, write{
		entity:   "product",
		action:   "delete",
		entityID: idString(id),
		slice:    store.SliceProducts,
		success:  "Product deleted",
	}, func(ctx context.Context) (interface{}, error) {
		return nil, s.products.DeleteProduct(ctx, id)
	})
}

// UpdateStock sets the stock of a product and reloads the catalogue.
func (s *Backoffice) UpdateStock(ctx context.Context, id int64, stock int) (*models.Product, error) {
	req := &models.StockUpdateRequest{Stock: stock}
	if err := req.Validate(); err != nil {
		s.fail(err)
		return nil, err
	}

	var updated *models.Product
	err := s.mutate(ctx, write{
		entity:   "product",
		action:   "update_stock",
		entityID: idString(id),
		slice:    store.SliceProducts,
		success:  "Stock updated",
	}, func(ctx context.Context) (interface{}, error) {
		p, err := s.products.UpdateStock(ctx, id, stock)
		updated = p
		if p == nil && err == nil {
			return req, nil
		}
		return p, err
	})
	return updated, err
}

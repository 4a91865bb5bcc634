package service

import (
	"math"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
)

// OrderEstimate is the preview total of a draft order. The order service
// computes the real total when the order is created.
type OrderEstimate struct {
	Items    []EstimateLine `json:"items"`
	Estimate float64        `json:"estimate"`
}

// EstimateLine prices one draft line against the loaded catalogue.
type EstimateLine struct {
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Subtotal    float64 `json:"subtotal"`
	Known       bool    `json:"known"`
	InStock     bool    `json:"inStock"`
}

// EstimateOrder prices items against the loaded products.
func (s *Backoffice) EstimateOrder(items []models.OrderItemRequest) OrderEstimate {
	products := s.store.Snapshot().Products
	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]EstimateLine, 0, len(items))
	for _, item := range items {
		line := EstimateLine{ProductID: item.ProductID, Quantity: item.Quantity}
		if p, ok := byID[item.ProductID]; ok {
			line.Known = true
			line.ProductName = p.Name
			line.UnitPrice = p.Price
			line.Subtotal = roundCents(p.Price * float64(item.Quantity))
			line.InStock = item.Quantity <= p.Stock
		}
		lines = append(lines, line)
	}

	return OrderEstimate{
		Items:    lines,
		Estimate: roundCents(models.EstimateTotal(items, products)),
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

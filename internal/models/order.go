package models

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var nextStatus = map[OrderStatus]OrderStatus{
	OrderStatusPending:   OrderStatusConfirmed,
	OrderStatusConfirmed: OrderStatusShipped,
	OrderStatusShipped:   OrderStatusDelivered,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition may leave s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanAdvance reports whether s has a forward successor.
func (s OrderStatus) CanAdvance() bool {
	_, ok := nextStatus[s]
	return ok
}

// NextStatus returns the forward successor of s.
func (s OrderStatus) NextStatus() (OrderStatus, bool) {
	next, ok := nextStatus[s]
	return next, ok
}

// CanCancel reports whether CANCELLED is reachable from s.
func (s OrderStatus) CanCancel() bool {
	return s.Valid() && !s.IsTerminal()
}

// CanTransition reports whether to is the successor of s or a cancellation.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if to == OrderStatusCancelled {
		return s.CanCancel()
	}
	next, ok := nextStatus[s]
	return ok && next == to
}

// OrderItem is a line of an order. ProductName and UnitPrice are snapshots
// taken by the order service when the order was placed.
type OrderItem struct {
	ProductID   int64   `json:"productId" validate:"gt=0"`
	ProductName string  `json:"productName,omitempty"`
	Quantity    int     `json:"quantity" validate:"gt=0"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
	Subtotal    float64 `json:"subtotal,omitempty" validate:"gte=0"`
}

// Order is owned by the order service. TotalAmount is authoritative as
// returned; the back office never recomputes it.
type Order struct {
	ID              int64       `json:"id" validate:"gt=0"`
	UserID          int64       `json:"userId" validate:"gt=0"`
	Status          OrderStatus `json:"status" validate:"oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
	ShippingAddress string      `json:"shippingAddress"`
	TotalAmount     float64     `json:"totalAmount" validate:"gte=0"`
	OrderDate       *Timestamp  `json:"orderDate,omitempty"`
	Items           []OrderItem `json:"items" validate:"dive"`
}

// Validate checks an order decoded from the order service.
func (o *Order) Validate() error {
	return validateStruct(o)
}

// OrderItemRequest is a line of a new order.
type OrderItemRequest struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gt=0"`
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	UserID          int64              `json:"userId" validate:"gt=0"`
	ShippingAddress string             `json:"shippingAddress" validate:"required"`
	Items           []OrderItemRequest `json:"items" validate:"min=1,dive"`
}

// Validate checks a new order before it is sent.
func (r *CreateOrderRequest) Validate() error {
	return validateStruct(r)
}

// StatusUpdateRequest is the body of PUT /orders/{id}/status.
type StatusUpdateRequest struct {
	Status OrderStatus `json:"status" validate:"oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
}

// Validate rejects unknown statuses.
func (r *StatusUpdateRequest) Validate() error {
	return validateStruct(r)
}

// EstimateTotal prices items against the loaded catalogue. The result is a
// preview only; the order service computes the real total. Unknown products
// contribute nothing.
func EstimateTotal(items []OrderItemRequest, products []Product) float64 {
	prices := make(map[int64]float64, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}
	var total float64
	for _, item := range items {
		total += prices[item.ProductID] * float64(item.Quantity)
	}
	return total
}

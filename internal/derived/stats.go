// Package derived computes dashboard aggregates, product filters and user
// display names from loaded entity lists. Every function is pure: it reads
// only its arguments and never modifies them.
package derived

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
)

// DefaultLowStockThreshold is the stock level below which a product is low.
const DefaultLowStockThreshold = 5

// OrderStats summarises the loaded orders. TotalRevenue is not rounded.
type OrderStats struct {
	TotalRevenue    float64 `json:"totalRevenue"`
	PendingOrders   int     `json:"pendingOrders"`
	DeliveredOrders int     `json:"deliveredOrders"`
	OrderCount      int     `json:"orderCount"`
}

// ComputeOrderStats sums totalAmount as returned by the order service and
// counts pending and delivered orders.
func ComputeOrderStats(orders []models.Order) OrderStats {
	stats := OrderStats{OrderCount: len(orders)}
	for _, o := range orders {
		stats.TotalRevenue += o.TotalAmount
		switch o.Status {
		case models.OrderStatusPending:
			stats.PendingOrders++
		case models.OrderStatusDelivered:
			stats.DeliveredOrders++
		}
	}
	return stats
}

// IsLowStock reports stock < threshold. The active flag is ignored.
func IsLowStock(p models.Product, threshold int) bool {
	return p.Stock < threshold
}

// LowStockCount counts products for which IsLowStock holds.
func LowStockCount(products []models.Product, threshold int) int {
	n := 0
	for _, p := range products {
		if IsLowStock(p, threshold) {
			n++
		}
	}
	return n
}

// TotalStock sums stock over every product.
func TotalStock(products []models.Product) int {
	total := 0
	for _, p := range products {
		total += p.Stock
	}
	return total
}

// ActiveUserCount counts users whose active flag is not false.
func ActiveUserCount(users []models.User) int {
	n := 0
	for _, u := range users {
		if u.IsActive() {
			n++
		}
	}
	return n
}

// DisplayName is "first last" trimmed, else the email, else "User #<id>".
func DisplayName(u models.User) string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if email := strings.TrimSpace(u.Email); email != "" {
		return email
	}
	return FallbackName(u.ID)
}

// FallbackName is the label used for a user id with no loaded user.
func FallbackName(id int64) string {
	return "User #" + strconv.FormatInt(id, 10)
}

// DisplayNames builds a fresh id to name map for users.
func DisplayNames(users []models.User) map[int64]string {
	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = DisplayName(u)
	}
	return names
}

// NameFor resolves id against names, falling back to FallbackName.
func NameFor(names map[int64]string, id int64) string {
	if name, ok := names[id]; ok {
		return name
	}
	return FallbackName(id)
}

// CategoryHistogram counts products per category. Every known category is
// present, with zero when no product carries it.
func CategoryHistogram(products []models.Product) map[models.Category]int {
	hist := make(map[models.Category]int, len(models.Categories))
	for _, c := range models.Categories {
		hist[c] = 0
	}
	for _, p := range products {
		if p.Category != "" {
			hist[p.Category]++
		}
	}
	return hist
}

// StatusHistogram counts orders per status, zero-filled like CategoryHistogram.
func StatusHistogram(orders []models.Order) map[models.OrderStatus]int {
	hist := make(map[models.OrderStatus]int, len(models.OrderStatuses))
	for _, s := range models.OrderStatuses {
		hist[s] = 0
	}
	for _, o := range orders {
		hist[o.Status]++
	}
	return hist
}

// RecentOrders returns the n most recent orders, newest first. Orders without
// a date sort last; ties go to the higher id.
func RecentOrders(orders []models.Order, n int) []models.Order {
	out := make([]models.Order, len(orders))
	copy(out, orders)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].OrderDate, out[j].OrderDate
		switch {
		case a == nil && b == nil:
			return out[i].ID > out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(b.Time):
			return a.After(b.Time)
		default:
			return out[i].ID > out[j].ID
		}
	})
	return head(out, n)
}

// CriticalProducts lists low-stock products, lowest stock first.
func CriticalProducts(products []models.Product, threshold int) []models.Product {
	out := make([]models.Product, 0)
	for _, p := range products {
		if IsLowStock(p, threshold) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out
}

// TopStocked returns the n products with the most stock.
func TopStocked(products []models.Product, n int) []models.Product {
	out := make([]models.Product, len(products))
	copy(out, products)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stock > out[j].Stock })
	return head(out, n)
}

func head[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}

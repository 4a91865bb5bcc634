package derived

import "github.com/tm-acme-shop/acme-shop-backoffice/internal/models"

// DashboardOptions sizes the dashboard lists.
type DashboardOptions struct {
	RecentOrders      int
	TopProducts       int
	LowStockThreshold int
}

// OrderSummary is a recent order with its customer name resolved.
type OrderSummary struct {
	ID          int64              `json:"id"`
	UserID      int64              `json:"userId"`
	UserName    string             `json:"userName"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount float64            `json:"totalAmount"`
	OrderDate   *models.Timestamp  `json:"orderDate,omitempty"`
}

// Dashboard is the aggregate shown on the back-office home screen.
type Dashboard struct {
	Orders           OrderStats                 `json:"orders"`
	LowStock         int                        `json:"lowStock"`
	TotalStock       int                        `json:"totalStock"`
	ProductCount     int                        `json:"productCount"`
	ActiveUsers      int                        `json:"activeUsers"`
	UserCount        int                        `json:"userCount"`
	Categories       map[models.Category]int    `json:"categories"`
	Statuses         map[models.OrderStatus]int `json:"statuses"`
	RecentOrders     []OrderSummary             `json:"recentOrders"`
	CriticalProducts []models.Product           `json:"criticalProducts"`
	TopStocked       []models.Product           `json:"topStocked"`
}

// BuildDashboard recomputes every aggregate from the three lists.
func BuildDashboard(products []models.Product, users []models.User, orders []models.Order, opts DashboardOptions) Dashboard {
	names := DisplayNames(users)

	recent := RecentOrders(orders, opts.RecentOrders)
	summaries := make([]OrderSummary, 0, len(recent))
	for _, o := range recent {
		summaries = append(summaries, OrderSummary{
			ID:          o.ID,
			UserID:      o.UserID,
			UserName:    NameFor(names, o.UserID),
			Status:      o.Status,
			TotalAmount: o.TotalAmount,
			OrderDate:   o.OrderDate,
		})
	}

	return Dashboard{
		Orders:           ComputeOrderStats(orders),
		LowStock:         LowStockCount(products, opts.LowStockThreshold),
		TotalStock:       TotalStock(products),
		ProductCount:     len(products),
		ActiveUsers:      ActiveUserCount(users),
		UserCount:        len(users),
		Categories:       CategoryHistogram(products),
		Statuses:         StatusHistogram(orders),
		RecentOrders:     summaries,
		CriticalProducts: CriticalProducts(products, opts.LowStockThreshold),
		TopStocked:       TopStocked(products, opts.TopProducts),
	}
}

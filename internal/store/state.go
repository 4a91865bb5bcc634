// Package store holds the back-office client state: the three loaded entity
// lists, the error slot and pending notices. State only changes through
// Reduce.
package store

import (
	"time"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
)

// Slice names an independently loaded part of the state.
type Slice string

const (
	SliceProducts Slice = "products"
	SliceUsers    Slice = "users"
	SliceOrders   Slice = "orders"
)

// Slices lists every slice.
var Slices = []Slice{SliceProducts, SliceUsers, SliceOrders}

// Query records which backend list call filled a slice, so a refresh after
// a write repeats it. The zero value is the unfiltered list.
type Query struct {
	Kind string `json:"kind,omitempty"`
	Arg  string `json:"arg,omitempty"`
}

// NoticeLevel classifies a transient notification.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient notification for the operator.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

// DefaultNoticeLimit bounds the notice queue when a NoticePosted carries no limit.
const DefaultNoticeLimit = 20

// State is an immutable snapshot. Reduce never modifies its input.
type State struct {
	Products []models.Product `json:"products"`
	Users    []models.User    `json:"users"`
	Orders   []models.Order   `json:"orders"`
	Queries  map[Slice]Query  `json:"queries"`
	Error    string           `json:"error,omitempty"`
	Notices  []Notice         `json:"notices"`
}

// Action is a state transition understood by Reduce.
type Action interface {
	action()
}

type (
	ProductsLoaded struct {
		Products []models.Product
		Query    Query
	}
	UsersLoaded struct {
		Users []models.User
		Query Query
	}
	OrdersLoaded struct {
		Orders []models.Order
		Query  Query
	}
	ErrorRaised struct {
		Message string
	}
	ErrorCleared struct{}
	NoticePosted struct {
		Notice Notice
		Limit  int
	}
	NoticesDrained struct{}
)

func (ProductsLoaded) action() {}
func (UsersLoaded) action()    {}
func (OrdersLoaded) action()   {}
func (ErrorRaised) action()    {}
func (ErrorCleared) action()   {}
func (NoticePosted) action()   {}
func (NoticesDrained) action() {}

// SliceOf reports which slice a load action replaces.
func SliceOf(a Action) (Slice, bool) {
	switch a.(type) {
	case ProductsLoaded:
		return SliceProducts, true
	case UsersLoaded:
		return SliceUsers, true
	case OrdersLoaded:
		return SliceOrders, true
	}
	return "", false
}

// Reduce returns the state that results from applying a to s. Loaded lists
// replace their slice wholesale; nothing is merged.
func Reduce(s State, a Action) State {
	next := s
	switch a := a.(type) {
	case ProductsLoaded:
		next.Products = cloneOrEmpty(a.Products)
		next.Queries = withQuery(s.Queries, SliceProducts, a.Query)
	case UsersLoaded:
		next.Users = cloneOrEmpty(a.Users)
		next.Queries = withQuery(s.Queries, SliceUsers, a.Query)
	case OrdersLoaded:
		next.Orders = cloneOrEmpty(a.Orders)
		next.Queries = withQuery(s.Queries, SliceOrders, a.Query)
	case ErrorRaised:
		next.Error = a.Message
	case ErrorCleared:
		next.Error = ""
	case NoticePosted:
		limit := a.Limit
		if limit <= 0 {
			limit = DefaultNoticeLimit
		}
		notices := append(cloneOrEmpty(s.Notices), a.Notice)
		if len(notices) > limit {
			notices = notices[len(notices)-limit:]
		}
		next.Notices = notices
	case NoticesDrained:
		next.Notices = []Notice{}
	}
	return next
}

func cloneOrEmpty[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}

func withQuery(queries map[Slice]Query, slice Slice, q Query) map[Slice]Query {
	out := make(map[Slice]Query, len(queries)+1)
	for k, v := range queries {
		out[k] = v
	}
	out[slice] = q
	return out
}

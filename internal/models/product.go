package models

// Category is the product catalogue classification.
type Category string

const (
	CategoryElectronics Category = "ELECTRONICS"
	CategoryBooks       Category = "BOOKS"
	CategoryFood        Category = "FOOD"
	CategoryOther       Category = "OTHER"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryElectronics, CategoryBooks, CategoryFood, CategoryOther}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product is owned by the product service.
type Product struct {
	ID          int64      `json:"id" validate:"gt=0"`
	Name        string     `json:"name" validate:"required"`
	Description string     `json:"description"`
	Price       float64    `json:"price" validate:"gte=0"`
	Stock       int        `json:"stock" validate:"gte=0"`
	Category    Category   `json:"category" validate:"oneof=ELECTRONICS BOOKS FOOD OTHER"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Active      *bool      `json:"active,omitempty"`
	CreatedAt   *Timestamp `json:"createdAt,omitempty"`
	UpdatedAt   *Timestamp `json:"updatedAt,omitempty"`
}

// IsActive treats a missing flag as active.
func (p *Product) IsActive() bool {
	return p.Active == nil || *p.Active
}

// Validate checks a product decoded from the product service.
func (p *Product) Validate() error {
	return validateStruct(p)
}

// ProductRequest is the create/update payload.
type ProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price" validate:"gte=0"`
	Stock       int      `json:"stock" validate:"gte=0"`
	Category    Category `json:"category" validate:"oneof=ELECTRONICS BOOKS FOOD OTHER"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

// Validate checks a product payload before it is sent.
func (r *ProductRequest) Validate() error {
	return validateStruct(r)
}

// StockUpdateRequest is the body of PATCH /products/{id}/stock.
type StockUpdateRequest struct {
	Stock int `json:"stock" validate:"gte=0"`
}

// Validate rejects negative stock.
func (r *StockUpdateRequest) Validate() error {
	return validateStruct(r)
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

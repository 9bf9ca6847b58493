package domain

import "time"

// Product is a catalog item as returned by the upstream API.
// Optional fields are left at their zero value when the API omits them.
type Product struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Brand        string    `json:"brand,omitempty" yaml:"brand"`
	Category     string    `json:"category" yaml:"category"`
	Description  string    `json:"description,omitempty" yaml:"description"`
	Price        float64   `json:"price" yaml:"price"`
	SalePrice    float64   `json:"sale_price,omitempty" yaml:"sale_price"`
	Currency     string    `json:"currency,omitempty" yaml:"currency"`
	ImageURL     string    `json:"image_url,omitempty" yaml:"image_url"`
	Rating       float64   `json:"rating,omitempty" yaml:"rating"`
	ReviewsCount int       `json:"reviews_count,omitempty" yaml:"reviews_count"`
	InStock      bool      `json:"in_stock" yaml:"in_stock"`
	Tags         []string  `json:"tags,omitempty" yaml:"tags"`
	CreatedAt    time.Time `json:"created_at,omitempty" yaml:"created_at"`

	// Badge is a display label computed by promotion rules, never sent by the API.
	Badge string `json:"-" yaml:"-"`
}

// EffectivePrice is the price the customer pays: the sale price when it is a
// real discount, the list price otherwise.
func (p Product) EffectivePrice() float64 {
	if p.SalePrice > 0 && p.SalePrice < p.Price {
		return p.SalePrice
	}
	return p.Price
}

// OnSale reports whether the product carries a discount.
func (p Product) OnSale() bool {
	return p.EffectivePrice() < p.Price
}

// DiscountPercent is the rounded discount relative to the list price.
func (p Product) DiscountPercent() int {
	if !p.OnSale() || p.Price <= 0 {
		return 0
	}
	return int((p.Price-p.SalePrice)/p.Price*100 + 0.5)
}

// ProductPage is one page of products as served by the upstream API.
type ProductPage struct {
	Items      []Product `json:"items"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalItems int       `json:"total_items"`
	TotalPages int       `json:"total_pages"`
}

// ProductQuery selects a page of a category listing upstream.
type ProductQuery struct {
	Category string
	Page     int
	Limit    int
	Sort     string
}

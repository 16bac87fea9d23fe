package domain

import "time"

// LocalizedString carries the two display languages the storefront serves.
type LocalizedString struct {
	Vi string `json:"vi"`
	En string `json:"en"`
}

// Media references an uploaded asset by URL and media code.
type Media struct {
	URL       string `json:"url"`
	MediaCode string `json:"media_code"`
}

// PriceBounds is a min/max pair in a single currency.
type PriceBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PriceRange aggregates the variant price spread per currency.
type PriceRange struct {
	VND PriceBounds `json:"vnd"`
	USD PriceBounds `json:"usd"`
}

// Product is a catalog entry. Tokens hold the accent-stripped search terms
// derived from the localized name.
type Product struct {
	Code         string          `json:"code"`
	CategoryCode string          `json:"category_code"`
	Name         LocalizedString `json:"name"`
	Description  LocalizedString `json:"description"`
	Tokens       []string        `json:"tokens,omitempty"`
	Cover        Media           `json:"cover"`
	Gallery      []Media         `json:"gallery,omitempty"`
	PriceRange   PriceRange      `json:"price_range"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Category groups products under a unique code.
type Category struct {
	Code      string          `json:"code"`
	Name      LocalizedString `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// VariantPrice is the per-currency pricing of a variant.
type VariantPrice struct {
	Original        float64 `json:"original"`
	DiscountPercent float64 `json:"discount_percent"`
}

// Final returns the price after applying the discount percent.
func (p VariantPrice) Final() float64 {
	final := p.Original * (1 - p.DiscountPercent/100)
	if final < 0 {
		return 0
	}
	return final
}

// Variant is a sellable configuration of a product (capacity x duration).
type Variant struct {
	Code        string       `json:"code"`
	ProductCode string       `json:"product_code"`
	Capacity    string       `json:"capacity"`
	Duration    string       `json:"duration"`
	VND         VariantPrice `json:"vnd"`
	USD         VariantPrice `json:"usd"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

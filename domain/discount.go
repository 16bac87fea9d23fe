package domain

import "time"

// Discount is a flat-percent promotion code.
type Discount struct {
	Code            string    `json:"code"`
	DiscountPercent int       `json:"discount_percent"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

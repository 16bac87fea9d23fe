package domain

import "time"

// OrderStatus tracks fulfilment progress.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// PaymentStatus tracks whether the order has been paid.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// ValidOrderStatus reports whether s is one of the known fulfilment states.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is one of the known payment states.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

// OrderItem is one purchased line: a product variant with the price locked in
// at checkout time.
type OrderItem struct {
	ProductCode string  `json:"product_code"`
	VariantCode string  `json:"variant_code"`
	Quantity    int     `json:"quantity"`
	FinalPrice  float64 `json:"final_price"`
}

// Order is a customer purchase, keyed by a generated human-readable code.
type Order struct {
	Code            string        `json:"code"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	ShippingAddress string        `json:"shipping_address"`
	Note            string        `json:"note"`
	Items           []OrderItem   `json:"items"`
	DiscountCode    string        `json:"discount_code,omitempty"`
	TotalPrice      float64       `json:"total_price"`
	QRImageURL      string        `json:"qr_image_url,omitempty"`
	OrderStatus     OrderStatus   `json:"order_status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

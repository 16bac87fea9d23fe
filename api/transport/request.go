package transport

// LocalizedText mirrors the bilingual display fields on catalog entities.
type LocalizedText struct {
	Vi string `json:"vi"`
	En string `json:"en"`
}

type MediaPayload struct {
	URL       string `json:"url"`
	MediaCode string `json:"media_code"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ProductCreateRequest struct {
	CategoryCode string         `json:"category_code"`
	Name         LocalizedText  `json:"name"`
	Description  LocalizedText  `json:"description"`
	Cover        MediaPayload   `json:"cover"`
	Gallery      []MediaPayload `json:"gallery"`
	Capacities   []string       `json:"capacities"`
	Durations    []string       `json:"durations"`
}

type ProductUpdateRequest struct {
	CategoryCode string         `json:"category_code"`
	Name         *LocalizedText `json:"name"`
	Description  *LocalizedText `json:"description"`
	Cover        *MediaPayload  `json:"cover"`
	Gallery      []MediaPayload `json:"gallery"`
}

type CategoryRequest struct {
	Code string        `json:"code"`
	Name LocalizedText `json:"name"`
}

type PricePayload struct {
	Original        float64 `json:"original"`
	DiscountPercent float64 `json:"discount_percent"`
}

type VariantRequest struct {
	Capacity string       `json:"capacity"`
	Duration string       `json:"duration"`
	VND      PricePayload `json:"vnd"`
	USD      PricePayload `json:"usd"`
}

type OrderItemRequest struct {
	VariantCode string `json:"variant_code"`
	Quantity    int    `json:"quantity"`
}

type OrderCreateRequest struct {
	Email           string             `json:"email"`
	Phone           string             `json:"phone"`
	ShippingAddress string             `json:"shipping_address"`
	Note            string             `json:"note"`
	Items           []OrderItemRequest `json:"items"`
	DiscountCode    string             `json:"discount_code"`
}

type OrderUpdateRequest struct {
	OrderStatus     *string `json:"order_status"`
	PaymentStatus   *string `json:"payment_status"`
	ShippingAddress *string `json:"shipping_address"`
	Note            *string `json:"note"`
}

type DiscountCreateRequest struct {
	DiscountPercent int `json:"discount_percent"`
}

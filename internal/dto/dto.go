package dto

import "github.com/shopspring/decimal"

type AddCartItemRequest struct {
	VariantID uint `json:"variant"`
	Quantity  int  `json:"quantity"`
	// Optional explicit identity key; used when the frontend carries a
	// guest id across clients.
	ClerkUserID string `json:"clerk_user_id"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CheckoutItem struct {
	VariantID uint `json:"variant"`
	Quantity  int  `json:"quantity"`
}

type CheckoutRequest struct {
	Email           string            `json:"email"`
	FirstName       string            `json:"first_name"`
	LastName        string            `json:"last_name"`
	ShippingAddress map[string]string `json:"shipping_address"`
	ClerkUserID     string            `json:"clerk_user_id"`
	Items           []CheckoutItem    `json:"items"`
}

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

type CleanCartRequest struct {
	ClerkUserID string `json:"clerk_user_id"`
}

type ProfileRequest struct {
	ClerkUserID     string `json:"clerk_user_id"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	ShippingAddress string `json:"shipping_address"`
}

type PreviewRatesRequest struct {
	ParcelLength decimal.Decimal `json:"parcel_length"`
	ParcelWidth  decimal.Decimal `json:"parcel_width"`
	ParcelHeight decimal.Decimal `json:"parcel_height"`
	ParcelWeight decimal.Decimal `json:"parcel_weight"`
}

type GenerateLabelRequest struct {
	SelectedRateID string `json:"selected_rate_id"`
}

type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

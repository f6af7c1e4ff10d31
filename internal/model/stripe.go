package model

// Shapes of the Stripe objects this backend consumes. Only the fields the
// webhook and checkout flows read are declared.

type StripeEvent struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data StripeEventData `json:"data"`
}

type StripeEventData struct {
	Object StripeCheckoutSession `json:"object"`
}

// StripeCheckoutSession carries, in Metadata, the checkout snapshot written
// by the session builder. That snapshot is the source of truth when the
// order is materialized; the live cart may have drifted by then.
type StripeCheckoutSession struct {
	ID            string            `json:"id"`
	PaymentStatus string            `json:"payment_status"`
	CustomerEmail string            `json:"customer_email"`
	Metadata      map[string]string `json:"metadata"`
	URL           string            `json:"url"`
}

type StripeLineItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	AmountTotal int64  `json:"amount_total"` // cents
	Currency    string `json:"currency"`
}

type StripeLineItemList struct {
	Data    []StripeLineItem `json:"data"`
	HasMore bool             `json:"has_more"`
}

// Metadata keys of the checkout snapshot embedded in the session.
const (
	MetaEmail           = "email"
	MetaBuyerIdentity   = "clerk_user_id"
	MetaIsGuest         = "is_guest"
	MetaShippingAddress = "shipping_address"
	MetaShippingCost    = "shipping_cost"
	MetaSubtotal        = "subtotal"
	MetaFirstName       = "first_name"
	MetaLastName        = "last_name"
)

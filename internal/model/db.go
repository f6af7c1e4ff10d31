package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
	Slug string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
}

type Product struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Name        string           `gorm:"size:255;not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	ImageURL    string           `gorm:"size:1000" json:"image_url"`
	Price       decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	CategoryID  *uint            `gorm:"index" json:"category_id"`
	Category    *Category        `json:"category,omitempty"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ProductVariant is the purchasable SKU. Stock is decremented only by a
// confirmed payment, never speculatively by cart mutation.
type ProductVariant struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	ProductID uint     `gorm:"index;not null" json:"product_id"`
	Product   *Product `json:"product,omitempty"`
	Size      string   `gorm:"size:50" json:"size"`
	Stock     int      `gorm:"not null;default:0" json:"stock"`
}

// Cart is owned by exactly one buyer identity and created lazily on first
// mutation.
type Cart struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	BuyerIdentity string     `gorm:"size:255;uniqueIndex;not null" json:"buyer_identity"`
	Items         []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CartItem is unique per (cart, variant); adding an existing variant bumps
// the quantity instead of inserting a second row.
type CartItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CartID    uint            `gorm:"uniqueIndex:idx_cart_variant;not null" json:"cart_id"`
	VariantID uint            `gorm:"uniqueIndex:idx_cart_variant;not null" json:"variant_id"`
	Variant   *ProductVariant `json:"variant,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
}

type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	BuyerIdentity string          `gorm:"size:255;index" json:"buyer_identity"`
	Email         string          `gorm:"size:255;index;not null" json:"email"`
	IsGuest       bool            `gorm:"not null;default:false" json:"is_guest"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	CreatedAt     time.Time       `json:"created_at"`

	// The checkout session id is the idempotency key for webhook delivery:
	// at most one order per session.
	StripeCheckoutID    string `gorm:"size:255;uniqueIndex;not null" json:"stripe_checkout_id"`
	StripePaymentStatus string `gorm:"size:100" json:"stripe_payment_status"`

	FirstName       string          `gorm:"size:50" json:"first_name"`
	LastName        string          `gorm:"size:50" json:"last_name"`
	ShippingAddress string          `gorm:"type:text" json:"shipping_address"` // JSON blob
	ShippingCost    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"shipping_cost"`

	// Fulfillment fields, populated exactly once when a label is purchased.
	ShippingLabelURL string     `gorm:"size:1000" json:"shipping_label_url"`
	TrackingNumber   string     `gorm:"size:100" json:"tracking_number"`
	ShippingProvider string     `gorm:"size:100" json:"shipping_provider"`
	ShippingService  string     `gorm:"size:200" json:"shipping_service"`
	IsShipped        bool       `gorm:"not null;default:false" json:"is_shipped"`
	ShippedAt        *time.Time `json:"shipped_at"`
	ShippoShipmentID string     `gorm:"size:255" json:"shippo_shipment_id"`
	SelectedRateID   string     `gorm:"size:255" json:"selected_rate_id"`

	// Parcel dimensions for rate quoting (inches / pounds).
	ParcelLength decimal.Decimal `gorm:"type:decimal(5,2);not null;default:6" json:"parcel_length"`
	ParcelWidth  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:4" json:"parcel_width"`
	ParcelHeight decimal.Decimal `gorm:"type:decimal(5,2);not null;default:2" json:"parcel_height"`
	ParcelWeight decimal.Decimal `gorm:"type:decimal(5,2);not null;default:1" json:"parcel_weight"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

func (o *Order) GrandTotal() decimal.Decimal {
	return o.Subtotal.Add(o.ShippingCost)
}

// OrderItem snapshots the variant, quantity and unit price at purchase time
// so later catalog changes never alter historical orders.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index;not null" json:"order_id"`
	VariantID *uint           `gorm:"index" json:"variant_id"`
	Variant   *ProductVariant `json:"variant,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

type UserProfile struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ExternalUserID  string    `gorm:"size:255;uniqueIndex;not null" json:"clerk_user_id"`
	Email           string    `gorm:"size:255" json:"email"`
	FirstName       string    `gorm:"size:50" json:"first_name"`
	LastName        string    `gorm:"size:50" json:"last_name"`
	ShippingAddress string    `gorm:"type:text" json:"shipping_address"` // JSON blob
	UpdatedAt       time.Time `json:"updated_at"`
}

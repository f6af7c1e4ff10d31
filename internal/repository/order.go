package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"storefront-backend/internal/identity"
	"storefront-backend/internal/model"
)

type FulfillmentUpdate struct {
	LabelURL       string
	TrackingNumber string
	Provider       string
	Service        string
}

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	ExistsByCheckoutID(ctx context.Context, checkoutID string) (bool, error)
	FindByID(ctx context.Context, orderID uint) (*model.Order, error)
	FindByBuyerIdentity(ctx context.Context, buyerIdentity string) ([]*model.Order, error)
	ReassignGuestOrders(ctx context.Context, email, newBuyerIdentity string) (int64, error)
	UpdateParcel(ctx context.Context, order *model.Order) error
	MarkShipped(ctx context.Context, orderID uint, update *FulfillmentUpdate) error
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

// Create inserts the order together with its items. A duplicate checkout id
// surfaces as gorm.ErrDuplicatedKey via the unique index; callers treat it
// as a repeated webhook delivery.
func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) ExistsByCheckoutID(ctx context.Context, checkoutID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("stripe_checkout_id = ?", checkoutID).
		Count(&count).Error

	return count > 0, err
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Variant").
		Preload("Items.Variant.Product").
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByBuyerIdentity(ctx context.Context, buyerIdentity string) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Variant").
		Preload("Items.Variant.Product").
		Where("buyer_identity = ?", buyerIdentity).
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

// ReassignGuestOrders relinks guest orders matching the email to the given
// authenticated identity. Only guest-prefixed rows are touched, so orders
// already owned by another authenticated user with the same email are left
// alone. Re-running after all rows are reconciled updates zero rows.
func (r *orderRepoImpl) ReassignGuestOrders(ctx context.Context, email, newBuyerIdentity string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("email = ?", email).
		Where("buyer_identity LIKE ?", identity.GuestPrefix+"%").
		Updates(map[string]interface{}{
			"buyer_identity": newBuyerIdentity,
			"is_guest":       false,
		})

	return result.RowsAffected, result.Error
}

func (r *orderRepoImpl) UpdateParcel(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"parcel_length":      order.ParcelLength,
			"parcel_width":       order.ParcelWidth,
			"parcel_height":      order.ParcelHeight,
			"parcel_weight":      order.ParcelWeight,
			"shippo_shipment_id": order.ShippoShipmentID,
			"selected_rate_id":   order.SelectedRateID,
		}).Error
}

// MarkShipped populates the fulfillment fields exactly once: an order that
// is already shipped is not updated again.
func (r *orderRepoImpl) MarkShipped(ctx context.Context, orderID uint, update *FulfillmentUpdate) error {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND is_shipped = ?", orderID, false).
		Updates(map[string]interface{}{
			"shipping_label_url": update.LabelURL,
			"tracking_number":    update.TrackingNumber,
			"shipping_provider":  update.Provider,
			"shipping_service":   update.Service,
			"is_shipped":         true,
			"shipped_at":         time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

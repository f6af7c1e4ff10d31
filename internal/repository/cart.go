package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront-backend/internal/model"
)

type CartRepository interface {
	GetOrCreate(ctx context.Context, buyerIdentity string) (*model.Cart, error)
	FindByBuyerIdentity(ctx context.Context, buyerIdentity string) (*model.Cart, error)
	FindItem(ctx context.Context, cartID, variantID uint) (*model.CartItem, error)
	GetItem(ctx context.Context, cartID, itemID uint) (*model.CartItem, error)
	CreateItem(ctx context.Context, item *model.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uint, quantity int) error
	DeleteItem(ctx context.Context, itemID uint) error
	DeleteByBuyerIdentity(ctx context.Context, buyerIdentity string) error
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

// GetOrCreate returns the buyer's cart, creating an empty one on first use.
// The buyer-identity unique index makes the create side race-safe.
func (r *cartRepoImpl) GetOrCreate(ctx context.Context, buyerIdentity string) (*model.Cart, error) {
	cart := model.Cart{BuyerIdentity: buyerIdentity}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Where("buyer_identity = ?", buyerIdentity).
		FirstOrCreate(&cart).Error

	if err != nil {
		return nil, err
	}

	return r.FindByBuyerIdentity(ctx, buyerIdentity)
}

func (r *cartRepoImpl) FindByBuyerIdentity(ctx context.Context, buyerIdentity string) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Variant").
		Preload("Items.Variant.Product").
		Where("buyer_identity = ?", buyerIdentity).
		First(&cart).Error

	if err != nil {
		return nil, err
	}

	return &cart, nil
}

func (r *cartRepoImpl) FindItem(ctx context.Context, cartID, variantID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND variant_id = ?", cartID, variantID).
		First(&item).Error

	if err != nil {
		return nil, err
	}

	return &item, nil
}

// GetItem looks an item up by id scoped to the given cart, so one buyer
// cannot address another buyer's rows.
func (r *cartRepoImpl) GetItem(ctx context.Context, cartID, itemID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Preload("Variant").
		Preload("Variant.Product").
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error

	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *cartRepoImpl) CreateItem(ctx context.Context, item *model.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *cartRepoImpl) UpdateItemQuantity(ctx context.Context, itemID uint, quantity int) error {
	return r.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("id = ?", itemID).
		UpdateColumn("quantity", quantity).Error
}

func (r *cartRepoImpl) DeleteItem(ctx context.Context, itemID uint) error {
	return r.db.WithContext(ctx).Delete(&model.CartItem{}, itemID).Error
}

// DeleteByBuyerIdentity removes the cart and its items. The next
// GetOrCreate for the same buyer starts from an empty cart.
func (r *cartRepoImpl) DeleteByBuyerIdentity(ctx context.Context, buyerIdentity string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart model.Cart
		err := tx.Where("buyer_identity = ?", buyerIdentity).First(&cart).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}

		return tx.Delete(&cart).Error
	})
}

package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"storefront-backend/internal/model"
)

// ErrInsufficientStock is returned by Decrement when the requested quantity
// exceeds the variant's current stock. No rows are modified in that case.
var ErrInsufficientStock = errors.New("insufficient stock")

type VariantRepository interface {
	FindByID(ctx context.Context, variantID uint) (*model.ProductVariant, error)
	FindByProductNameAndSize(ctx context.Context, productName, size string) (*model.ProductVariant, error)
	ReserveCheck(ctx context.Context, variantID uint, quantity int) (bool, error)
	Decrement(ctx context.Context, tx *gorm.DB, variantID uint, quantity int) error
	ZeroStock(ctx context.Context, tx *gorm.DB, variantID uint) error
}

type variantRepoImpl struct {
	db *gorm.DB
}

func NewVariantRepository(db *gorm.DB) VariantRepository {
	return &variantRepoImpl{
		db: db,
	}
}

func (r *variantRepoImpl) FindByID(ctx context.Context, variantID uint) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id = ?", variantID).
		First(&variant).Error

	if err != nil {
		return nil, err
	}

	return &variant, nil
}

// FindByProductNameAndSize resolves a variant from a payment-processor line
// item description of the form "<product name> - <size>". The webhook uses
// it because the processor only round-trips display names.
func (r *variantRepoImpl) FindByProductNameAndSize(ctx context.Context, productName, size string) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("products.name = ?", productName).
		Where("product_variants.size = ?", size).
		First(&variant).Error

	if err != nil {
		return nil, err
	}

	return &variant, nil
}

// ReserveCheck reports whether quantity is currently satisfiable. It never
// mutates stock and its answer is advisory: a concurrent purchase can
// invalidate it before the caller acts.
func (r *variantRepoImpl) ReserveCheck(ctx context.Context, variantID uint, quantity int) (bool, error) {
	var stock int
	err := r.db.WithContext(ctx).Model(&model.ProductVariant{}).
		Where("id = ?", variantID).
		Select("stock").
		Take(&stock).Error

	if err != nil {
		return false, err
	}

	return quantity <= stock, nil
}

// Decrement atomically subtracts quantity from stock. The read and write
// are a single conditional UPDATE so two confirming payments racing for the
// last unit cannot both win.
func (r *variantRepoImpl) Decrement(ctx context.Context, tx *gorm.DB, variantID uint, quantity int) error {
	result := tx.WithContext(ctx).Model(&model.ProductVariant{}).
		Where("id = ? AND stock >= ?", variantID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}

	return nil
}

// ZeroStock clamps stock to zero. Used when a confirmed payment exceeds
// remaining stock: the sale already happened, so the ledger floors at zero
// instead of going negative.
func (r *variantRepoImpl) ZeroStock(ctx context.Context, tx *gorm.DB, variantID uint) error {
	return tx.WithContext(ctx).Model(&model.ProductVariant{}).
		Where("id = ?", variantID).
		UpdateColumn("stock", 0).Error
}

package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront-backend/internal/repository"
)

func TestDecrement(t *testing.T) {
	tests := []struct {
		name      string
		stock     int
		quantity  int
		wantErr   error
		wantStock int
	}{
		{
			name:      "partial",
			stock:     10,
			quantity:  3,
			wantStock: 7,
		},
		{
			name:      "exact_stock_to_zero",
			stock:     5,
			quantity:  5,
			wantStock: 0,
		},
		{
			name:      "insufficient_leaves_row_untouched",
			stock:     3,
			quantity:  4,
			wantErr:   repository.ErrInsufficientStock,
			wantStock: 3,
		},
		{
			name:      "zero_stock_rejects_any_quantity",
			stock:     0,
			quantity:  1,
			wantErr:   repository.ErrInsufficientStock,
			wantStock: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			repo := repository.NewVariantRepository(db)
			variant := seedVariant(t, db, "Hoodie", "M", tt.stock)

			err := repo.Decrement(context.Background(), db, variant.ID, tt.quantity)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantStock, variantStock(t, db, variant.ID))
		})
	}
}

// Two confirmed payments competing for the last unit: exactly one wins and
// stock never goes negative.
func TestDecrementLastUnitSingleWinner(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewVariantRepository(db)
	variant := seedVariant(t, db, "Hoodie", "M", 1)

	first := repo.Decrement(context.Background(), db, variant.ID, 1)
	second := repo.Decrement(context.Background(), db, variant.ID, 1)

	assert.NoError(t, first)
	assert.ErrorIs(t, second, repository.ErrInsufficientStock)
	assert.Equal(t, 0, variantStock(t, db, variant.ID))
}

func TestZeroStockClamps(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewVariantRepository(db)
	variant := seedVariant(t, db, "Hoodie", "M", 2)

	require.NoError(t, repo.ZeroStock(context.Background(), db, variant.ID))

	assert.Equal(t, 0, variantStock(t, db, variant.ID))
}

func TestReserveCheck(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewVariantRepository(db)
	variant := seedVariant(t, db, "Hoodie", "M", 3)

	ok, err := repo.ReserveCheck(context.Background(), variant.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ReserveCheck(context.Background(), variant.ID, 4)
	require.NoError(t, err)
	assert.False(t, ok)

	// ReserveCheck never mutates.
	assert.Equal(t, 3, variantStock(t, db, variant.ID))
}

func TestFindByProductNameAndSize(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewVariantRepository(db)
	variant := seedVariant(t, db, "Canvas Tote", "L", 5)
	seedVariant(t, db, "Canvas Tote Deluxe", "L", 5)

	found, err := repo.FindByProductNameAndSize(context.Background(), "Canvas Tote", "L")
	require.NoError(t, err)
	assert.Equal(t, variant.ID, found.ID)

	_, err = repo.FindByProductNameAndSize(context.Background(), "Canvas Tote", "XL")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindByProductNameAndSize(context.Background(), "Renamed Tote", "L")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindByIDPreloadsProduct(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewVariantRepository(db)
	variant := seedVariant(t, db, "Hoodie", "M", 1)

	found, err := repo.FindByID(context.Background(), variant.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Product)
	assert.Equal(t, "Hoodie", found.Product.Name)
}

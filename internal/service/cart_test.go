package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/identity"
	"storefront-backend/internal/repository"
	"storefront-backend/internal/service"
)

func TestGetCartCreatesLazily(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewCartService(
		repository.NewCartRepository(db),
		repository.NewVariantRepository(db),
	)
	buyer := identity.Guest("s1")

	cart, err := svc.GetCart(context.Background(), buyer)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	again, err := svc.GetCart(context.Background(), buyer)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
}

func TestAddItemMergesExistingLine(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewCartService(
		repository.NewCartRepository(db),
		repository.NewVariantRepository(db),
	)
	variant := seedVariant(t, db, "Hoodie", "M", 30.00, 10)
	buyer := identity.Guest("s1")

	cart, err := svc.AddItem(context.Background(), buyer, variant.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	cart, err = svc.AddItem(context.Background(), buyer, variant.ID, 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestAddItemRejectsBeyondStock(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewCartService(
		repository.NewCartRepository(db),
		repository.NewVariantRepository(db),
	)
	variant := seedVariant(t, db, "Hoodie", "M", 30.00, 3)
	buyer := identity.Guest("s1")

	cart, err := svc.AddItem(context.Background(), buyer, variant.ID, 2)
	require.NoError(t, err)

	// 2 in cart + 2 more exceeds stock of 3.
	_, err = svc.AddItem(context.Background(), buyer, variant.ID, 2)

	var stockErr *service.StockExceededError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Hoodie", stockErr.Product)
	assert.Equal(t, 4, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	// The rejected mutation left the line untouched.
	cart, err = svc.GetCart(context.Background(), buyer)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	// Stock itself is never touched by cart mutation.
	assert.Equal(t, 3, variantStock(t, db, variant.ID))
}

func TestUpdateItem(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewCartService(
		repository.NewCartRepository(db),
		repository.NewVariantRepository(db),
	)
	variant := seedVariant(t, db, "Hoodie", "M", 30.00, 5)
	buyer := identity.Guest("s1")

	cart, err := svc.AddItem(context.Background(), buyer, variant.ID, 1)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	cart, err = svc.UpdateItem(context.Background(), buyer, itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, cart.Items[0].Quantity)

	_, err = svc.UpdateItem(context.Background(), buyer, itemID, 6)
	var stockErr *service.StockExceededError
	assert.ErrorAs(t, err, &stockErr)

	_, err = svc.UpdateItem(context.Background(), buyer, 9999, 1)
	assert.ErrorIs(t, err, service.ErrItemNotFound)
}

func TestRemoveItem(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewCartService(
		repository.NewCartRepository(db),
		repository.NewVariantRepository(db),
	)
	variant := seedVariant(t, db, "Hoodie", "M", 30.00, 5)
	buyer := identity.Guest("s1")

	cart, err := svc.AddItem(context.Background(), buyer, variant.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(context.Background(), buyer, cart.Items[0].ID))

	cart, err = svc.GetCart(context.Background(), buyer)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	err = svc.RemoveItem(context.Background(), identity.Guest("nobody"), 1)
	assert.ErrorIs(t, err, service.ErrCartNotFound)
}

func TestCleanCartStock(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewCartService(
		repository.NewCartRepository(db),
		repository.NewVariantRepository(db),
	)
	buyer := identity.Guest("s1")

	fine := seedVariant(t, db, "Hoodie", "M", 30.00, 10)
	short := seedVariant(t, db, "Tote", "L", 15.00, 5)
	gone := seedVariant(t, db, "Cap", "", 12.00, 2)

	_, err := svc.AddItem(context.Background(), buyer, fine.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), buyer, short.ID, 5)
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), buyer, gone.ID, 2)
	require.NoError(t, err)

	// Stock moves underneath the cart (purchases elsewhere).
	require.NoError(t, db.Model(short).Update("stock", 3).Error)
	require.NoError(t, db.Model(gone).Update("stock", 0).Error)

	report, err := svc.CleanCartStock(context.Background(), buyer)
	require.NoError(t, err)

	require.Len(t, report.Removed, 1)
	assert.Equal(t, "Cap", report.Removed[0].Product)
	assert.Equal(t, "out_of_stock", report.Removed[0].Reason)

	require.Len(t, report.Adjusted, 1)
	assert.Equal(t, "Tote", report.Adjusted[0].Product)
	assert.Equal(t, 3, report.Adjusted[0].AdjustedTo)
	assert.Equal(t, "reduced_to_match_stock", report.Adjusted[0].Reason)

	cart, err := svc.GetCart(context.Background(), buyer)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	for _, item := range cart.Items {
		switch item.VariantID {
		case fine.ID:
			assert.Equal(t, 2, item.Quantity)
		case short.ID:
			assert.Equal(t, 3, item.Quantity)
		default:
			t.Fatalf("unexpected cart line for variant %d", item.VariantID)
		}
	}

	// A second sweep over the repaired cart reports nothing.
	report, err = svc.CleanCartStock(context.Background(), buyer)
	require.NoError(t, err)
	assert.Empty(t, report.Removed)
	assert.Empty(t, report.Adjusted)
}

func TestCleanCartStockNoCart(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewCartService(
		repository.NewCartRepository(db),
		repository.NewVariantRepository(db),
	)

	_, err := svc.CleanCartStock(context.Background(), identity.Guest("nobody"))
	assert.True(t, errors.Is(err, service.ErrCartNotFound))
}

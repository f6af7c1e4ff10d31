package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront-backend/internal/client"
	"storefront-backend/internal/config"
	"storefront-backend/internal/model"
	"storefront-backend/internal/repository"
	"storefront-backend/internal/service"
)

type fakeShippoClient struct {
	createShipmentFn func(ctx context.Context, from, to *client.ShippoAddress, parcel *client.ShippoParcel) (*client.ShippoShipment, error)
	getShipmentFn    func(ctx context.Context, shipmentID string) (*client.ShippoShipment, error)
	purchaseLabelFn  func(ctx context.Context, rateID string) (*client.ShippoTransaction, error)
}

func (f *fakeShippoClient) CreateShipment(ctx context.Context, from, to *client.ShippoAddress, parcel *client.ShippoParcel) (*client.ShippoShipment, error) {
	return f.createShipmentFn(ctx, from, to, parcel)
}

func (f *fakeShippoClient) GetShipment(ctx context.Context, shipmentID string) (*client.ShippoShipment, error) {
	return f.getShipmentFn(ctx, shipmentID)
}

func (f *fakeShippoClient) PurchaseLabel(ctx context.Context, rateID string) (*client.ShippoTransaction, error) {
	return f.purchaseLabelFn(ctx, rateID)
}

var testStore = &config.Store{
	OwnerEmail:      "owner@example.com",
	ShipFromName:    "Storefront",
	ShipFromStreet:  "1 Warehouse Way",
	ShipFromCity:    "Springfield",
	ShipFromState:   "IL",
	ShipFromZip:     "62701",
	ShipFromCountry: "US",
}

func seedShippableOrder(t *testing.T, db *gorm.DB, orders repository.OrderRepository) *model.Order {
	t.Helper()

	order := &model.Order{
		BuyerIdentity:    "user_42",
		Email:            "buyer@example.com",
		Subtotal:         decimal.NewFromFloat(60.00),
		ShippingCost:     decimal.NewFromFloat(5.00),
		StripeCheckoutID: "cs_1",
		FirstName:        "Ada",
		LastName:         "Lovelace",
		ShippingAddress:  `{"line1":"1 Main St","city":"Springfield","state":"IL","postal_code":"62701","country":"US"}`,
		ParcelLength:     decimal.NewFromInt(6),
		ParcelWidth:      decimal.NewFromInt(4),
		ParcelHeight:     decimal.NewFromInt(2),
		ParcelWeight:     decimal.NewFromInt(1),
	}
	require.NoError(t, orders.Create(context.Background(), db, order))

	return order
}

func TestPreviewRates(t *testing.T) {
	db := newTestDB(t)
	orders := repository.NewOrderRepository(db)
	order := seedShippableOrder(t, db, orders)

	shippo := &fakeShippoClient{
		createShipmentFn: func(_ context.Context, from, to *client.ShippoAddress, parcel *client.ShippoParcel) (*client.ShippoShipment, error) {
			assert.Equal(t, "Storefront", from.Name)
			assert.Equal(t, "1 Main St", to.Street1)
			assert.Equal(t, "Ada Lovelace", to.Name)
			// The overridden weight reaches the carrier.
			assert.Equal(t, "2", parcel.Weight)
			assert.Equal(t, "6", parcel.Length)

			return &client.ShippoShipment{
				ObjectID: "shp_1",
				Rates: []client.ShippoRate{
					{ObjectID: "rate_b", Amount: "12.40", Currency: "USD", Provider: "UPS", ServiceLevel: client.ShippoServiceLevel{Name: "Ground"}},
					{ObjectID: "rate_a", Amount: "08.10", Currency: "USD", Provider: "USPS", ServiceLevel: client.ShippoServiceLevel{Name: "Priority Mail"}, EstimatedDays: 2},
				},
			}, nil
		},
	}
	svc := service.NewShippingService(shippo, orders, &fakeNotifier{}, testStore)

	quotes, err := svc.PreviewRates(context.Background(), order.ID, &service.ParcelDims{
		Weight: decimal.NewFromInt(2),
	})
	require.NoError(t, err)

	require.Len(t, quotes, 2)
	// Cheapest first.
	assert.Equal(t, "rate_a", quotes[0].RateID)
	assert.Equal(t, "USPS", quotes[0].Provider)

	// The shipment id and dimensions were persisted for the label purchase.
	saved, err := orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "shp_1", saved.ShippoShipmentID)
	assert.True(t, saved.ParcelWeight.Equal(decimal.NewFromInt(2)))
}

func TestPreviewRatesOrderNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewShippingService(&fakeShippoClient{}, repository.NewOrderRepository(db), &fakeNotifier{}, testStore)

	_, err := svc.PreviewRates(context.Background(), 9999, nil)
	assert.ErrorIs(t, err, service.ErrOrderNotFound)
}

func TestGenerateLabel(t *testing.T) {
	db := newTestDB(t)
	orders := repository.NewOrderRepository(db)
	order := seedShippableOrder(t, db, orders)

	order.ShippoShipmentID = "shp_1"
	require.NoError(t, orders.UpdateParcel(context.Background(), order))

	notifier := &fakeNotifier{}
	shippo := &fakeShippoClient{
		getShipmentFn: func(_ context.Context, shipmentID string) (*client.ShippoShipment, error) {
			assert.Equal(t, "shp_1", shipmentID)
			return &client.ShippoShipment{
				ObjectID: "shp_1",
				Rates: []client.ShippoRate{
					{ObjectID: "rate_a", Amount: "8.10", Provider: "USPS", ServiceLevel: client.ShippoServiceLevel{Name: "Priority Mail"}},
				},
			}, nil
		},
		purchaseLabelFn: func(_ context.Context, rateID string) (*client.ShippoTransaction, error) {
			assert.Equal(t, "rate_a", rateID)
			return &client.ShippoTransaction{
				ObjectID:            "txn_1",
				Status:              "SUCCESS",
				LabelURL:            "https://labels.example/1.pdf",
				TrackingNumber:      "TRACK123",
				TrackingURLProvider: "https://track.example/TRACK123",
			}, nil
		},
	}
	svc := service.NewShippingService(shippo, orders, notifier, testStore)

	shipped, err := svc.GenerateLabel(context.Background(), order.ID, "rate_a")
	require.NoError(t, err)

	assert.True(t, shipped.IsShipped)
	assert.Equal(t, "https://labels.example/1.pdf", shipped.ShippingLabelURL)
	assert.Equal(t, "TRACK123", shipped.TrackingNumber)
	assert.Equal(t, "USPS", shipped.ShippingProvider)
	assert.Equal(t, "Priority Mail", shipped.ShippingService)
	require.NotNil(t, shipped.ShippedAt)

	sent := notifier.sentTo()
	require.Len(t, sent, 1)
	assert.Equal(t, "buyer@example.com", sent[0].Recipient)

	// A second purchase attempt is refused.
	_, err = svc.GenerateLabel(context.Background(), order.ID, "rate_a")
	assert.ErrorIs(t, err, service.ErrOrderAlreadyShipped)
}

func TestGenerateLabelUnknownRate(t *testing.T) {
	db := newTestDB(t)
	orders := repository.NewOrderRepository(db)
	order := seedShippableOrder(t, db, orders)

	order.ShippoShipmentID = "shp_1"
	require.NoError(t, orders.UpdateParcel(context.Background(), order))

	shippo := &fakeShippoClient{
		getShipmentFn: func(_ context.Context, _ string) (*client.ShippoShipment, error) {
			return &client.ShippoShipment{ObjectID: "shp_1"}, nil
		},
	}
	svc := service.NewShippingService(shippo, orders, &fakeNotifier{}, testStore)

	_, err := svc.GenerateLabel(context.Background(), order.ID, "rate_missing")
	assert.Error(t, err)
}

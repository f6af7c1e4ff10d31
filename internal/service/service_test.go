package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront-backend/internal/client"
	"storefront-backend/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, client.Migrate(db))

	return db
}

func seedVariant(t *testing.T, db *gorm.DB, productName, size string, price float64, stock int) *model.ProductVariant {
	t.Helper()

	product := model.Product{
		Name:  productName,
		Price: decimal.NewFromFloat(price),
	}
	require.NoError(t, db.Create(&product).Error)

	variant := model.ProductVariant{
		ProductID: product.ID,
		Size:      size,
		Stock:     stock,
	}
	require.NoError(t, db.Create(&variant).Error)

	variant.Product = &product
	return &variant
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func variantStock(t *testing.T, db *gorm.DB, variantID uint) int {
	t.Helper()

	var stock int
	require.NoError(t, db.Model(&model.ProductVariant{}).
		Where("id = ?", variantID).
		Select("stock").
		Take(&stock).Error)

	return stock
}

type fakeStripeClient struct {
	createSessionFn func(ctx context.Context, req *client.CreateSessionRequest) (*model.StripeCheckoutSession, error)
	listLineItemsFn func(ctx context.Context, sessionID string) ([]model.StripeLineItem, error)
	verifyFn        func(sigHeader string, payload []byte) error
}

func (f *fakeStripeClient) CreateCheckoutSession(ctx context.Context, req *client.CreateSessionRequest) (*model.StripeCheckoutSession, error) {
	if f.createSessionFn == nil {
		return nil, fmt.Errorf("unexpected CreateCheckoutSession call")
	}
	return f.createSessionFn(ctx, req)
}

func (f *fakeStripeClient) ListLineItems(ctx context.Context, sessionID string) ([]model.StripeLineItem, error) {
	if f.listLineItemsFn == nil {
		return nil, fmt.Errorf("unexpected ListLineItems call")
	}
	return f.listLineItemsFn(ctx, sessionID)
}

func (f *fakeStripeClient) VerifyWebhookSignature(sigHeader string, payload []byte) error {
	if f.verifyFn == nil {
		return nil
	}
	return f.verifyFn(sigHeader, payload)
}

type sentEmail struct {
	Recipient string
	Subject   string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (f *fakeNotifier) Send(_ context.Context, recipient, subject, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmail{Recipient: recipient, Subject: subject})
	return nil
}

func (f *fakeNotifier) sentTo() []sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentEmail(nil), f.sent...)
}

package repository_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront-backend/internal/client"
	"storefront-backend/internal/model"
)

// newTestDB opens a per-test in-memory database with the same gorm
// configuration the server uses, most importantly TranslateError so
// duplicate-key behavior matches production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, client.Migrate(db))

	return db
}

func seedVariant(t *testing.T, db *gorm.DB, productName, size string, stock int) *model.ProductVariant {
	t.Helper()

	product := model.Product{
		Name:  productName,
		Price: decimal.NewFromFloat(19.99),
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

func variantStock(t *testing.T, db *gorm.DB, variantID uint) int {
	t.Helper()

	var stock int
	require.NoError(t, db.Model(&model.ProductVariant{}).
		Where("id = ?", variantID).
		Select("stock").
		Take(&stock).Error)

	return stock
}

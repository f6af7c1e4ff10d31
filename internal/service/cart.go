package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"storefront-backend/internal/identity"
	"storefront-backend/internal/model"
	"storefront-backend/internal/repository"
)

type RemovedItem struct {
	Product string `json:"product"`
	Reason  string `json:"reason"`
}

type AdjustedItem struct {
	Product    string `json:"product"`
	AdjustedTo int    `json:"adjusted_to"`
	Reason     string `json:"reason"`
}

// CleanReport describes what the stock sweep changed. Both slices empty
// means the cart was already consistent.
type CleanReport struct {
	Removed  []RemovedItem  `json:"removed"`
	Adjusted []AdjustedItem `json:"adjusted"`
}

type CartService interface {
	GetCart(ctx context.Context, buyer identity.BuyerIdentity) (*model.Cart, error)
	AddItem(ctx context.Context, buyer identity.BuyerIdentity, variantID uint, quantity int) (*model.Cart, error)
	UpdateItem(ctx context.Context, buyer identity.BuyerIdentity, itemID uint, quantity int) (*model.Cart, error)
	RemoveItem(ctx context.Context, buyer identity.BuyerIdentity, itemID uint) error
	CleanCartStock(ctx context.Context, buyer identity.BuyerIdentity) (*CleanReport, error)
}

type cartServiceImpl struct {
	cartRepo    repository.CartRepository
	variantRepo repository.VariantRepository
}

func NewCartService(
	cartRepo repository.CartRepository,
	variantRepo repository.VariantRepository,
) CartService {
	return &cartServiceImpl{
		cartRepo:    cartRepo,
		variantRepo: variantRepo,
	}
}

// GetCart returns the buyer's cart, lazily creating an empty one.
func (s *cartServiceImpl) GetCart(ctx context.Context, buyer identity.BuyerIdentity) (*model.Cart, error) {
	return s.cartRepo.GetOrCreate(ctx, buyer.Key())
}

// AddItem merges into an existing line for the same variant or inserts a
// new one. Stock is re-read at call time; the limit is advisory and can
// still be invalidated by later purchases elsewhere.
func (s *cartServiceImpl) AddItem(ctx context.Context, buyer identity.BuyerIdentity, variantID uint, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, buyer.Key())
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}

	variant, err := s.variantRepo.FindByID(ctx, variantID)
	if err != nil {
		return nil, fmt.Errorf("find variant: %w", err)
	}

	existing, err := s.cartRepo.FindItem(ctx, cart.ID, variantID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find cart item: %w", err)
	}

	if existing != nil {
		newQuantity := existing.Quantity + quantity
		if newQuantity > variant.Stock {
			return nil, stockExceeded(variant, newQuantity)
		}
		if err := s.cartRepo.UpdateItemQuantity(ctx, existing.ID, newQuantity); err != nil {
			return nil, fmt.Errorf("update cart item: %w", err)
		}
	} else {
		if quantity > variant.Stock {
			return nil, stockExceeded(variant, quantity)
		}
		item := &model.CartItem{
			CartID:    cart.ID,
			VariantID: variantID,
			Quantity:  quantity,
		}
		if err := s.cartRepo.CreateItem(ctx, item); err != nil {
			return nil, fmt.Errorf("create cart item: %w", err)
		}
	}

	return s.cartRepo.FindByBuyerIdentity(ctx, buyer.Key())
}

// UpdateItem overwrites the line's quantity after re-checking stock.
func (s *cartServiceImpl) UpdateItem(ctx context.Context, buyer identity.BuyerIdentity, itemID uint, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	cart, err := s.cartRepo.FindByBuyerIdentity(ctx, buyer.Key())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("find cart: %w", err)
	}

	item, err := s.cartRepo.GetItem(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("get cart item: %w", err)
	}

	variant, err := s.variantRepo.FindByID(ctx, item.VariantID)
	if err != nil {
		return nil, fmt.Errorf("find variant: %w", err)
	}

	if quantity > variant.Stock {
		return nil, stockExceeded(variant, quantity)
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}

	return s.cartRepo.FindByBuyerIdentity(ctx, buyer.Key())
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, buyer identity.BuyerIdentity, itemID uint) error {
	cart, err := s.cartRepo.FindByBuyerIdentity(ctx, buyer.Key())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartNotFound
		}
		return fmt.Errorf("find cart: %w", err)
	}

	item, err := s.cartRepo.GetItem(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("get cart item: %w", err)
	}

	return s.cartRepo.DeleteItem(ctx, item.ID)
}

// CleanCartStock repairs the buyer's cart against current stock: lines for
// zero-stock variants are removed, over-stock quantities are clamped down.
// It never raises a quantity and never fails a line, so running it again on
// a stable cart yields an empty report.
func (s *cartServiceImpl) CleanCartStock(ctx context.Context, buyer identity.BuyerIdentity) (*CleanReport, error) {
	cart, err := s.cartRepo.FindByBuyerIdentity(ctx, buyer.Key())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("find cart: %w", err)
	}

	report := &CleanReport{
		Removed:  []RemovedItem{},
		Adjusted: []AdjustedItem{},
	}

	for _, item := range cart.Items {
		variant, err := s.variantRepo.FindByID(ctx, item.VariantID)
		if err != nil {
			log.Warn().Err(err).Uint("variant_id", item.VariantID).
				Msg("stock sweep: variant lookup failed, skipping line")
			continue
		}

		productName := ""
		if variant.Product != nil {
			productName = variant.Product.Name
		}

		switch {
		case variant.Stock == 0:
			if err := s.cartRepo.DeleteItem(ctx, item.ID); err != nil {
				return nil, fmt.Errorf("remove out-of-stock item: %w", err)
			}
			report.Removed = append(report.Removed, RemovedItem{
				Product: productName,
				Reason:  "out_of_stock",
			})
		case item.Quantity > variant.Stock:
			if err := s.cartRepo.UpdateItemQuantity(ctx, item.ID, variant.Stock); err != nil {
				return nil, fmt.Errorf("clamp item quantity: %w", err)
			}
			report.Adjusted = append(report.Adjusted, AdjustedItem{
				Product:    productName,
				AdjustedTo: variant.Stock,
				Reason:     "reduced_to_match_stock",
			})
		}
	}

	return report, nil
}

func stockExceeded(variant *model.ProductVariant, requested int) *StockExceededError {
	productName := ""
	if variant.Product != nil {
		productName = variant.Product.Name
	}
	return &StockExceededError{
		Product:   productName,
		Variant:   variant.Size,
		Requested: requested,
		Available: variant.Stock,
	}
}

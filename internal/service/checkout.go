package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"storefront-backend/internal/client"
	"storefront-backend/internal/identity"
	"storefront-backend/internal/model"
	"storefront-backend/internal/repository"
)

// Flat-rate shipping, snapshotted into the session like every other price.
var standardShippingCost = decimal.NewFromFloat(5.00)

type CheckoutLine struct {
	VariantID uint `json:"variant"`
	Quantity  int  `json:"quantity"`
}

type CheckoutRequest struct {
	Buyer           identity.BuyerIdentity
	Email           string
	FirstName       string
	LastName        string
	ShippingAddress map[string]string
	Lines           []CheckoutLine
}

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

type CheckoutService interface {
	CreateSession(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error)
}

type checkoutServiceImpl struct {
	stripeClient client.StripeClient
	variantRepo  repository.VariantRepository
	frontendURL  string
}

func NewCheckoutService(
	stripeClient client.StripeClient,
	variantRepo repository.VariantRepository,
	frontendURL string,
) CheckoutService {
	return &checkoutServiceImpl{
		stripeClient: stripeClient,
		variantRepo:  variantRepo,
		frontendURL:  frontendURL,
	}
}

// CreateSession snapshots the priced lines into an external payment session.
// Every line is re-validated against current stock first; one short line
// aborts the whole session with all deficiencies named. Nothing local is
// mutated here: no stock reservation, no cart change.
func (s *checkoutServiceImpl) CreateSession(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("checkout requires at least one line")
	}

	var outOfStock []OutOfStockItem
	var lineItems []client.CheckoutLineItem
	subtotal := decimal.Zero

	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("line quantity must be positive")
		}

		variant, err := s.variantRepo.FindByID(ctx, line.VariantID)
		if err != nil {
			return nil, fmt.Errorf("find variant %d: %w", line.VariantID, err)
		}
		if variant.Product == nil {
			return nil, fmt.Errorf("variant %d has no product", line.VariantID)
		}

		ok, err := s.variantRepo.ReserveCheck(ctx, line.VariantID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("reserve check variant %d: %w", line.VariantID, err)
		}
		if !ok {
			outOfStock = append(outOfStock, OutOfStockItem{
				Product:   variant.Product.Name,
				Variant:   variant.Size,
				Requested: line.Quantity,
				Available: variant.Stock,
			})
			continue
		}

		price := variant.Product.Price
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))

		size := variant.Size
		if size == "" {
			size = "Default"
		}
		lineItems = append(lineItems, client.CheckoutLineItem{
			Name:        fmt.Sprintf("%s - %s", variant.Product.Name, size),
			Description: variant.Product.Description,
			ImageURL:    variant.Product.ImageURL,
			UnitAmount:  price.Mul(decimal.NewFromInt(100)).IntPart(),
			Quantity:    line.Quantity,
		})
	}

	if len(outOfStock) > 0 {
		return nil, &OutOfStockError{Items: outOfStock}
	}

	addressJSON, err := json.Marshal(req.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("marshal shipping address: %w", err)
	}

	// The metadata is the checkout snapshot: it round-trips through the
	// payment processor and is the only state the confirmation handler
	// trusts when it materializes the order.
	metadata := map[string]string{
		model.MetaEmail:           req.Email,
		model.MetaBuyerIdentity:   req.Buyer.Key(),
		model.MetaIsGuest:         strconv.FormatBool(req.Buyer.IsGuest()),
		model.MetaShippingAddress: string(addressJSON),
		model.MetaShippingCost:    standardShippingCost.StringFixed(2),
		model.MetaSubtotal:        subtotal.StringFixed(2),
		model.MetaFirstName:       req.FirstName,
		model.MetaLastName:        req.LastName,
	}

	session, err := s.stripeClient.CreateCheckoutSession(ctx, &client.CreateSessionRequest{
		CustomerEmail:     req.Email,
		LineItems:         lineItems,
		Metadata:          metadata,
		SuccessURL:        s.frontendURL + "/success",
		CancelURL:         s.frontendURL + "/cancel",
		ShippingAmount:    standardShippingCost.Mul(decimal.NewFromInt(100)).IntPart(),
		ClientReferenceID: req.Buyer.Key(),
	})
	if err != nil {
		return nil, fmt.Errorf("stripe create session: %w", err)
	}

	return &CheckoutResponse{CheckoutURL: session.URL}, nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-backend/internal/client"
	"storefront-backend/internal/config"
	"storefront-backend/internal/model"
	"storefront-backend/internal/repository"
)

var ErrOrderAlreadyShipped = errors.New("order already shipped")

type ParcelDims struct {
	Length decimal.Decimal `json:"length"`
	Width  decimal.Decimal `json:"width"`
	Height decimal.Decimal `json:"height"`
	Weight decimal.Decimal `json:"weight"`
}

type RateQuote struct {
	RateID        string `json:"rate_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Provider      string `json:"provider"`
	Service       string `json:"service"`
	EstimatedDays int    `json:"estimated_days"`
}

type ShippingService interface {
	PreviewRates(ctx context.Context, orderID uint, dims *ParcelDims) ([]RateQuote, error)
	GenerateLabel(ctx context.Context, orderID uint, rateID string) (*model.Order, error)
}

type shippingServiceImpl struct {
	shippoClient client.ShippoClient
	orderRepo    repository.OrderRepository
	notifier     Notifier
	store        *config.Store
}

func NewShippingService(
	shippoClient client.ShippoClient,
	orderRepo repository.OrderRepository,
	notifier Notifier,
	store *config.Store,
) ShippingService {
	return &shippingServiceImpl{
		shippoClient: shippoClient,
		orderRepo:    orderRepo,
		notifier:     notifier,
		store:        store,
	}
}

// PreviewRates quotes shipping for an order's parcel, persisting the quoted
// shipment id and any overridden dimensions so a later label purchase can
// reference the same quote.
func (s *shippingServiceImpl) PreviewRates(ctx context.Context, orderID uint, dims *ParcelDims) ([]RateQuote, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}

	if dims != nil {
		if !dims.Length.IsZero() {
			order.ParcelLength = dims.Length
		}
		if !dims.Width.IsZero() {
			order.ParcelWidth = dims.Width
		}
		if !dims.Height.IsZero() {
			order.ParcelHeight = dims.Height
		}
		if !dims.Weight.IsZero() {
			order.ParcelWeight = dims.Weight
		}
	}

	shipment, err := s.shippoClient.CreateShipment(ctx,
		s.shipFromAddress(),
		shipToAddress(order),
		&client.ShippoParcel{
			Length:       order.ParcelLength.String(),
			Width:        order.ParcelWidth.String(),
			Height:       order.ParcelHeight.String(),
			DistanceUnit: "in",
			Weight:       order.ParcelWeight.String(),
			MassUnit:     "lb",
		})
	if err != nil {
		return nil, err
	}

	order.ShippoShipmentID = shipment.ObjectID
	if err := s.orderRepo.UpdateParcel(ctx, order); err != nil {
		return nil, fmt.Errorf("persist shipment id: %w", err)
	}

	quotes := make([]RateQuote, 0, len(shipment.Rates))
	for _, rate := range shipment.Rates {
		quotes = append(quotes, RateQuote{
			RateID:        rate.ObjectID,
			Amount:        rate.Amount,
			Currency:      rate.Currency,
			Provider:      rate.Provider,
			Service:       rate.ServiceLevel.Name,
			EstimatedDays: rate.EstimatedDays,
		})
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Amount < quotes[j].Amount })

	return quotes, nil
}

// GenerateLabel purchases the selected rate and populates the order's
// fulfillment fields exactly once. The shipped-confirmation email is
// fire-and-forget.
func (s *shippingServiceImpl) GenerateLabel(ctx context.Context, orderID uint, rateID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}

	if order.IsShipped {
		return nil, ErrOrderAlreadyShipped
	}
	if order.ShippoShipmentID == "" || rateID == "" {
		return nil, fmt.Errorf("missing shipment or rate id")
	}

	shipment, err := s.shippoClient.GetShipment(ctx, order.ShippoShipmentID)
	if err != nil {
		return nil, err
	}

	var selected *client.ShippoRate
	for i := range shipment.Rates {
		if shipment.Rates[i].ObjectID == rateID {
			selected = &shipment.Rates[i]
			break
		}
	}
	if selected == nil {
		return nil, fmt.Errorf("selected rate %s not found on shipment", rateID)
	}

	transaction, err := s.shippoClient.PurchaseLabel(ctx, selected.ObjectID)
	if err != nil {
		return nil, err
	}

	order.SelectedRateID = rateID
	if err := s.orderRepo.UpdateParcel(ctx, order); err != nil {
		return nil, fmt.Errorf("persist selected rate: %w", err)
	}

	err = s.orderRepo.MarkShipped(ctx, orderID, &repository.FulfillmentUpdate{
		LabelURL:       transaction.LabelURL,
		TrackingNumber: transaction.TrackingNumber,
		Provider:       selected.Provider,
		Service:        selected.ServiceLevel.Name,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderAlreadyShipped
		}
		return nil, fmt.Errorf("mark order shipped: %w", err)
	}

	shipped, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}

	if shipped.Email != "" {
		if body, err := renderShippingConfirmation(shipped, transaction.TrackingURLProvider); err != nil {
			log.Error().Err(err).Uint("order_id", orderID).Msg("shipping confirmation render failed")
		} else if err := s.notifier.Send(ctx, shipped.Email, "Your Order Has Shipped!", body); err != nil {
			log.Error().Err(err).Uint("order_id", orderID).Msg("shipping confirmation email failed")
		}
	}

	return shipped, nil
}

func (s *shippingServiceImpl) shipFromAddress() *client.ShippoAddress {
	return &client.ShippoAddress{
		Name:    s.store.ShipFromName,
		Street1: s.store.ShipFromStreet,
		City:    s.store.ShipFromCity,
		State:   s.store.ShipFromState,
		Zip:     s.store.ShipFromZip,
		Country: s.store.ShipFromCountry,
		Phone:   s.store.ShipFromPhone,
	}
}

func shipToAddress(order *model.Order) *client.ShippoAddress {
	var address map[string]string
	if err := json.Unmarshal([]byte(valueOr(order.ShippingAddress, "{}")), &address); err != nil {
		address = map[string]string{}
	}

	return &client.ShippoAddress{
		Name:    valueOr(address["name"], order.FirstName+" "+order.LastName),
		Street1: address["line1"],
		City:    address["city"],
		State:   address["state"],
		Zip:     address["postal_code"],
		Country: valueOr(address["country"], "US"),
		Email:   order.Email,
	}
}

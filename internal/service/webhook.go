package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-backend/internal/client"
	"storefront-backend/internal/identity"
	"storefront-backend/internal/model"
	"storefront-backend/internal/repository"
)

type WebhookService interface {
	HandlePaymentEvent(ctx context.Context, sigHeader string, payload []byte) error
	HandleUserCreated(ctx context.Context, payload []byte) (int64, error)
}

type webhookServiceImpl struct {
	db           *gorm.DB
	stripeClient client.StripeClient
	orderRepo    repository.OrderRepository
	variantRepo  repository.VariantRepository
	cartRepo     repository.CartRepository
	notifier     Notifier
	ownerEmail   string
}

func NewWebhookService(
	db *gorm.DB,
	stripeClient client.StripeClient,
	orderRepo repository.OrderRepository,
	variantRepo repository.VariantRepository,
	cartRepo repository.CartRepository,
	notifier Notifier,
	ownerEmail string,
) WebhookService {
	return &webhookServiceImpl{
		db:           db,
		stripeClient: stripeClient,
		orderRepo:    orderRepo,
		variantRepo:  variantRepo,
		cartRepo:     cartRepo,
		notifier:     notifier,
		ownerEmail:   ownerEmail,
	}
}

// HandlePaymentEvent consumes a signed payment event. Unverifiable payloads
// are rejected before any state change; everything after verification is
// processed at-most-once per checkout session.
func (s *webhookServiceImpl) HandlePaymentEvent(ctx context.Context, sigHeader string, payload []byte) error {
	if err := s.stripeClient.VerifyWebhookSignature(sigHeader, payload); err != nil {
		log.Warn().Err(err).Msg("rejected webhook with bad signature")
		return err
	}

	var event model.StripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decode webhook payload: %w", err)
	}

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, &event.Data.Object)
	}

	return nil
}

// handleCheckoutCompleted materializes the order from the event's own
// snapshot, never from the live cart or catalog, which may have drifted
// since checkout was initiated. The unique index on stripe_checkout_id is
// the idempotency mechanism: a repeated delivery becomes a no-op.
func (s *webhookServiceImpl) handleCheckoutCompleted(ctx context.Context, session *model.StripeCheckoutSession) error {
	if session.ID == "" {
		return fmt.Errorf("missing session id in webhook payload")
	}

	exists, err := s.orderRepo.ExistsByCheckoutID(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("check existing order: %w", err)
	}
	if exists {
		log.Info().Str("session_id", session.ID).Msg("duplicate payment event, skipping")
		return nil
	}

	lineItems, err := s.stripeClient.ListLineItems(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("list session line items: %w", err)
	}

	meta := session.Metadata
	shippingCost, err := decimal.NewFromString(valueOr(meta[model.MetaShippingCost], "0.00"))
	if err != nil {
		shippingCost = decimal.Zero
	}
	isGuest, _ := strconv.ParseBool(meta[model.MetaIsGuest])
	buyerKey := meta[model.MetaBuyerIdentity]
	email := session.CustomerEmail
	if email == "" {
		email = meta[model.MetaEmail]
	}

	var subtotalCents int64
	for _, item := range lineItems {
		subtotalCents += item.AmountTotal
	}

	order := &model.Order{
		BuyerIdentity:       buyerKey,
		Email:               email,
		IsGuest:             isGuest,
		Subtotal:            decimal.New(subtotalCents, -2),
		StripeCheckoutID:    session.ID,
		StripePaymentStatus: session.PaymentStatus,
		ShippingAddress:     meta[model.MetaShippingAddress],
		ShippingCost:        shippingCost,
		FirstName:           strings.TrimSpace(meta[model.MetaFirstName]),
		LastName:            strings.TrimSpace(meta[model.MetaLastName]),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}

		for _, item := range lineItems {
			if item.Quantity <= 0 {
				continue
			}

			productName, size := splitLineDescription(item.Description)
			variant, err := s.variantRepo.FindByProductNameAndSize(ctx, productName, size)
			if err != nil {
				// The processor only round-trips display names, so a renamed
				// product makes this line unresolvable. The order still
				// stands; the line is dropped and flagged for follow-up.
				log.Warn().Str("description", item.Description).Str("session_id", session.ID).
					Msg("variant not resolved for paid line item, skipping")
				continue
			}

			unitPrice := decimal.New(item.AmountTotal, -2).
				Div(decimal.NewFromInt(int64(item.Quantity))).Round(2)

			orderItem := &model.OrderItem{
				OrderID:   order.ID,
				VariantID: &variant.ID,
				Quantity:  item.Quantity,
				Price:     unitPrice,
			}
			if err := tx.Create(orderItem).Error; err != nil {
				return fmt.Errorf("store order item: %w", err)
			}

			if err := s.variantRepo.Decrement(ctx, tx, variant.ID, item.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					// The payment already happened; the ledger floors at zero
					// rather than rejecting a confirmed sale.
					log.Warn().Uint("variant_id", variant.ID).Int("quantity", item.Quantity).
						Msg("confirmed sale exceeds remaining stock, clamping to zero")
					if err := s.variantRepo.ZeroStock(ctx, tx, variant.ID); err != nil {
						return fmt.Errorf("clamp stock: %w", err)
					}
				} else {
					return fmt.Errorf("decrement stock: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent delivery of the same event won the insert race.
			log.Info().Str("session_id", session.ID).Msg("duplicate payment event, skipping")
			return nil
		}
		return err
	}

	// The snapshot is committed; from here on nothing may fail the order.
	buyer := identity.FromKey(buyerKey)
	if !buyer.IsZero() && !buyer.IsGuest() {
		if err := s.cartRepo.DeleteByBuyerIdentity(ctx, buyer.Key()); err != nil {
			log.Error().Err(err).Str("buyer", buyer.Key()).Msg("failed to clear cart after checkout")
		} else {
			log.Info().Str("buyer", buyer.Key()).Msg("cart cleared after checkout")
		}
	}

	s.sendOrderNotifications(ctx, order)

	return nil
}

func (s *webhookServiceImpl) sendOrderNotifications(ctx context.Context, order *model.Order) {
	if order.Email == "" {
		return
	}

	full, err := s.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		log.Error().Err(err).Uint("order_id", order.ID).Msg("failed to load order for notifications")
		return
	}

	if body, err := renderOrderConfirmation(full); err != nil {
		log.Error().Err(err).Uint("order_id", order.ID).Msg("order confirmation render failed")
	} else if err := s.notifier.Send(ctx, full.Email,
		fmt.Sprintf("Your Order #%d", full.ID), body); err != nil {
		log.Error().Err(err).Uint("order_id", order.ID).Msg("order confirmation email failed")
	}

	if s.ownerEmail == "" {
		return
	}
	if body, err := renderOrderNotification(full); err != nil {
		log.Error().Err(err).Uint("order_id", order.ID).Msg("owner notification render failed")
	} else if err := s.notifier.Send(ctx, s.ownerEmail,
		fmt.Sprintf("New Order #%d", full.ID), body); err != nil {
		log.Error().Err(err).Uint("order_id", order.ID).Msg("owner notification email failed")
	}
}

type userCreatedEvent struct {
	Data struct {
		ID             string `json:"id"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

// HandleUserCreated relinks guest orders to a newly authenticated identity
// sharing the same email. Idempotent: once the guest rows are rewritten a
// replay updates nothing.
func (s *webhookServiceImpl) HandleUserCreated(ctx context.Context, payload []byte) (int64, error) {
	var event userCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return 0, fmt.Errorf("decode user-created payload: %w", err)
	}

	userID := event.Data.ID
	if userID == "" || len(event.Data.EmailAddresses) == 0 {
		return 0, fmt.Errorf("user-created payload missing id or email")
	}
	email := event.Data.EmailAddresses[0].EmailAddress
	if email == "" {
		return 0, fmt.Errorf("user-created payload missing email")
	}

	updated, err := s.orderRepo.ReassignGuestOrders(ctx, email, userID)
	if err != nil {
		return 0, fmt.Errorf("reassign guest orders: %w", err)
	}

	log.Info().Int64("updated", updated).Str("user_id", userID).
		Msg("reconciled guest orders to authenticated identity")

	return updated, nil
}

// splitLineDescription undoes the "<product> - <size>" naming used when the
// session was built. Descriptions without the separator mean a default
// (sizeless) variant.
func splitLineDescription(description string) (productName, size string) {
	idx := strings.LastIndex(description, " - ")
	if idx < 0 {
		return description, ""
	}
	productName, size = description[:idx], description[idx+3:]
	if size == "Default" {
		// Sizeless variants are displayed as "Default" at checkout.
		size = ""
	}
	return productName, size
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

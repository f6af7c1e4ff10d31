package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"storefront-backend/internal/client"
	"storefront-backend/internal/service"
)

type WebhookHandler struct {
	webhookService service.WebhookService
}

func NewWebhookHandler(webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// StripeWebhook receives payment events. Unverifiable signatures are the
// only rejection; any failure after verification is logged and the event is
// still acknowledged, so a permanently-malformed event cannot trigger a
// retry storm.
func (h *WebhookHandler) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	sigHeader := c.Request().Header.Get("Stripe-Signature")

	if err := h.webhookService.HandlePaymentEvent(ctx, sigHeader, body); err != nil {
		if errors.Is(err, client.ErrUnverifiedEvent) {
			return c.NoContent(http.StatusBadRequest)
		}
		log.Error().Err(err).Msg("failed to process payment event")
	}

	return c.NoContent(http.StatusOK)
}

// ClerkUserCreated relinks guest orders after a buyer authenticates for the
// first time.
func (h *WebhookHandler) ClerkUserCreated(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	updated, err := h.webhookService.HandleUserCreated(ctx, body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "success",
		"updated": updated,
	})
}

package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/client"
	"storefront-backend/internal/handler"
)

type fakeWebhookService struct {
	handlePaymentEventFn func(ctx context.Context, sigHeader string, payload []byte) error
	handleUserCreatedFn  func(ctx context.Context, payload []byte) (int64, error)
}

func (f *fakeWebhookService) HandlePaymentEvent(ctx context.Context, sigHeader string, payload []byte) error {
	return f.handlePaymentEventFn(ctx, sigHeader, payload)
}

func (f *fakeWebhookService) HandleUserCreated(ctx context.Context, payload []byte) (int64, error) {
	return f.handleUserCreatedFn(ctx, payload)
}

func TestStripeWebhookStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{
			name:       "ok",
			wantStatus: http.StatusOK,
		},
		{
			name:       "bad_signature_rejected",
			serviceErr: client.ErrUnverifiedEvent,
			wantStatus: http.StatusBadRequest,
		},
		{
			// Post-verification failures are acknowledged so the processor
			// does not retry a permanently-broken event forever.
			name:       "processing_error_still_acked",
			serviceErr: fmt.Errorf("db down"),
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeWebhookService{
				handlePaymentEventFn: func(_ context.Context, sigHeader string, payload []byte) error {
					assert.Equal(t, "t=1,v1=abc", sigHeader)
					assert.JSONEq(t, `{"type":"checkout.session.completed"}`, string(payload))
					return tt.serviceErr
				},
			}
			h := handler.NewWebhookHandler(svc)

			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/stripe-webhook",
				strings.NewReader(`{"type":"checkout.session.completed"}`))
			req.Header.Set("Stripe-Signature", "t=1,v1=abc")
			rec := httptest.NewRecorder()

			require.NoError(t, h.StripeWebhook(e.NewContext(req, rec)))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestClerkUserCreatedHandler(t *testing.T) {
	svc := &fakeWebhookService{
		handleUserCreatedFn: func(_ context.Context, _ []byte) (int64, error) {
			return 2, nil
		},
	}
	h := handler.NewWebhookHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/clerk-user-created",
		strings.NewReader(`{"data":{"id":"user_42","email_addresses":[{"email_address":"a@example.com"}]}}`))
	rec := httptest.NewRecorder()

	require.NoError(t, h.ClerkUserCreated(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success","updated":2}`, rec.Body.String())
}

func TestClerkUserCreatedHandlerBadPayload(t *testing.T) {
	svc := &fakeWebhookService{
		handleUserCreatedFn: func(_ context.Context, _ []byte) (int64, error) {
			return 0, fmt.Errorf("user-created payload missing id or email")
		},
	}
	h := handler.NewWebhookHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/clerk-user-created", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	err := h.ClerkUserCreated(e.NewContext(req, rec))

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

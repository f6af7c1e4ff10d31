package client

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront-backend/internal/config"
	"storefront-backend/internal/model"
)

// ErrUnverifiedEvent is returned when a webhook payload fails signature
// verification. The caller must reject the event without any state change.
var ErrUnverifiedEvent = fmt.Errorf("stripe webhook signature verification failed")

const signatureTolerance = 5 * time.Minute

type CheckoutLineItem struct {
	Name        string
	Description string
	ImageURL    string
	UnitAmount  int64 // cents
	Quantity    int
}

type CreateSessionRequest struct {
	CustomerEmail     string
	LineItems         []CheckoutLineItem
	Metadata          map[string]string
	SuccessURL        string
	CancelURL         string
	ShippingAmount    int64 // cents
	ClientReferenceID string
}

type StripeClient interface {
	CreateCheckoutSession(ctx context.Context, req *CreateSessionRequest) (*model.StripeCheckoutSession, error)
	ListLineItems(ctx context.Context, sessionID string) ([]model.StripeLineItem, error)
	VerifyWebhookSignature(sigHeader string, payload []byte) error
}

type stripeClientImpl struct {
	httpClient    *http.Client
	baseApiURL    string
	secretKey     string
	webhookSecret string
	now           func() time.Time
}

func NewStripeClient(stripeCfg *config.Stripe) StripeClient {
	return &stripeClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:    stripeCfg.BaseApiURL,
		secretKey:     stripeCfg.SecretKey,
		webhookSecret: stripeCfg.WebhookSecret,
		now:           time.Now,
	}
}

func (c *stripeClientImpl) CreateCheckoutSession(ctx context.Context, sessionReq *CreateSessionRequest) (*model.StripeCheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("success_url", sessionReq.SuccessURL)
	form.Set("cancel_url", sessionReq.CancelURL)
	if sessionReq.CustomerEmail != "" {
		form.Set("customer_email", sessionReq.CustomerEmail)
	}
	if sessionReq.ClientReferenceID != "" {
		form.Set("client_reference_id", sessionReq.ClientReferenceID)
	}

	for i, item := range sessionReq.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
		form.Set(prefix+"[price_data][currency]", "usd")
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		if item.Description != "" {
			form.Set(prefix+"[price_data][product_data][description]", item.Description)
		}
		if item.ImageURL != "" {
			form.Set(prefix+"[price_data][product_data][images][0]", item.ImageURL)
		}
	}

	form.Set("shipping_options[0][shipping_rate_data][type]", "fixed_amount")
	form.Set("shipping_options[0][shipping_rate_data][fixed_amount][amount]", strconv.FormatInt(sessionReq.ShippingAmount, 10))
	form.Set("shipping_options[0][shipping_rate_data][fixed_amount][currency]", "usd")
	form.Set("shipping_options[0][shipping_rate_data][display_name]", "Standard Shipping")

	for key, value := range sessionReq.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/checkout/sessions",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("stripe error %d: %s", resp.StatusCode, string(b))
	}

	var session model.StripeCheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode stripe response: %w", err)
	}

	return &session, nil
}

func (c *stripeClientImpl) ListLineItems(ctx context.Context, sessionID string) ([]model.StripeLineItem, error) {
	reqURL := fmt.Sprintf("%s/v1/checkout/sessions/%s/line_items?limit=100",
		c.baseApiURL, url.PathEscape(sessionID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("stripe error %d: %s", resp.StatusCode, string(b))
	}

	var list model.StripeLineItemList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode line items: %w", err)
	}

	return list.Data, nil
}

// VerifyWebhookSignature checks the Stripe-Signature header
// ("t=<unix>,v1=<hex hmac>") against an HMAC-SHA256 of "<t>.<payload>"
// keyed with the endpoint secret.
func (c *stripeClientImpl) VerifyWebhookSignature(sigHeader string, payload []byte) error {
	var timestamp string
	var signatures []string

	for _, part := range strings.Split(sigHeader, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signatures = append(signatures, value)
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return ErrUnverifiedEvent
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrUnverifiedEvent
	}
	if c.now().Sub(time.Unix(ts, 0)).Abs() > signatureTolerance {
		return ErrUnverifiedEvent
	}

	expected := ComputeWebhookSignature(c.webhookSecret, timestamp, payload)
	for _, sig := range signatures {
		if subtle.ConstantTimeCompare([]byte(sig), []byte(expected)) == 1 {
			return nil
		}
	}

	return ErrUnverifiedEvent
}

func ComputeWebhookSignature(secret, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

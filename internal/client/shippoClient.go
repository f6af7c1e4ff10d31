package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront-backend/internal/config"
)

type ShippoAddress struct {
	Name    string `json:"name"`
	Street1 string `json:"street1"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

type ShippoParcel struct {
	Length       string `json:"length"`
	Width        string `json:"width"`
	Height       string `json:"height"`
	DistanceUnit string `json:"distance_unit"`
	Weight       string `json:"weight"`
	MassUnit     string `json:"mass_unit"`
}

type ShippoServiceLevel struct {
	Name string `json:"name"`
}

type ShippoRate struct {
	ObjectID      string             `json:"object_id"`
	Amount        string             `json:"amount"`
	Currency      string             `json:"currency"`
	Provider      string             `json:"provider"`
	ServiceLevel  ShippoServiceLevel `json:"servicelevel"`
	EstimatedDays int                `json:"estimated_days"`
}

type ShippoShipment struct {
	ObjectID string       `json:"object_id"`
	Rates    []ShippoRate `json:"rates"`
}

type ShippoMessage struct {
	Text string `json:"text"`
}

type ShippoTransaction struct {
	ObjectID            string          `json:"object_id"`
	Status              string          `json:"status"`
	LabelURL            string          `json:"label_url"`
	TrackingNumber      string          `json:"tracking_number"`
	TrackingURLProvider string          `json:"tracking_url_provider"`
	Messages            []ShippoMessage `json:"messages"`
}

type ShippoClient interface {
	CreateShipment(ctx context.Context, from, to *ShippoAddress, parcel *ShippoParcel) (*ShippoShipment, error)
	GetShipment(ctx context.Context, shipmentID string) (*ShippoShipment, error)
	PurchaseLabel(ctx context.Context, rateID string) (*ShippoTransaction, error)
}

type shippoClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	apiKey     string
}

func NewShippoClient(shippoCfg *config.Shippo) ShippoClient {
	return &shippoClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: shippoCfg.BaseApiURL,
		apiKey:     shippoCfg.APIKey,
	}
}

func (c *shippoClientImpl) CreateShipment(ctx context.Context, from, to *ShippoAddress, parcel *ShippoParcel) (*ShippoShipment, error) {
	payload := map[string]interface{}{
		"address_from": from,
		"address_to":   to,
		"parcels":      []*ShippoParcel{parcel},
		"async":        false,
	}

	var shipment ShippoShipment
	if err := c.do(ctx, http.MethodPost, "/shipments/", payload, &shipment); err != nil {
		return nil, fmt.Errorf("shippo create shipment: %w", err)
	}

	return &shipment, nil
}

func (c *shippoClientImpl) GetShipment(ctx context.Context, shipmentID string) (*ShippoShipment, error) {
	var shipment ShippoShipment
	if err := c.do(ctx, http.MethodGet, "/shipments/"+shipmentID, nil, &shipment); err != nil {
		return nil, fmt.Errorf("shippo get shipment: %w", err)
	}

	return &shipment, nil
}

func (c *shippoClientImpl) PurchaseLabel(ctx context.Context, rateID string) (*ShippoTransaction, error) {
	payload := map[string]interface{}{
		"rate":            rateID,
		"label_file_type": "PDF",
		"async":           false,
	}

	var transaction ShippoTransaction
	if err := c.do(ctx, http.MethodPost, "/transactions/", payload, &transaction); err != nil {
		return nil, fmt.Errorf("shippo purchase label: %w", err)
	}

	if transaction.Status != "SUCCESS" {
		var texts []string
		for _, msg := range transaction.Messages {
			texts = append(texts, msg.Text)
		}
		return nil, fmt.Errorf("shippo transaction status %s: %v", transaction.Status, texts)
	}

	return &transaction, nil
}

func (c *shippoClientImpl) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal req payload: %w", err)
		}
		body = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseApiURL+path, body)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "ShippoToken "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("shippo error %d: %s", resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode shippo response: %w", err)
	}

	return nil
}

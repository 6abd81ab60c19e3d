package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/shopspring/decimal"
)

// PaymentGateway starts and confirms hosted checkouts with one provider.
type PaymentGateway interface {
	Name() string
	Initialize(ctx context.Context, init models.PaymentInit) (*models.PaymentSession, error)
	Verify(ctx context.Context, reference string) (*models.PaymentVerification, error)
}

// gatewayClient performs authenticated JSON calls against a provider API.
type gatewayClient struct {
	baseURL string
	secret  string
	http    *http.Client
}

func newGatewayClient(baseURL, secret string) gatewayClient {
	return gatewayClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// makeRequest sends payload as JSON and decodes the response into out. Non-2xx
// responses are errors carrying the provider's message when it sent one.
func (c gatewayClient) makeRequest(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	if c.secret == "" {
		return fmt.Errorf("payment provider secret key is not configured")
	}

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(respBody, &envelope)
		log.Printf("Payment provider error: %s %s -> %d %s", method, endpoint, resp.StatusCode, envelope.Message)
		return fmt.Errorf("payment provider error (%d): %s", resp.StatusCode, envelope.Message)
	}
	return nil
}

type PaystackGateway struct {
	client gatewayClient
}

func NewPaystackGateway(baseURL, secretKey string) *PaystackGateway {
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	return &PaystackGateway{client: newGatewayClient(baseURL, secretKey)}
}

func (g *PaystackGateway) Name() string { return models.ProviderPaystack }

// Initialize opens a Paystack transaction. Amounts are sent in kobo.
func (g *PaystackGateway) Initialize(ctx context.Context, init models.PaymentInit) (*models.PaymentSession, error) {
	payload := map[string]interface{}{
		"email":        init.Email,
		"amount":       toMinorUnits(init.Amount),
		"reference":    init.Reference,
		"callback_url": init.CallbackURL,
		"metadata":     map[string]string{"orderId": init.OrderID},
	}

	var resp models.PaystackResponse
	if err := g.client.makeRequest(ctx, http.MethodPost, "/transaction/initialize", payload, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, fmt.Errorf("paystack error: %s", resp.Message)
	}

	return &models.PaymentSession{
		Provider:         models.ProviderPaystack,
		Reference:        stringField(resp.Data, "reference", init.Reference),
		AuthorizationURL: stringField(resp.Data, "authorization_url", ""),
		AccessCode:       stringField(resp.Data, "access_code", ""),
	}, nil
}

func (g *PaystackGateway) Verify(ctx context.Context, reference string) (*models.PaymentVerification, error) {
	var resp models.PaystackResponse
	if err := g.client.makeRequest(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, fmt.Errorf("paystack error: %s", resp.Message)
	}
	return paystackVerification(resp.Data, reference), nil
}

func paystackVerification(data map[string]interface{}, reference string) *models.PaymentVerification {
	status := stringField(data, "status", "")
	email := ""
	if customer, ok := data["customer"].(map[string]interface{}); ok {
		email = stringField(customer, "email", "")
	}
	return &models.PaymentVerification{
		Provider:      models.ProviderPaystack,
		Reference:     stringField(data, "reference", reference),
		TransactionID: stringField(data, "id", ""),
		Status:        status,
		Amount:        fromMinorUnits(numberField(data, "amount")),
		Email:         email,
		PaidAt:        stringField(data, "paid_at", ""),
		Successful:    status == "success",
	}
}

type FlutterwaveGateway struct {
	client gatewayClient
}

func NewFlutterwaveGateway(baseURL, secretKey string) *FlutterwaveGateway {
	if baseURL == "" {
		baseURL = "https://api.flutterwave.com"
	}
	return &FlutterwaveGateway{client: newGatewayClient(baseURL, secretKey)}
}

func (g *FlutterwaveGateway) Name() string { return models.ProviderFlutterwave }

func (g *FlutterwaveGateway) Initialize(ctx context.Context, init models.PaymentInit) (*models.PaymentSession, error) {
	payload := map[string]interface{}{
		"tx_ref":       init.Reference,
		"amount":       decimal.NewFromFloat(init.Amount).StringFixed(2),
		"currency":     "NGN",
		"redirect_url": init.CallbackURL,
		"customer": map[string]string{
			"email": init.Email,
			"name":  init.Name,
		},
		"meta": map[string]string{"orderId": init.OrderID},
	}

	var resp models.FlutterwaveResponse
	if err := g.client.makeRequest(ctx, http.MethodPost, "/v3/payments", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("flutterwave error: %s", resp.Message)
	}

	return &models.PaymentSession{
		Provider:         models.ProviderFlutterwave,
		Reference:        init.Reference,
		AuthorizationURL: stringField(resp.Data, "link", ""),
	}, nil
}

// Verify looks the transaction up by the tx_ref we generated.
func (g *FlutterwaveGateway) Verify(ctx context.Context, reference string) (*models.PaymentVerification, error) {
	var resp models.FlutterwaveResponse
	endpoint := "/v3/transactions/verify_by_reference?tx_ref=" + url.QueryEscape(reference)
	if err := g.client.makeRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("flutterwave error: %s", resp.Message)
	}
	return flutterwaveVerification(resp.Data, reference), nil
}

func flutterwaveVerification(data map[string]interface{}, reference string) *models.PaymentVerification {
	status := stringField(data, "status", "")
	email := ""
	if customer, ok := data["customer"].(map[string]interface{}); ok {
		email = stringField(customer, "email", "")
	}
	return &models.PaymentVerification{
		Provider:      models.ProviderFlutterwave,
		Reference:     stringField(data, "tx_ref", reference),
		TransactionID: stringField(data, "id", ""),
		Status:        status,
		Amount:        numberField(data, "amount"),
		Email:         email,
		PaidAt:        stringField(data, "created_at", ""),
		Successful:    status == "successful",
	}
}

func toMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func fromMinorUnits(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Div(decimal.NewFromInt(100)).Round(2).Float64()
	return f
}

// stringField reads a JSON field that may be a string or a number.
func stringField(data map[string]interface{}, key, fallback string) string {
	switch v := data[key].(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return decimal.NewFromFloat(v).String()
	}
	return fallback
}

func numberField(data map[string]interface{}, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case string:
		d, err := decimal.NewFromString(v)
		if err == nil {
			f, _ := d.Float64()
			return f
		}
	}
	return 0
}

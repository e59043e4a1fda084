package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"toolpool-backend/internal/domain"
	"toolpool-backend/internal/logger"

	"github.com/google/uuid"
)

// Client talks to the processor's REST API. Every mutating call carries an
// Idempotency-Key header so a retried request cannot double-execute.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	logger.ExternalServiceCall("payment", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.ExternalServiceResult("payment", path, err)
		return fmt.Errorf("%w: payment request failed: %v", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("%w: payment API status %d: %s", domain.ErrExternalService, resp.StatusCode, data)
		logger.ExternalServiceResult("payment", path, err)
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decoding payment response: %v", domain.ErrExternalService, err)
		}
	}
	logger.ExternalServiceResult("payment", path, nil)
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: payment request failed: %v", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: payment API status %d: %s", domain.ErrExternalService, resp.StatusCode, data)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) CreateCheckout(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	body := map[string]any{
		"customer":    params.CustomerID,
		"mode":        params.Mode,
		"line_items":  params.LineItems,
		"success_url": params.SuccessURL,
		"cancel_url":  params.CancelURL,
		"metadata":    params.Metadata,
	}
	var session CheckoutSession
	if err := c.post(ctx, "/v1/checkout/sessions", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) Refund(ctx context.Context, paymentRef, reason string, amountCents int32) (string, error) {
	body := map[string]any{
		"payment_intent": paymentRef,
		"reason":         reason,
		"amount":         amountCents,
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/v1/refunds", body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) Transfer(ctx context.Context, amountCents int32, destinationAccount, sourceRef string) (string, error) {
	body := map[string]any{
		"amount":             amountCents,
		"destination":        destinationAccount,
		"source_transaction": sourceRef,
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/v1/transfers", body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) RetrieveSubscriptionStatus(ctx context.Context, customerID string) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/v1/customers/"+customerID+"/subscription", &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

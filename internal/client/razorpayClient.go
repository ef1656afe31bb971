package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"razorpay-billing-service/internal/config"
	"time"
)

type RazorpayClient interface {
	CreateOrder(ctx context.Context, params *CreateOrderParams) (*Order, error)
	CreateSubscription(ctx context.Context, params *CreateSubscriptionParams) (*Subscription, error)
	FetchSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
}

type razorpayClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	keyID      string
	keySecret  string
}

type CreateOrderParams struct {
	Amount   int64             `json:"amount"` // minor units
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type Order struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Status   string            `json:"status"`
	Notes    map[string]string `json:"notes"`
}

type CreateSubscriptionParams struct {
	PlanID         string            `json:"plan_id"`
	TotalCount     int               `json:"total_count"`
	CustomerNotify int               `json:"customer_notify"`
	Notes          map[string]string `json:"notes,omitempty"`
}

type Subscription struct {
	ID         string            `json:"id"`
	PlanID     string            `json:"plan_id"`
	Status     string            `json:"status"`
	ShortURL   string            `json:"short_url"` // hosted checkout link
	CurrentEnd int64             `json:"current_end"`
	ChargeAt   int64             `json:"charge_at"`
	TotalCount int               `json:"total_count"`
	PaidCount  int               `json:"paid_count"`
	Notes      map[string]string `json:"notes"`
}

func NewRazorpayClient(razorpayCfg *config.Razorpay) RazorpayClient {
	return &razorpayClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: razorpayCfg.BaseApiURL,
		keyID:      razorpayCfg.KeyID,
		keySecret:  razorpayCfg.KeySecret,
	}
}

// do issues one request against the gateway. Single attempt, no retries;
// gateway failures come back as errors carrying the response body.
func (c *razorpayClientImpl) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
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
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("razorpay error %d: %s", resp.StatusCode, string(b))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode razorpay response: %w", err)
		}
	}

	return nil
}

func (c *razorpayClientImpl) CreateOrder(ctx context.Context, params *CreateOrderParams) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/orders", params, &order); err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	return &order, nil
}

func (c *razorpayClientImpl) CreateSubscription(ctx context.Context, params *CreateSubscriptionParams) (*Subscription, error) {
	var sub Subscription
	if err := c.do(ctx, http.MethodPost, "/subscriptions", params, &sub); err != nil {
		return nil, fmt.Errorf("razorpay create subscription: %w", err)
	}
	return &sub, nil
}

func (c *razorpayClientImpl) FetchSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	var sub Subscription
	path := fmt.Sprintf("/subscriptions/%s", subscriptionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &sub); err != nil {
		return nil, fmt.Errorf("razorpay fetch subscription: %w", err)
	}
	return &sub, nil
}

func (c *razorpayClientImpl) CancelSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	var sub Subscription
	path := fmt.Sprintf("/subscriptions/%s/cancel", subscriptionID)
	if err := c.do(ctx, http.MethodPost, path, nil, &sub); err != nil {
		return nil, fmt.Errorf("razorpay cancel subscription: %w", err)
	}
	return &sub, nil
}

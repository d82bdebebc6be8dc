package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// PayPal order statuses the deposit flow cares about.
const (
	PayPalOrderCreated   = "CREATED"
	PayPalOrderApproved  = "APPROVED"
	PayPalOrderCompleted = "COMPLETED"
	PayPalOrderDeclined  = "DECLINED"
)

// PayPalProvider wraps the PayPal Orders v2 API.
type PayPalProvider struct {
	baseURL      string
	clientID     string
	clientSecret string
	client       *http.Client
	now          func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewPayPalProvider creates a PayPal provider against baseURL (sandbox or live).
func NewPayPalProvider(baseURL, clientID, clientSecret string, timeout time.Duration) *PayPalProvider {
	return &PayPalProvider{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       &http.Client{Timeout: timeout},
		now:          time.Now,
	}
}

// Name is stored as the transaction's provider.
func (p *PayPalProvider) Name() string { return "paypal" }

// Order is the subset of a PayPal order response used by the deposit flow.
type Order struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	ApproveURL string `json:"-"`
}

// CaptureResult is the provider's declared outcome of a capture.
type CaptureResult struct {
	OrderID   string
	CaptureID string
	Status    string
	Completed bool
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

// CreateOrder creates a CAPTURE-intent order. referenceID ties the order back to the
// pending transaction.
func (p *PayPalProvider) CreateOrder(ctx context.Context, referenceID string, amount decimal.Decimal, currency string) (*Order, error) {
	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{{
			"reference_id": referenceID,
			"amount": map[string]string{
				"currency_code": currency,
				"value":         amount.StringFixed(2),
			},
		}},
	}

	var resp orderResponse
	status, err := p.do(ctx, http.MethodPost, "/v2/checkout/orders", body, referenceID, &resp)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return nil, fmt.Errorf("paypal create order: unexpected status %d", status)
	}

	order := &Order{ID: resp.ID, Status: resp.Status}
	for _, l := range resp.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			order.ApproveURL = l.Href
		}
	}
	return order, nil
}

// CaptureOrder captures an approved order. A declined instrument (422) is a result,
// not an error; transport failures and 5xx responses are errors.
func (p *PayPalProvider) CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	var resp orderResponse
	path := "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	status, err := p.do(ctx, http.MethodPost, path, struct{}{}, "capture-"+orderID, &resp)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusUnprocessableEntity:
		return &CaptureResult{OrderID: orderID, Status: PayPalOrderDeclined}, nil
	case status != http.StatusCreated && status != http.StatusOK:
		return nil, fmt.Errorf("paypal capture order: unexpected status %d", status)
	}

	result := &CaptureResult{OrderID: resp.ID, Status: resp.Status}
	if len(resp.PurchaseUnits) > 0 && len(resp.PurchaseUnits[0].Payments.Captures) > 0 {
		c := resp.PurchaseUnits[0].Payments.Captures[0]
		result.CaptureID = c.ID
		result.Completed = resp.Status == PayPalOrderCompleted && c.Status == PayPalOrderCompleted
	}
	return result, nil
}

func (p *PayPalProvider) do(ctx context.Context, method, path string, in interface{}, requestID string, out interface{}) (int, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return 0, err
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("PayPal-Request-Id", requestID)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("paypal api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, fmt.Errorf("paypal error (status %d): %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode == http.StatusUnauthorized {
		p.mu.Lock()
		p.token = ""
		p.mu.Unlock()
		return resp.StatusCode, fmt.Errorf("paypal rejected access token")
	}
	if resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode paypal response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// accessToken returns a cached OAuth token, refreshing it a minute before expiry.
func (p *PayPalProvider) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.now().Before(p.tokenExpiry) {
		return p.token, nil
	}
	if p.clientID == "" || p.clientSecret == "" {
		return "", fmt.Errorf("paypal credentials not configured")
	}

	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/oauth2/token", form)
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(p.clientID, p.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal token call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("paypal token error (status %d): %s", resp.StatusCode, string(body))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	p.token = tok.AccessToken
	p.tokenExpiry = p.now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return p.token, nil
}

package payments

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
	"golang.org/x/time/rate"
)

// PayPalConfig configures the PayPal orders client
type PayPalConfig struct {
	BaseURL      string // https://api-m.paypal.com or the sandbox host
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
	// RequestsPerSecond caps outgoing calls; 0 uses 5
	RequestsPerSecond float64
}

// PayPal implements Provider with the PayPal orders v2 REST API
type PayPal struct {
	cfg     PayPalConfig
	client  *http.Client
	limiter *rate.Limiter

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewPayPal creates a PayPal provider
func NewPayPal(cfg PayPalConfig) *PayPal {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	return &PayPal{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
	}
}

func (p *PayPal) Name() string { return "paypal" }

// APIError is a non-2xx PayPal response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paypal api error %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether the call may succeed if retried
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

// CreateCheckout creates a CAPTURE intent order in USD
func (p *PayPal) CreateCheckout(ctx context.Context, amount decimal.Decimal, description string) (*Checkout, error) {
	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"amount": map[string]string{
				"currency_code": "USD",
				"value":         amount.StringFixed(2),
			},
			"description": description,
		}},
	}

	var order orderResponse
	if err := p.do(ctx, http.MethodPost, "/v2/checkout/orders", body, &order); err != nil {
		return nil, err
	}
	if order.ID == "" {
		return nil, ErrCheckoutFailed
	}

	checkout := &Checkout{Ref: order.ID}
	for _, link := range order.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			checkout.ApproveURL = link.Href
			break
		}
	}
	return checkout, nil
}

// Verify returns the order's current status
func (p *PayPal) Verify(ctx context.Context, ref string) (Status, error) {
	var order orderResponse
	if err := p.do(ctx, http.MethodGet, "/v2/checkout/orders/"+url.PathEscape(ref), nil, &order); err != nil {
		return "", err
	}
	return paypalStatus(order.Status), nil
}

// Capture captures an approved order
func (p *PayPal) Capture(ctx context.Context, ref string) (Status, error) {
	var order orderResponse
	if err := p.do(ctx, http.MethodPost, "/v2/checkout/orders/"+url.PathEscape(ref)+"/capture", map[string]any{}, &order); err != nil {
		return "", err
	}
	return paypalStatus(order.Status), nil
}

func paypalStatus(s string) Status {
	switch s {
	case "COMPLETED":
		return StatusCompleted
	case "APPROVED":
		return StatusApproved
	case "VOIDED":
		return StatusFailed
	default:
		return StatusPending
	}
}

func (p *PayPal) do(ctx context.Context, method, path string, in, out any) error {
	token, err := p.accessToken(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("error encoding paypal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("error building paypal request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	return p.send(req, out)
}

func (p *PayPal) send(req *http.Request, out any) error {
	if err := p.limiter.Wait(req.Context()); err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("paypal request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading paypal response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Message          string `json:"message"`
			ErrorDescription string `json:"error_description"`
		}
		_ = json.Unmarshal(data, &apiErr)
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.ErrorDescription
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("error decoding paypal response: %w", err)
		}
	}
	return nil
}

// accessToken returns a cached client-credentials token, refreshing it a
// minute before expiry
func (p *PayPal) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && time.Now().Before(p.tokenExpiry) {
		return p.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("error building token request: %w", err)
	}
	req.SetBasicAuth(p.cfg.ClientID, p.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := p.send(req, &token); err != nil {
		return "", fmt.Errorf("failed to get paypal access token: %w", err)
	}

	p.token = token.AccessToken
	p.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - time.Minute)
	return p.token, nil
}

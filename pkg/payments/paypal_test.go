package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type PayPalTestSuite struct {
	suite.Suite
	server      *httptest.Server
	provider    *PayPal
	tokenCalls  atomic.Int32
	orderStatus string
	lastBody    map[string]any
}

func TestPayPalSuite(t *testing.T) {
	suite.Run(t, new(PayPalTestSuite))
}

func (s *PayPalTestSuite) SetupTest() {
	s.tokenCalls.Store(0)
	s.orderStatus = "CREATED"
	s.lastBody = nil

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		s.tokenCalls.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error_description":"bad client"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":3600}`))
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&s.lastBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"ORDER-1","status":"CREATED","links":[{"href":"https://paypal.example/approve","rel":"approve"}]}`))
	})
	mux.HandleFunc("/v2/checkout/orders/ORDER-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"ORDER-1","status":"` + s.orderStatus + `"}`))
	})
	mux.HandleFunc("/v2/checkout/orders/ORDER-1/capture", func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"id":"ORDER-1","status":"COMPLETED"}`))
	})
	mux.HandleFunc("/v2/checkout/orders/BROKEN", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"try later"}`))
	})

	s.server = httptest.NewServer(mux)
	s.provider = NewPayPal(PayPalConfig{
		BaseURL:           s.server.URL,
		ClientID:          "client",
		ClientSecret:      "secret",
		RequestsPerSecond: 100,
	})
}

func (s *PayPalTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *PayPalTestSuite) TestCreateCheckout() {
	checkout, err := s.provider.CreateCheckout(context.Background(), decimal.NewFromInt(25), "25 Battle Coins")
	s.Require().NoError(err)
	s.Equal("ORDER-1", checkout.Ref)
	s.Equal("https://paypal.example/approve", checkout.ApproveURL)

	units := s.lastBody["purchase_units"].([]any)
	amount := units[0].(map[string]any)["amount"].(map[string]any)
	s.Equal("25.00", amount["value"])
	s.Equal("USD", amount["currency_code"])
}

func (s *PayPalTestSuite) TestTokenIsCached() {
	ctx := context.Background()
	_, err := s.provider.Verify(ctx, "ORDER-1")
	s.Require().NoError(err)
	_, err = s.provider.Verify(ctx, "ORDER-1")
	s.Require().NoError(err)

	s.Equal(int32(1), s.tokenCalls.Load())
}

func (s *PayPalTestSuite) TestVerifyAndCapture() {
	ctx := context.Background()

	status, err := s.provider.Verify(ctx, "ORDER-1")
	s.Require().NoError(err)
	s.Equal(StatusPending, status)

	s.orderStatus = "APPROVED"
	status, err = s.provider.Verify(ctx, "ORDER-1")
	s.Require().NoError(err)
	s.Equal(StatusApproved, status)

	status, err = s.provider.Capture(ctx, "ORDER-1")
	s.Require().NoError(err)
	s.Equal(StatusCompleted, status)
}

func (s *PayPalTestSuite) TestServerErrorIsTemporary() {
	_, err := s.provider.Verify(context.Background(), "BROKEN")

	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusServiceUnavailable, apiErr.StatusCode)
	s.Equal("try later", apiErr.Message)
	s.True(apiErr.Temporary())
}

func (s *PayPalTestSuite) TestBadCredentials() {
	provider := NewPayPal(PayPalConfig{BaseURL: s.server.URL, ClientID: "client", ClientSecret: "wrong"})

	_, err := provider.Verify(context.Background(), "ORDER-1")
	s.Require().Error(err)
	s.Contains(err.Error(), "bad client")
}

func TestRegistry(t *testing.T) {
	paypal := NewPayPal(PayPalConfig{BaseURL: "http://localhost"})
	registry := NewRegistry(paypal, nil)

	got, err := registry.Get("paypal")
	require.NoError(t, err)
	assert.Same(t, paypal, got)

	_, err = registry.Get("stripe")
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.Equal(t, []string{"paypal"}, registry.Names())
}

func TestPriceFor(t *testing.T) {
	assert.True(t, PriceFor(25).Equal(decimal.NewFromInt(25)))
}

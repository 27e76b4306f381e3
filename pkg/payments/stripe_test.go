package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func newStripeTestProvider(t *testing.T, handler http.HandlerFunc) *Stripe {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(server.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return NewStripe(StripeConfig{
		APIKey:   "sk_test_123",
		Backends: &stripe.Backends{API: backend, Connect: backend, Uploads: backend},
	})
}

func TestStripeCreateCheckout(t *testing.T) {
	var form map[string][]string
	provider := newStripeTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.example/cs_test_1"}`))
	})

	checkout, err := provider.CreateCheckout(context.Background(), decimal.NewFromInt(15), "15 Battle Coins")
	require.NoError(t, err)

	assert.Equal(t, "cs_test_1", checkout.Ref)
	assert.Equal(t, "https://checkout.stripe.example/cs_test_1", checkout.ApproveURL)
	assert.Equal(t, []string{"1500"}, form["line_items[0][price_data][unit_amount]"])
	assert.Equal(t, []string{"payment"}, form["mode"])
}

func TestStripeCreateCheckoutRejectsZero(t *testing.T) {
	provider := newStripeTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := provider.CreateCheckout(context.Background(), decimal.Zero, "nothing")
	assert.ErrorIs(t, err, ErrCheckoutFailed)
}

func TestStripeVerify(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected Status
	}{
		{name: "paid", body: `{"id":"cs_1","object":"checkout.session","payment_status":"paid","status":"complete"}`, expected: StatusCompleted},
		{name: "unpaid", body: `{"id":"cs_1","object":"checkout.session","payment_status":"unpaid","status":"open"}`, expected: StatusPending},
		{name: "expired", body: `{"id":"cs_1","object":"checkout.session","payment_status":"unpaid","status":"expired"}`, expected: StatusFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			provider := newStripeTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/checkout/sessions/cs_1", r.URL.Path)
				_, _ = w.Write([]byte(tc.body))
			})

			status, err := provider.Verify(context.Background(), "cs_1")
			require.NoError(t, err)
			assert.Equal(t, tc.expected, status)

			captured, err := provider.Capture(context.Background(), "cs_1")
			require.NoError(t, err)
			assert.Equal(t, tc.expected, captured)
		})
	}
}

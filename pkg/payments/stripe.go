package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeConfig configures Stripe Checkout
type StripeConfig struct {
	APIKey     string
	SuccessURL string
	CancelURL  string
	// Backends overrides the API endpoints, used in tests
	Backends *stripe.Backends
}

// Stripe implements Provider with Stripe Checkout sessions
type Stripe struct {
	api *client.API
	cfg StripeConfig
}

// NewStripe creates a Stripe provider
func NewStripe(cfg StripeConfig) *Stripe {
	if cfg.SuccessURL == "" {
		cfg.SuccessURL = "https://discord.com/channels/@me"
	}
	if cfg.CancelURL == "" {
		cfg.CancelURL = cfg.SuccessURL
	}
	api := &client.API{}
	api.Init(cfg.APIKey, cfg.Backends)
	return &Stripe{api: api, cfg: cfg}
}

func (s *Stripe) Name() string { return "stripe" }

// CreateCheckout creates a one-line payment session
func (s *Stripe) CreateCheckout(ctx context.Context, amount decimal.Decimal, description string) (*Checkout, error) {
	cents := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if cents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrCheckoutFailed)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyUSD)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(description),
				},
				UnitAmount: stripe.Int64(cents),
			},
			Quantity: stripe.Int64(1),
		}},
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.New().String())

	session, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout failed: %w", err)
	}
	return &Checkout{Ref: session.ID, ApproveURL: session.URL}, nil
}

// Verify reports COMPLETED once the session is paid
func (s *Stripe) Verify(ctx context.Context, ref string) (Status, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	session, err := s.api.CheckoutSessions.Get(ref, params)
	if err != nil {
		return "", fmt.Errorf("stripe session lookup failed: %w", err)
	}

	switch {
	case session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		return StatusCompleted, nil
	case session.Status == stripe.CheckoutSessionStatusExpired:
		return StatusFailed, nil
	default:
		return StatusPending, nil
	}
}

// Capture is Verify: Checkout captures automatically
func (s *Stripe) Capture(ctx context.Context, ref string) (Status, error) {
	return s.Verify(ctx, ref)
}

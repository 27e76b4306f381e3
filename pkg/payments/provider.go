package payments

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_payments

// Status is a provider-neutral checkout state
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED" // Buyer approved, funds not captured yet
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// CoinPrice is what one coin costs in USD
var CoinPrice = decimal.NewFromInt(1)

var (
	ErrUnknownProvider = errors.New("unknown payment provider")
	ErrCheckoutFailed  = errors.New("checkout could not be created")
)

// Checkout is a created payment the buyer still has to approve
type Checkout struct {
	Ref        string
	ApproveURL string
}

// Provider creates and verifies coin checkouts
type Provider interface {
	Name() string
	CreateCheckout(ctx context.Context, amount decimal.Decimal, description string) (*Checkout, error)
	Verify(ctx context.Context, ref string) (Status, error)
	Capture(ctx context.Context, ref string) (Status, error)
}

// Registry holds the configured providers by name
type Registry struct {
	providers map[string]Provider
}

// NewRegistry registers the given providers, skipping nils
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	for _, p := range providers {
		if p != nil {
			r.providers[p.Name()] = p
		}
	}
	return r
}

// Get returns the named provider
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p, nil
}

// Names lists configured providers, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PriceFor returns the USD price of coins
func PriceFor(coins int64) decimal.Decimal {
	return CoinPrice.Mul(decimal.NewFromInt(coins))
}

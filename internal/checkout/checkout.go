// Package checkout creates Stripe Checkout Sessions that later produce
// checkout.session.completed webhooks.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

var (
	// ErrInvalidRequest means the request is missing items, currency or redirect URLs.
	ErrInvalidRequest = errors.New("invalid checkout request")
	// ErrNotConfigured means no Stripe API key is set.
	ErrNotConfigured = errors.New("stripe api key not configured")
)

type Item struct {
	ProductName string `json:"product_name"`
	UnitAmount  int64  `json:"unit_amount"` // minor units
	Quantity    int64  `json:"quantity"`
}

type Request struct {
	Items      []Item `json:"items"`
	Currency   string `json:"currency"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

type Session struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// Validate normalizes r in place.
func (r *Request) Validate() error {
	r.Currency = strings.ToLower(strings.TrimSpace(r.Currency))
	r.SuccessURL = strings.TrimSpace(r.SuccessURL)
	r.CancelURL = strings.TrimSpace(r.CancelURL)

	if len(r.Items) == 0 || r.Currency == "" || r.SuccessURL == "" || r.CancelURL == "" {
		return ErrInvalidRequest
	}
	for i, it := range r.Items {
		if strings.TrimSpace(it.ProductName) == "" || it.UnitAmount < 0 {
			return fmt.Errorf("%w: item %d", ErrInvalidRequest, i)
		}
		if it.Quantity <= 0 {
			r.Items[i].Quantity = 1
		}
	}
	return nil
}

// sessionCreator is the part of the Stripe client used here.
type sessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type Service struct {
	sessions sessionCreator
}

// NewService returns a service whose Create fails with ErrNotConfigured when apiKey is empty.
func NewService(apiKey string) *Service {
	if strings.TrimSpace(apiKey) == "" {
		return &Service{}
	}
	return &Service{sessions: &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: apiKey}}
}

func (s *Service) Configured() bool { return s.sessions != nil }

// Create opens a one-time card payment session that also collects the buyer's phone number.
func (s *Service) Create(ctx context.Context, req Request) (Session, error) {
	if err := req.Validate(); err != nil {
		return Session{}, err
	}
	if s.sessions == nil {
		return Session{}, ErrNotConfigured
	}

	cs, err := s.sessions.New(sessionParams(ctx, req))
	if err != nil {
		return Session{}, fmt.Errorf("create checkout session: %w", err)
	}
	return Session{ID: cs.ID, URL: cs.URL}, nil
}

func sessionParams(ctx context.Context, req Request) *stripe.CheckoutSessionParams {
	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(req.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.ProductName),
				},
				UnitAmount: stripe.Int64(it.UnitAmount),
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:          items,
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	return params
}

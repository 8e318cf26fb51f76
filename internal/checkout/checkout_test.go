package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stripe/stripe-go/v82"
)

type fakeCreator struct {
	got *stripe.CheckoutSessionParams
	err error
}

func (f *fakeCreator) New(p *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.got = p
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
}

func validRequest() Request {
	return Request{
		Items:      []Item{{ProductName: "T-shirt", UnitAmount: 2500, Quantity: 2}},
		Currency:   "USD",
		SuccessURL: "https://shop.example/success",
		CancelURL:  "https://shop.example/cancel",
	}
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
		ok     bool
	}{
		{"valid", func(*Request) {}, true},
		{"no items", func(r *Request) { r.Items = nil }, false},
		{"no currency", func(r *Request) { r.Currency = " " }, false},
		{"no success url", func(r *Request) { r.SuccessURL = "" }, false},
		{"no cancel url", func(r *Request) { r.CancelURL = "" }, false},
		{"unnamed item", func(r *Request) { r.Items[0].ProductName = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(&r)
			err := r.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("err = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestService_Create(t *testing.T) {
	f := &fakeCreator{}
	s := &Service{sessions: f}

	got, err := s.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID != "cs_test_1" || got.URL == "" {
		t.Errorf("session = %+v", got)
	}

	p := f.got
	if p.PhoneNumberCollection == nil || !*p.PhoneNumberCollection.Enabled {
		t.Error("phone number collection must be enabled")
	}
	if *p.Mode != "payment" {
		t.Errorf("mode = %q", *p.Mode)
	}
	if len(p.LineItems) != 1 {
		t.Fatalf("line items = %d", len(p.LineItems))
	}
	li := p.LineItems[0]
	if *li.PriceData.Currency != "usd" || *li.PriceData.UnitAmount != 2500 || *li.Quantity != 2 {
		t.Errorf("line item = %+v", li.PriceData)
	}
	if *li.PriceData.ProductData.Name != "T-shirt" {
		t.Errorf("product name = %q", *li.PriceData.ProductData.Name)
	}
}

func TestService_NotConfigured(t *testing.T) {
	s := NewService("")
	if s.Configured() {
		t.Fatal("expected unconfigured service")
	}
	if _, err := s.Create(context.Background(), validRequest()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestService_StripeError(t *testing.T) {
	boom := errors.New("card_declined")
	s := &Service{sessions: &fakeCreator{err: boom}}

	if _, err := s.Create(context.Background(), validRequest()); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}

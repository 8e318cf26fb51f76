package notification

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/stripe/stripe-go/v82"

	"github.com/jmehdipour/paynotify/internal/model"
)

// checkoutSession is the part of a Checkout Session object the notifier reads.
type checkoutSession struct {
	AmountTotal     *int64           `json:"amount_total"`
	Currency        string           `json:"currency"`
	CustomerDetails *customerDetails `json:"customer_details"`
}

type customerDetails struct {
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// extraction tracks which fields have been filled; a zero amount is still a value.
type extraction struct {
	info      model.ContactInfo
	amountSet bool
}

func (x *extraction) missing() bool {
	return x.info.Email == "" || x.info.Phone == "" || !x.amountSet
}

// Extract reads the customer's email, phone and amount from a queued event.
//
// The primary pass goes through the typed Stripe event and an explicit session
// schema. Anything still missing is read from the raw JSON, because typed
// decoding can lose fields. A failing fallback leaves fields unset.
func Extract(eventJSON []byte) model.ContactInfo {
	var env model.Envelope
	if err := json.Unmarshal(eventJSON, &env); err != nil || env.Type != model.EventCheckoutSessionCompleted {
		return model.ContactInfo{}
	}

	var x extraction
	x.fromTypedEvent(eventJSON)
	if x.missing() {
		x.fromRawJSON(eventJSON)
	}
	return x.info
}

func (x *extraction) fromTypedEvent(eventJSON []byte) {
	var evt stripe.Event
	if err := json.Unmarshal(eventJSON, &evt); err != nil || evt.Data == nil || evt.Data.Object == nil {
		return
	}

	obj, err := json.Marshal(evt.Data.Object)
	if err != nil {
		return
	}

	var session checkoutSession
	if err := json.Unmarshal(obj, &session); err != nil {
		return
	}

	if d := session.CustomerDetails; d != nil {
		if d.Email != nil {
			x.info.Email = strings.TrimSpace(*d.Email)
		}
		if d.Phone != nil {
			x.info.Phone = strings.TrimSpace(*d.Phone)
		}
	}
	if session.AmountTotal != nil {
		x.info.AmountMinor = *session.AmountTotal
		x.amountSet = true
	}
	x.info.Currency = session.Currency
}

func (x *extraction) fromRawJSON(eventJSON []byte) {
	dec := json.NewDecoder(bytes.NewReader(eventJSON))
	dec.UseNumber()

	var root map[string]any
	if err := dec.Decode(&root); err != nil {
		return
	}

	obj, ok := lookup(root, "data", "object").(map[string]any)
	if !ok {
		return
	}

	if x.info.Email == "" {
		if s, ok := lookup(obj, "customer_details", "email").(string); ok {
			x.info.Email = strings.TrimSpace(s)
		}
	}
	if x.info.Phone == "" {
		if s, ok := lookup(obj, "customer_details", "phone").(string); ok {
			x.info.Phone = strings.TrimSpace(s)
		}
	}
	if !x.amountSet {
		if n, ok := obj["amount_total"].(json.Number); ok {
			if v, err := n.Int64(); err == nil {
				x.info.AmountMinor = v
				x.amountSet = true
			}
		}
	}
	if x.info.Currency == "" {
		if s, ok := obj["currency"].(string); ok {
			x.info.Currency = s
		}
	}
}

func lookup(m map[string]any, path ...string) any {
	var cur any = m
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	return cur
}

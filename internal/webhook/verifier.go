package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmehdipour/paynotify/internal/model"
)

// SignatureHeader is the header Stripe signs webhook deliveries with.
const SignatureHeader = "Stripe-Signature"

const (
	schemeTimestamp = "t"
	schemeV1        = "v1"
)

// Verifier checks Stripe-Signature headers.
//
// Tolerance bounds the distance between the signed timestamp and Now. Zero
// disables the check.
type Verifier struct {
	Tolerance time.Duration
	Now       func() time.Time
}

// Verify checks the header against secret with no timestamp tolerance.
func Verify(payload []byte, signatureHeader, secret string) (model.WebhookEvent, error) {
	return Verifier{}.Verify(payload, signatureHeader, secret)
}

// Verify validates signatureHeader ("t=<unix>,v1=<hex>") for payload and parses the event.
func (v Verifier) Verify(payload []byte, signatureHeader, secret string) (model.WebhookEvent, error) {
	header := strings.TrimSpace(signatureHeader)
	if secret == "" || header == "" {
		return model.WebhookEvent{}, ErrConfig
	}

	ts, sigs, err := parseHeader(header)
	if err != nil {
		return model.WebhookEvent{}, err
	}

	expected := computeSignature(payload, secret, ts)
	matched := false
	for _, sig := range sigs {
		if hmac.Equal(expected, sig) {
			matched = true
			break
		}
	}
	if !matched {
		return model.WebhookEvent{}, fmt.Errorf("%w: no signatures found matching the expected signature for payload", ErrSignatureMismatch)
	}

	if v.Tolerance > 0 {
		now := time.Now()
		if v.Now != nil {
			now = v.Now()
		}
		delta := now.Sub(time.Unix(ts, 0))
		if delta < 0 {
			delta = -delta
		}
		if delta > v.Tolerance {
			return model.WebhookEvent{}, fmt.Errorf("%w: timestamp outside the tolerance zone", ErrSignatureMismatch)
		}
	}

	return parseEvent(payload)
}

// Sign builds a Stripe-Signature header for payload at time t.
func Sign(payload []byte, secret string, t time.Time) string {
	ts := t.Unix()
	return fmt.Sprintf("%s=%d,%s=%s", schemeTimestamp, ts, schemeV1, hex.EncodeToString(computeSignature(payload, secret, ts)))
}

func computeSignature(payload []byte, secret string, ts int64) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}

// parseHeader returns the timestamp and every decodable v1 signature.
// Unknown schemes (v0, ...) are skipped.
func parseHeader(header string) (int64, [][]byte, error) {
	var (
		ts    int64
		hasTS bool
		sigs  [][]byte
	)

	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return 0, nil, fmt.Errorf("%w: unable to parse signature header", ErrSignatureMismatch)
		}

		switch key {
		case schemeTimestamp:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: invalid timestamp %q", ErrSignatureMismatch, value)
			}
			ts, hasTS = n, true
		case schemeV1:
			sig, err := hex.DecodeString(value)
			if err != nil {
				continue
			}
			sigs = append(sigs, sig)
		}
	}

	if !hasTS {
		return 0, nil, fmt.Errorf("%w: missing timestamp", ErrSignatureMismatch)
	}
	if len(sigs) == 0 {
		return 0, nil, fmt.Errorf("%w: no v1 signatures found", ErrSignatureMismatch)
	}
	return ts, sigs, nil
}

func parseEvent(payload []byte) (model.WebhookEvent, error) {
	var evt model.WebhookEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return model.WebhookEvent{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if evt.ID == "" {
		return model.WebhookEvent{}, fmt.Errorf("%w: event id is required", ErrParse)
	}
	evt.Payload = payload
	return evt, nil
}

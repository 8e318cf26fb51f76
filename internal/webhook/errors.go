package webhook

import "errors"

var (
	// ErrConfig means the signature cannot be checked: secret or header is missing.
	ErrConfig = errors.New("missing Stripe webhook secret or signature")
	// ErrSignatureMismatch covers unparseable headers, digest mismatches and stale timestamps.
	ErrSignatureMismatch = errors.New("invalid Stripe signature")
	// ErrParse means the signed payload is not a usable event.
	ErrParse = errors.New("invalid Stripe event payload")
)

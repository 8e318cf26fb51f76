package util

import (
	"regexp"
	"strings"
)

var phoneJunk = regexp.MustCompile(`[^\d\+]+`)

// NormalizePhone strips formatting from a customer-entered number and turns an
// international "00" prefix into "+". Numbers are otherwise passed through; Stripe
// already collects them in E.164.
func NormalizePhone(raw string) string {
	s := phoneJunk.ReplaceAllString(strings.TrimSpace(raw), "")

	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	}
	if i := strings.LastIndex(s, "+"); i > 0 {
		s = "+" + strings.ReplaceAll(s, "+", "")
	}

	return s
}

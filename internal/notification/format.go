package notification

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jmehdipour/paynotify/internal/model"
)

const (
	Subject      = "Payment Received"
	bodyTemplate = "Thank you for your payment of %s."
)

var currencySymbols = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
}

var printer = message.NewPrinter(language.English)

// FormatAmount renders minor units as major currency, e.g. 123456 usd -> "$1,234.56".
// An empty currency is shown in dollars; unknown ones by their upper-case code.
func FormatAmount(minor int64, currency string) string {
	currency = strings.ToLower(strings.TrimSpace(currency))
	symbol, ok := currencySymbols[currency]
	switch {
	case currency == "":
		symbol = "$"
	case !ok:
		symbol = strings.ToUpper(currency) + " "
	}

	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return sign + symbol + printer.Sprintf("%d", minor/100) + fmt.Sprintf(".%02d", minor%100)
}

// MessageBody is the text sent on every channel.
func MessageBody(c model.ContactInfo) string {
	return fmt.Sprintf(bodyTemplate, FormatAmount(c.AmountMinor, c.Currency))
}

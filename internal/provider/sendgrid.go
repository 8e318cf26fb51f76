package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/jmehdipour/paynotify/internal/dispatcher"
)

const sendGridMailPath = "/v3/mail/send"

// SendGrid delivers plain-text email through the v3 mail send API.
type SendGrid struct {
	apiKey  string
	host    string
	from    *mail.Email
	timeout time.Duration
}

func NewSendGrid(apiKey, host, fromEmail, fromName string, timeoutMs int) *SendGrid {
	if host == "" {
		host = "https://api.sendgrid.com"
	}
	if timeoutMs <= 0 {
		timeoutMs = 5000
	}
	return &SendGrid{
		apiKey:  apiKey,
		host:    strings.TrimRight(host, "/"),
		from:    mail.NewEmail(fromName, fromEmail),
		timeout: time.Duration(timeoutMs) * time.Millisecond,
	}
}

func (s *SendGrid) Name() string { return "sendgrid" }

// Send returns the HTTP status text of the accepted request ("Accepted").
func (s *SendGrid) Send(ctx context.Context, to, subject, body string) (string, error) {
	msg := mail.NewSingleEmail(s.from, subject, mail.NewEmail("", to), body, "")

	req := sendgrid.GetRequest(s.apiKey, sendGridMailPath, s.host)
	req.Method = "POST"
	req.Body = mail.GetRequestBody(msg)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return "", err
	}
	if res.StatusCode/100 != 2 {
		err := fmt.Errorf("provider=sendgrid status=%d body=%s", res.StatusCode, res.Body)
		if dispatcher.PermanentStatus(res.StatusCode) {
			return "", dispatcher.Permanent(err)
		}
		return "", err
	}

	return http.StatusText(res.StatusCode), nil
}

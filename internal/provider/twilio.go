package provider

import (
	"context"
	"errors"

	"github.com/twilio/twilio-go"
	"github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/jmehdipour/paynotify/internal/dispatcher"
	"github.com/jmehdipour/paynotify/internal/util"
)

// messageCreator is the slice of the Twilio REST client used here.
type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// Twilio sends SMS through the Programmable Messaging API and returns the message SID.
type Twilio struct {
	api  messageCreator
	from string
}

func NewTwilio(accountSID, authToken, from string) *Twilio {
	rc := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &Twilio{api: rc.Api, from: from}
}

func (t *Twilio) Name() string { return "twilio" }

// Send ignores subject. The Twilio client has no context support, so ctx is only
// checked before the call.
func (t *Twilio) Send(ctx context.Context, to, _ string, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(util.NormalizePhone(to))
	params.SetFrom(t.from)
	params.SetBody(body)

	msg, err := t.api.CreateMessage(params)
	if err != nil {
		return "", classifyTwilio(err)
	}
	if msg == nil || msg.Sid == nil {
		return "", errors.New("provider=twilio: response without sid")
	}
	return *msg.Sid, nil
}

// classifyTwilio marks request rejections (invalid To, unverified number) as permanent.
func classifyTwilio(err error) error {
	var restErr *client.TwilioRestError
	if errors.As(err, &restErr) && dispatcher.PermanentStatus(restErr.Status) {
		return dispatcher.Permanent(err)
	}
	return err
}

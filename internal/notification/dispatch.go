package notification

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/jmehdipour/paynotify/internal/channel"
	"github.com/jmehdipour/paynotify/internal/model"
)

// Dispatch sends the payment confirmation on every enabled channel that has a
// destination. Channels are independent: a failure or panic in one is recorded
// and the next one is still attempted.
func Dispatch(ctx context.Context, contact model.ContactInfo, email, sms channel.Sender) model.NotificationResult {
	body := MessageBody(contact)
	res := model.NotificationResult{Success: true}

	var errs error
	if channel.IsEnabled(email) && contact.Email != "" {
		status, err := attempt(ctx, channel.Email, email, contact.Email, Subject, body)
		res.EmailStatus = status
		errs = multierr.Append(errs, err)
	}
	if channel.IsEnabled(sms) && contact.Phone != "" {
		status, err := attempt(ctx, channel.SMS, sms, contact.Phone, "", body)
		res.SMSStatus = status
		errs = multierr.Append(errs, err)
	}

	if errs != nil {
		res.Success = false
		res.Error = errs.Error()
	}
	return res
}

func attempt(ctx context.Context, ch string, s channel.Sender, to, subject, body string) (status string, err error) {
	defer func() {
		if r := recover(); r != nil {
			status = ""
			err = fmt.Errorf("%w: %s: panic: %v", ErrDispatch, ch, r)
		}
	}()

	status, err = s.Send(ctx, to, subject, body)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDispatch, ch, err)
	}
	return status, nil
}

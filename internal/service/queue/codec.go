package queue

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmehdipour/paynotify/internal/model"
)

// ErrDecode is returned for queue messages that are not valid base64.
var ErrDecode = errors.New("invalid queue message")

// Encode serializes evt to compact JSON and base64 encodes it.
// The signed payload is the event's serialized form; an event without one
// is serialized from its id and type.
func Encode(evt model.WebhookEvent) (string, error) {
	var buf bytes.Buffer
	if len(evt.Payload) > 0 {
		if err := json.Compact(&buf, evt.Payload); err != nil {
			return "", fmt.Errorf("compact event payload: %w", err)
		}
	} else {
		b, err := json.Marshal(evt)
		if err != nil {
			return "", fmt.Errorf("marshal event: %w", err)
		}
		buf.Write(b)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode returns the JSON bytes carried by msg. Parsing them is left to the caller.
func Decode(msg string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return b, nil
}

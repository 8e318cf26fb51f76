package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmehdipour/paynotify/internal/dispatcher"
	"github.com/jmehdipour/paynotify/internal/util"
)

type relayRequest struct {
	Phone string `json:"phone"`
	Text  string `json:"text"`
}

type relayResponse struct {
	ID string `json:"id"`
}

// Relay posts SMS to an HTTP gateway that accepts {"phone","text"} and answers {"id"}.
type Relay struct {
	name    string
	baseURL string
	path    string
	client  *http.Client
}

func NewRelay(name, baseURL, path string, timeoutMs int) *Relay {
	if timeoutMs <= 0 {
		timeoutMs = 3000
	}

	return &Relay{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		path:    path,
		client:  &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
	}
}

func (p *Relay) Name() string { return p.name }

// Send returns the gateway message id, or the HTTP status when the gateway sends none.
func (p *Relay) Send(ctx context.Context, to, _ string, body string) (string, error) {
	b, err := json.Marshal(relayRequest{Phone: util.NormalizePhone(to), Text: body})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+p.path, bytes.NewReader(b))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return "", err
	}

	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		err := fmt.Errorf("provider=%s path=%s status=%d", p.name, p.path, res.StatusCode)
		if dispatcher.PermanentStatus(res.StatusCode) {
			return "", dispatcher.Permanent(err)
		}
		return "", err
	}

	var out relayResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err == nil && out.ID != "" {
		return out.ID, nil
	}

	return http.StatusText(res.StatusCode), nil
}

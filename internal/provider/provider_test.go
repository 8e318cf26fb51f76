package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/jmehdipour/paynotify/internal/dispatcher"
)

func TestRelay_Send(t *testing.T) {
	var got relayRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sms" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"relay-42"}`)
	}))
	defer srv.Close()

	p := NewRelay("relay", srv.URL+"/", "/sms", 1000)
	id, err := p.Send(context.Background(), "+1 (555) 123-4567", "", "Thank you")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "relay-42" {
		t.Errorf("id = %q", id)
	}
	if got.Phone != "+15551234567" || got.Text != "Thank you" {
		t.Errorf("request = %+v", got)
	}
}

func TestRelay_StatusWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	id, err := NewRelay("relay", srv.URL, "/sms", 1000).Send(context.Background(), "+15551234567", "", "x")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "Accepted" {
		t.Errorf("id = %q", id)
	}
}

func TestRelay_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewRelay("relay", srv.URL, "/sms", 1000).Send(context.Background(), "+15551234567", "", "x")
	if err == nil || !strings.Contains(err.Error(), "status=502") {
		t.Fatalf("err = %v", err)
	}
}

func TestSendGrid_Send(t *testing.T) {
	var auth string
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != sendGridMailPath {
			t.Errorf("path = %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sg := NewSendGrid("SG.test", srv.URL, "no-reply@example.com", "Stripe Demo", 1000)
	status, err := sg.Send(context.Background(), "cust@example.com", "Payment Received", "Thank you")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if status != "Accepted" {
		t.Errorf("status = %q", status)
	}
	if auth != "Bearer SG.test" {
		t.Errorf("authorization = %q", auth)
	}
	if payload["subject"] != "Payment Received" {
		t.Errorf("subject = %v", payload["subject"])
	}
}

func TestSendGrid_RejectedRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"errors":[{"message":"bad key"}]}`)
	}))
	defer srv.Close()

	_, err := NewSendGrid("SG.bad", srv.URL, "no-reply@example.com", "", 1000).
		Send(context.Background(), "cust@example.com", "s", "b")
	if err == nil || !strings.Contains(err.Error(), "status=401") {
		t.Fatalf("err = %v", err)
	}
}

type fakeMessages struct {
	params *openapi.CreateMessageParams
	sid    *string
	err    error
}

func (f *fakeMessages) CreateMessage(p *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	f.params = p
	if f.err != nil {
		return nil, f.err
	}
	return &openapi.ApiV2010Message{Sid: f.sid}, nil
}

func TestTwilio_Send(t *testing.T) {
	sid := "SM123"
	api := &fakeMessages{sid: &sid}
	tw := &Twilio{api: api, from: "+15550000000"}

	got, err := tw.Send(context.Background(), "+1 555 123 4567", "ignored", "Thank you")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if got != "SM123" {
		t.Errorf("sid = %q", got)
	}
	if *api.params.To != "+15551234567" || *api.params.From != "+15550000000" || *api.params.Body != "Thank you" {
		t.Errorf("params to=%s from=%s body=%s", *api.params.To, *api.params.From, *api.params.Body)
	}
}

func TestTwilio_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		tw := &Twilio{api: &fakeMessages{err: errors.New("21211 invalid to")}, from: "+15550000000"}
		if _, err := tw.Send(context.Background(), "+1", "", "x"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("missing sid", func(t *testing.T) {
		tw := &Twilio{api: &fakeMessages{}, from: "+15550000000"}
		if _, err := tw.Send(context.Background(), "+1", "", "x"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		api := &fakeMessages{}
		tw := &Twilio{api: api, from: "+15550000000"}
		if _, err := tw.Send(ctx, "+1", "", "x"); !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v", err)
		}
		if api.params != nil {
			t.Error("api should not be called after cancellation")
		}
	})
}

func TestRejections_PermanentOnlyForRequestErrors(t *testing.T) {
	statusServer := func(code int) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))
	}

	tests := []struct {
		name      string
		code      int
		permanent bool
	}{
		{"bad request", http.StatusBadRequest, true},
		{"rate limited", http.StatusTooManyRequests, false},
		{"upstream down", http.StatusBadGateway, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := statusServer(tt.code)
			defer srv.Close()

			_, relayErr := NewRelay("relay", srv.URL, "/sms", 1000).Send(context.Background(), "+15551234567", "", "x")
			_, sgErr := NewSendGrid("SG.k", srv.URL, "no-reply@example.com", "", 1000).
				Send(context.Background(), "cust@example.com", "s", "b")

			for name, err := range map[string]error{"relay": relayErr, "sendgrid": sgErr} {
				if err == nil {
					t.Fatalf("%s: expected error", name)
				}
				if got := errors.Is(err, dispatcher.ErrPermanent); got != tt.permanent {
					t.Errorf("%s: permanent = %v, want %v (err=%v)", name, got, tt.permanent, err)
				}
			}
		})
	}
}

func TestTwilio_ClassifiesRestErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		permanent bool
	}{
		{"invalid to", &client.TwilioRestError{Status: 400, Code: 21211, Message: "Invalid 'To' Phone Number"}, true},
		{"server error", &client.TwilioRestError{Status: 503, Message: "Service Unavailable"}, false},
		{"transport", errors.New("dial tcp: i/o timeout"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := &Twilio{api: &fakeMessages{err: tt.err}, from: "+15550000000"}
			_, err := tw.Send(context.Background(), "+15551234567", "", "x")
			if got := errors.Is(err, dispatcher.ErrPermanent); got != tt.permanent {
				t.Errorf("permanent = %v, want %v (err=%v)", got, tt.permanent, err)
			}
		})
	}
}

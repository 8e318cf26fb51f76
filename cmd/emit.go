package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmehdipour/paynotify/internal/config"
	"github.com/jmehdipour/paynotify/internal/model"
	"github.com/jmehdipour/paynotify/internal/util"
	"github.com/jmehdipour/paynotify/internal/webhook"
)

var emitOpts struct {
	url    string
	email  string
	phone  string
	amount int64
}

var emitCmd = &cobra.Command{
	Use:   "emit",
	Short: "POST a signed sample checkout.session.completed event to the webhook endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cfg.Stripe.WebhookSecret == "" {
			return fmt.Errorf("stripe.webhook_secret is required to sign the event")
		}

		payload, err := sampleEvent(emitOpts.email, emitOpts.phone, emitOpts.amount)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, emitOpts.url, strings.NewReader(string(payload)))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(webhook.SignatureHeader, webhook.Sign(payload, cfg.Stripe.WebhookSecret, time.Now()))

		res, err := http.DefaultClient.Do(req)
		if err != nil {
			return fmt.Errorf("post event: %w", err)
		}
		defer res.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))

		log.Printf(">> %s -> %d %s", emitOpts.url, res.StatusCode, strings.TrimSpace(string(body)))
		if res.StatusCode/100 != 2 {
			return fmt.Errorf("webhook rejected the event: %s", res.Status)
		}
		return nil
	},
}

func init() {
	emitCmd.Flags().StringVar(&emitOpts.url, "url", "http://127.0.0.1:8080/webhooks/stripe", "webhook endpoint")
	emitCmd.Flags().StringVar(&emitOpts.email, "email", "cust@example.com", "customer email")
	emitCmd.Flags().StringVar(&emitOpts.phone, "phone", "", "customer phone (E.164)")
	emitCmd.Flags().Int64Var(&emitOpts.amount, "amount", 5000, "amount_total in minor units")
}

func sampleEvent(email, phone string, amount int64) ([]byte, error) {
	details := map[string]any{"email": email, "phone": nil}
	if phone != "" {
		details["phone"] = phone
	}
	evt := map[string]any{
		"id":      "evt_" + util.NewID(),
		"object":  "event",
		"created": time.Now().Unix(),
		"type":    model.EventCheckoutSessionCompleted,
		"data": map[string]any{
			"object": map[string]any{
				"id":               "cs_" + util.NewID(),
				"object":           "checkout.session",
				"amount_total":     amount,
				"currency":         "usd",
				"payment_status":   "paid",
				"customer_details": details,
			},
		},
	}
	return json.Marshal(evt)
}

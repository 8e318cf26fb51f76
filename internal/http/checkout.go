package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jmehdipour/paynotify/internal/checkout"
)

// SessionCreator opens Stripe Checkout Sessions.
type SessionCreator interface {
	Create(ctx context.Context, req checkout.Request) (checkout.Session, error)
}

func createCheckoutSessionHandler(sessions SessionCreator, log *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req checkout.Request
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload."})
		}

		s, err := sessions.Create(c.Request().Context(), req)
		switch {
		case err == nil:
			return c.JSON(http.StatusOK, s)
		case errors.Is(err, checkout.ErrInvalidRequest):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload."})
		case errors.Is(err, checkout.ErrNotConfigured):
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Stripe API key is not configured."})
		default:
			log.Error("create checkout session", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create checkout session."})
		}
	}
}

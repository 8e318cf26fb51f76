package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	echo "github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jmehdipour/paynotify/internal/model"
	"github.com/jmehdipour/paynotify/internal/repository"
)

func listNotificationsHandler(chRepo repository.CHNotificationsRepository, log *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		f := repository.NotificationFilter{Limit: 50}
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				f.Limit = n
			}
		}
		if v := c.QueryParam("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				f.Offset = n
			}
		}

		if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
			st := model.NotificationStatus(raw)
			if !st.Valid() {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid status"})
			}
			f.Status = st
		}
		f.Email = strings.TrimSpace(c.QueryParam("email"))

		if raw := c.QueryParam("since"); raw != "" {
			since, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "since must be RFC3339"})
			}
			f.Since = since
		}

		rows, err := chRepo.List(c.Request().Context(), f)
		if err != nil {
			log.Error("clickhouse list failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   f.Limit,
			"offset":  f.Offset,
			"count":   len(rows),
			"results": rows,
		})
	}
}

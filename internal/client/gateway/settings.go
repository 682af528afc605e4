package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

func (g *Gateway) GetSettings(ctx context.Context) Result[models.UserSettings] {
	return Call[models.UserSettings](ctx, g, http.MethodGet, "/api/users/settings", nil)
}

func (g *Gateway) UpdateSettings(ctx context.Context, upd models.SettingsUpdate) Result[models.UserSettings] {
	if res, ok := checked[models.UserSettings](upd); !ok {
		return res
	}
	return Call[models.UserSettings](ctx, g, http.MethodPut, "/api/users/settings", upd)
}

func (g *Gateway) GetAlertSettings(ctx context.Context) Result[models.AlertSettings] {
	return Call[models.AlertSettings](ctx, g, http.MethodGet, "/api/alerts/settings", nil)
}

func (g *Gateway) UpdateAlertSettings(ctx context.Context, s models.AlertSettings) Result[models.AlertSettings] {
	if res, ok := checked[models.AlertSettings](s); !ok {
		return res
	}
	return Call[models.AlertSettings](ctx, g, http.MethodPut, "/api/alerts/settings", s)
}

func (g *Gateway) SnoozeAlert(ctx context.Context, alertID string, req models.SnoozeRequest) Result[models.SnoozeResult] {
	if alertID == "" {
		return failure[models.SnoozeResult]("alert id is required")
	}
	if res, ok := checked[models.SnoozeResult](req); !ok {
		return res
	}
	return Call[models.SnoozeResult](ctx, g, http.MethodPost, "/api/alerts/"+url.PathEscape(alertID)+"/snooze", req)
}

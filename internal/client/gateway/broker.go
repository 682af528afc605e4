package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

const derivBase = "/api/integrations/deriv"

// ConnectDeriv links a Deriv account. The API token travels only in this
// request body.
func (g *Gateway) ConnectDeriv(ctx context.Context, req models.DerivConnectRequest) Result[models.ConnectResult] {
	if res, ok := checked[models.ConnectResult](req); !ok {
		return res
	}
	return Call[models.ConnectResult](ctx, g, http.MethodPost, derivBase+"/connect", req)
}

func (g *Gateway) ListDerivConnections(ctx context.Context) Result[models.ConnectionList] {
	return Call[models.ConnectionList](ctx, g, http.MethodGet, derivBase+"/connections", nil)
}

// DerivStatus reports one connection, or all of them when connectionID is
// empty.
func (g *Gateway) DerivStatus(ctx context.Context, connectionID string) Result[models.DerivStatus] {
	return Call[models.DerivStatus](ctx, g, http.MethodGet, derivBase+"/status", nil, connectionQuery(connectionID)...)
}

// SyncDeriv starts a background sync of one connection, or of every
// connected account when connectionID is empty.
func (g *Gateway) SyncDeriv(ctx context.Context, connectionID string, req models.SyncRequest) Result[models.SyncStarted] {
	if res, ok := checked[models.SyncStarted](req); !ok {
		return res
	}
	return Call[models.SyncStarted](ctx, g, http.MethodPost, derivBase+"/sync", req, connectionQuery(connectionID)...)
}

func (g *Gateway) DerivTrades(ctx context.Context, q models.DerivTradesQuery) Result[models.DerivTradesPage] {
	if res, ok := checked[models.DerivTradesPage](q); !ok {
		return res
	}
	query := url.Values{}
	if q.ConnectionID != "" {
		query.Set("connection_id", q.ConnectionID)
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		query.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Status != "" {
		query.Set("status", q.Status)
	}
	return Call[models.DerivTradesPage](ctx, g, http.MethodGet, derivBase+"/trades", nil, WithQuery(query))
}

func (g *Gateway) UpdateDerivConnection(ctx context.Context, id string, req models.UpdateConnectionRequest) Result[models.DerivConnection] {
	if id == "" {
		return failure[models.DerivConnection]("connection id is required")
	}
	if res, ok := checked[models.DerivConnection](req); !ok {
		return res
	}
	return Call[models.DerivConnection](ctx, g, http.MethodPut, derivBase+"/connections/"+url.PathEscape(id), req)
}

func (g *Gateway) DisconnectDeriv(ctx context.Context, id string) Result[struct{}] {
	if id == "" {
		return failure[struct{}]("connection id is required")
	}
	return Call[struct{}](ctx, g, http.MethodDelete, derivBase+"/connections/"+url.PathEscape(id), nil)
}

func connectionQuery(id string) []CallOption {
	if id == "" {
		return nil
	}
	return []CallOption{WithQuery(url.Values{"connection_id": {id}})}
}

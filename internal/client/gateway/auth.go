package gateway

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

// checked validates v and, when it is invalid, returns the failure Result
// to hand back without issuing a request.
func checked[T any](v any) (Result[T], bool) {
	if err := models.Validate(v); err != nil {
		return failure[T](err.Error()), false
	}
	return Result[T]{}, true
}

func (g *Gateway) Register(ctx context.Context, req models.RegisterRequest) Result[models.AuthPayload] {
	if res, ok := checked[models.AuthPayload](req); !ok {
		return res
	}
	return Call[models.AuthPayload](ctx, g, http.MethodPost, "/api/users/register", req, withoutUnauthorizedSignal())
}

func (g *Gateway) Login(ctx context.Context, req models.LoginRequest) Result[models.AuthPayload] {
	if res, ok := checked[models.AuthPayload](req); !ok {
		return res
	}
	return Call[models.AuthPayload](ctx, g, http.MethodPost, "/api/users/login", req, withoutUnauthorizedSignal())
}

func (g *Gateway) Profile(ctx context.Context) Result[models.Profile] {
	return Call[models.Profile](ctx, g, http.MethodGet, "/api/users/profile", nil)
}
